package vst2

import (
	"context"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/semaphore"
)

// router delivers native callbacks to the Host of the calling plugin.
//
// A plugin may call back into the host from inside its entry point, before the host
// has an AEffect address to associate with it. The router keeps a one-shot pending
// cell holding the host being loaded; it is set only for the duration of one entry
// call, and loads are serialized so the cell never holds two hosts at once.
type router struct {
	loads   *semaphore.Weighted
	pending atomic.Pointer[Host]
	hosts   sync.Map
}

func newRouter() *router {
	return &router{loads: semaphore.NewWeighted(1)}
}

// defaultRouter serves every plugin loaded through the native platform.
var defaultRouter = newRouter()

// load runs enter with host installed as the pending callback target. Concurrent
// loads wait their turn or give up when ctx is done.
//
//nolint:ireturn // passes through the platform's Effect
func (r *router) load(ctx context.Context, host *Host, enter func() (Effect, error)) (Effect, error) {
	if err := r.loads.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "waiting for another plugin to finish loading")
	}
	defer r.loads.Release(1)

	r.pending.Store(host)
	defer r.pending.Store(nil)

	return enter()
}

func (r *router) register(effect uintptr, host *Host) {
	r.hosts.Store(effect, host)
}

func (r *router) unregister(effect uintptr) {
	r.hosts.Delete(effect)
}

func (r *router) lookup(effect uintptr) *Host {
	if effect != 0 {
		if h, ok := r.hosts.Load(effect); ok {
			return h.(*Host) //nolint:forcetypeassert // only *Host values are stored
		}
	}

	return r.pending.Load()
}

// dispatch is the HostCallback handed to every plugin.
func (r *router) dispatch(
	effect uintptr,
	opcode HostOpcode,
	index int32,
	value int64,
	ptr unsafe.Pointer,
	opt float32,
) int64 {
	host := r.lookup(effect)
	if host == nil {
		// Plugins commonly ask for the version before anything else exists.
		if opcode == audioMasterVersion {
			return HostVersion
		}

		return 0
	}

	return host.Dispatch(effect, opcode, index, value, ptr, opt)
}
