//go:build darwin || linux

package vst2

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"

	"github.com/smykla-skalski/plughost/internal/plugin"
)

// NativePlatform maps libraries with dlopen and calls into them through purego,
// without cgo.
type NativePlatform struct{}

// NewNativePlatform creates the platform for the running OS.
func NewNativePlatform() *NativePlatform {
	return &NativePlatform{}
}

type dynamicLibrary struct {
	handle uintptr
	path   string
}

// Open implements Platform.
//
//nolint:ireturn // platforms hand out libraries behind the Library interface
func (*NativePlatform) Open(path string) (Library, error) {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return nil, errors.Wrapf(plugin.ErrLoad, "%s is not readable: %v", path, err)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errors.Wrapf(plugin.ErrLoad, "dlopen %s: %v", path, err)
	}

	return &dynamicLibrary{handle: handle, path: path}, nil
}

func (l *dynamicLibrary) Lookup(symbol string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return 0, errors.Wrapf(err, "symbol %s not found in %s", symbol, l.path)
	}

	return addr, nil
}

func (l *dynamicLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}

	err := purego.Dlclose(l.handle)
	l.handle = 0

	return errors.Wrapf(err, "dlclose %s", l.path)
}

var (
	callbackOnce   sync.Once
	callbackAddr   uintptr
	callbackTarget atomic.Pointer[HostCallback]
)

// hostTrampoline is the C-callable audioMaster function. purego callbacks cannot be
// released, so one trampoline serves every plugin and forwards to callbackTarget.
func hostTrampoline(effect uintptr, opcode, index int32, value int, ptr uintptr, opt float32) int {
	target := callbackTarget.Load()
	if target == nil {
		return 0
	}

	//nolint:govet // ptr is native memory owned by the plugin
	return int((*target)(effect, HostOpcode(opcode), index, int64(value), unsafe.Pointer(ptr), opt))
}

// Enter implements Platform.
//
//nolint:ireturn // the effect is exposed behind the Effect interface
func (*NativePlatform) Enter(entry uintptr, callback HostCallback) (Effect, error) {
	if entry == 0 {
		return nil, errors.Wrap(plugin.ErrLoad, "entry point address is nil")
	}

	callbackOnce.Do(func() {
		callbackAddr = purego.NewCallback(hostTrampoline)
	})

	callbackTarget.Store(&callback)

	var pluginMain func(host uintptr) uintptr

	purego.RegisterFunc(&pluginMain, entry)

	addr := pluginMain(callbackAddr)
	if addr == 0 {
		return nil, nil //nolint:nilnil // the plugin declined to create an instance
	}

	return newNativeEffect(addr), nil
}

// nativeEffect calls the function pointers stored in a native AEffect.
type nativeEffect struct {
	addr uintptr
	raw  *aEffect

	dispatcher       func(effect uintptr, opcode, index int32, value int, ptr unsafe.Pointer, opt float32) int
	setParameter     func(effect uintptr, index int32, value float32)
	getParameter     func(effect uintptr, index int32) float32
	processReplacing func(effect uintptr, inputs, outputs unsafe.Pointer, frames int32)
	accumulating     bool

	inputs  []*float32
	outputs []*float32
}

func newNativeEffect(addr uintptr) *nativeEffect {
	//nolint:govet // addr is the AEffect returned by the plugin entry point
	e := &nativeEffect{addr: addr, raw: (*aEffect)(unsafe.Pointer(addr))}

	// Function pointers are only trusted once the magic number checks out.
	if e.raw.Magic != EffectMagic {
		return e
	}

	if e.raw.Dispatcher != 0 {
		purego.RegisterFunc(&e.dispatcher, e.raw.Dispatcher)
	}

	if e.raw.SetParameter != 0 {
		purego.RegisterFunc(&e.setParameter, e.raw.SetParameter)
	}

	if e.raw.GetParameter != 0 {
		purego.RegisterFunc(&e.getParameter, e.raw.GetParameter)
	}

	switch {
	case e.raw.ProcessReplacing != 0:
		purego.RegisterFunc(&e.processReplacing, e.raw.ProcessReplacing)
	case e.raw.Process != 0:
		purego.RegisterFunc(&e.processReplacing, e.raw.Process)
		e.accumulating = true
	}

	return e
}

func (e *nativeEffect) Address() uintptr { return e.addr }

func (e *nativeEffect) Header() Header { return e.raw.header() }

func (e *nativeEffect) Dispatch(
	opcode EffectOpcode,
	index int32,
	value int64,
	ptr unsafe.Pointer,
	opt float32,
) int64 {
	if e.dispatcher == nil {
		return 0
	}

	return int64(e.dispatcher(e.addr, int32(opcode), index, int(value), ptr, opt))
}

func (e *nativeEffect) SetParameter(index int32, value float32) {
	if e.setParameter != nil {
		e.setParameter(e.addr, index, value)
	}
}

func (e *nativeEffect) GetParameter(index int32) float32 {
	if e.getParameter == nil {
		return 0
	}

	return e.getParameter(e.addr, index)
}

func (e *nativeEffect) ProcessReplacing(inputs, outputs [][]float32, frames int32) {
	if e.processReplacing == nil {
		return
	}

	// The legacy process entry adds into its outputs.
	if e.accumulating {
		for _, ch := range outputs {
			clear(ch)
		}
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()

	e.inputs = channelPointers(e.inputs[:0], inputs, &pinner)
	e.outputs = channelPointers(e.outputs[:0], outputs, &pinner)

	e.processReplacing(e.addr, pointerArray(e.inputs, &pinner), pointerArray(e.outputs, &pinner), frames)
}

func channelPointers(dst []*float32, channels [][]float32, pinner *runtime.Pinner) []*float32 {
	for _, ch := range channels {
		if len(ch) == 0 {
			dst = append(dst, nil)

			continue
		}

		pinner.Pin(&ch[0])
		dst = append(dst, &ch[0])
	}

	return dst
}

func pointerArray(ptrs []*float32, pinner *runtime.Pinner) unsafe.Pointer {
	if len(ptrs) == 0 {
		return nil
	}

	pinner.Pin(&ptrs[0])

	return unsafe.Pointer(&ptrs[0])
}
