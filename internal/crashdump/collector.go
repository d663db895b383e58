package crashdump

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/config"
)

const (
	idTimeLayout = "20060102T150405"
	idHashLength = 8
	panicNilStr  = "panic(nil)"
)

// Collector builds CrashInfo values for a given plughost version.
type Collector struct {
	Version string

	now   func() time.Time
	stack func() []byte
}

// NewCollector returns a collector stamping dumps with version.
func NewCollector(version string) *Collector {
	return &Collector{Version: version, now: time.Now, stack: debug.Stack}
}

// Collect describes a recovered panic. Call it from the deferred function
// that recovered so the stack still shows where the panic started. run and
// cfg may be nil when the crash happened before they were known.
func (c *Collector) Collect(recovered any, run *RunInfo, cfg *config.Config) *CrashInfo {
	ts := c.now().UTC()
	value := panicString(recovered)

	info := &CrashInfo{
		ID:         crashID(ts, value),
		Timestamp:  ts,
		PanicValue: value,
		StackTrace: string(c.stack()),
		Run:        run,
		Runtime: RuntimeInfo{
			GOOS:         runtime.GOOS,
			GOARCH:       runtime.GOARCH,
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			NumCPU:       runtime.NumCPU(),
		},
		Metadata: DumpMetadata{Version: c.Version},
	}

	info.Metadata.Hostname, _ = os.Hostname()
	info.Metadata.WorkingDir, _ = os.Getwd()

	if cfg != nil {
		info.Config = snapshot(cfg)
	}

	return info
}

func panicString(v any) string {
	switch v := v.(type) {
	case nil:
		return panicNilStr
	case error:
		var pne *runtime.PanicNilError
		if errors.As(v, &pne) {
			return panicNilStr
		}

		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// snapshot turns cfg into plain maps so a dump stays readable after the
// config types change.
func snapshot(cfg *config.Config) map[string]any {
	var out map[string]any

	data, err := json.Marshal(cfg)
	if err == nil {
		err = json.Unmarshal(data, &out)
	}

	if err != nil {
		return map[string]any{"error": err.Error()}
	}

	return out
}

// crashID is "crash-<UTC time>-<hash>", with the hash taken over the exact
// time and panic value so dumps in the same second differ.
func crashID(ts time.Time, value string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d-%s", ts.UnixNano(), value))

	return "crash-" + ts.Format(idTimeLayout) + "-" + hex.EncodeToString(sum[:])[:idHashLength]
}
