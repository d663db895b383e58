// Package crashdump records diagnostic reports when plughost panics.
package crashdump

import "time"

// CrashInfo is one crash dump.
type CrashInfo struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	PanicValue string         `json:"panic_value"`
	StackTrace string         `json:"stack_trace"`
	Runtime    RuntimeInfo    `json:"runtime"`
	Run        *RunInfo       `json:"run,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
	Metadata   DumpMetadata   `json:"metadata"`
}

// RuntimeInfo describes the Go runtime at the time of the crash.
type RuntimeInfo struct {
	GOOS         string `json:"goos"`
	GOARCH       string `json:"goarch"`
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
}

// RunInfo describes the command that was running.
type RunInfo struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	// Chain is the plugin chain argument, when one was being run.
	Chain string `json:"chain,omitempty"`
	// Slots lists the plugins loaded into the chain so far.
	Slots []string `json:"slots,omitempty"`
	// State is the chain lifecycle state.
	State string `json:"state,omitempty"`
}

// DumpMetadata holds host details.
type DumpMetadata struct {
	Version    string `json:"version"`
	Hostname   string `json:"hostname,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
}

// DumpSummary is the short form used for listings.
type DumpSummary struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	PanicValue string    `json:"panic_value"`
	FilePath   string    `json:"file_path"`
	Size       int64     `json:"size"`
}
