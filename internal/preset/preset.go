// Package preset reads and applies VST 2.x program files (.fxp).
package preset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// Extension is the file extension of program files.
const Extension = ".fxp"

// ErrPluginMismatch is returned when a program was saved by a different plugin.
var ErrPluginMismatch = errors.New("preset belongs to a different plugin")

// Target is a plugin that can receive a program.
type Target interface {
	UniqueID() uint32
	ParameterCount() int
	SetParameter(index int, value float32) error
	SetProgramName(name string) error
	SetProgramChunk(chunk []byte) error
}

// Source is a plugin whose current parameters can be captured.
type Source interface {
	UniqueID() uint32
	ParameterCount() int
	Parameter(index int) (float32, error)
}

// FXP is a program file attached to a chain slot.
type FXP struct {
	name    string
	logger  logger.Logger
	program *Program
}

// New returns an unopened preset for name. Only .fxp files are supported.
func New(name string, log logger.Logger) (*FXP, error) {
	if !strings.EqualFold(filepath.Ext(name), Extension) {
		return nil, errors.Wrapf(plugin.ErrUnsupportedFeature,
			"preset %q: only %s program files are supported", name, Extension)
	}

	return &FXP{name: name, logger: log.With("preset", name)}, nil
}

// Name implements plugin.Preset. It is the file name exactly as given.
func (f *FXP) Name() string { return f.name }

// Program returns the decoded program, or nil before Open.
func (f *FXP) Program() *Program { return f.program }

// Open implements plugin.Preset.
func (f *FXP) Open() error {
	path, err := xdg.ExpandPath(f.name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read preset %s", f.name)
	}

	prog, err := Decode(bytes.NewReader(data))
	if err != nil {
		f.logger.Error("preset is not a valid program file", "error", err)

		return errors.Wrap(err, f.name)
	}

	f.logger.Debug("read preset",
		"format", prog.Format.String(),
		"plugin_id", prog.PluginID,
		"program", prog.Name,
	)

	f.program = prog

	return nil
}

// Apply implements plugin.Preset.
func (f *FXP) Apply(p plugin.Plugin) error {
	if f.program == nil {
		return errors.Wrapf(plugin.ErrNotOpen, "preset %s", f.name)
	}

	target, ok := p.(Target)
	if !ok {
		return errors.Wrapf(plugin.ErrUnsupportedFeature, "%s does not accept program files", p.Name())
	}

	if id := pluginid.FromValue(target.UniqueID()); id.Value != f.program.PluginID.Value {
		f.logger.Error("preset was saved by another plugin", "preset_id", f.program.PluginID, "plugin_id", id)

		return errors.Wrapf(ErrPluginMismatch, "%s is for %s, %s is %s",
			f.name, f.program.PluginID, p.Name(), id)
	}

	switch f.program.Format {
	case FormatChunk:
		if err := target.SetProgramChunk(f.program.Chunk); err != nil {
			return err
		}
	default:
		if count := target.ParameterCount(); len(f.program.Parameters) > count {
			return errors.Wrapf(plugin.ErrInvalidParameterIndex,
				"%s stores %d parameters, %s has %d", f.name, len(f.program.Parameters), p.Name(), count)
		}

		for i, v := range f.program.Parameters {
			if err := target.SetParameter(i, v); err != nil {
				return errors.Wrapf(err, "applying %s", f.name)
			}
		}
	}

	if err := target.SetProgramName(f.program.Name); err != nil {
		return err
	}

	f.logger.Info("loaded preset", "plugin", p.Name(), "program", f.program.Name)

	return nil
}

// Close implements plugin.Preset.
func (f *FXP) Close() error {
	f.program = nil

	return nil
}

// Capture builds a parameter program from the current state of src.
func Capture(src Source, name string) (*Program, error) {
	prog := &Program{
		Format:     FormatParameters,
		Version:    1,
		PluginID:   pluginid.FromValue(src.UniqueID()),
		FxVersion:  1,
		Name:       name,
		Parameters: make([]float32, src.ParameterCount()),
	}

	for i := range prog.Parameters {
		v, err := src.Parameter(i)
		if err != nil {
			return nil, err
		}

		prog.Parameters[i] = v
	}

	return prog, nil
}

// Save writes prog to path.
func Save(prog *Program, path string) error {
	var buf bytes.Buffer
	if err := prog.Encode(&buf); err != nil {
		return err
	}

	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "failed to write preset %s", path) //nolint:gosec // presets are shared files
}
