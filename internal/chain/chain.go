// Package chain runs audio and MIDI through an ordered list of plugins.
package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/preset"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

var (
	// ErrNilPlugin is returned when appending a nil plugin.
	ErrNilPlugin = errors.New("plugin is nil")

	// ErrInvalidState is returned for operations called out of order.
	ErrInvalidState = errors.New("invalid chain state")

	// ErrSlotInitialization marks the slot failure that aborted Initialize.
	ErrSlotInitialization = errors.New("failed to initialize chain slot")
)

// State is the lifecycle state of a chain.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateInitialized
	StatePrepared
	StateProcessing
	StateShutDown
)

var stateNames = [...]string{"empty", "populated", "initialized", "prepared", "processing", "shut down"}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Slot is one plugin and the preset applied to it at initialization.
type Slot struct {
	Plugin plugin.Plugin
	Preset plugin.Preset
}

// PluginLoader creates plugins by name.
type PluginLoader interface {
	Load(name string) (plugin.Plugin, error)
}

// PresetFactory creates a preset from its file name.
type PresetFactory func(name string) (plugin.Preset, error)

// realtimeSetter is implemented by plugins that report a process level.
type realtimeSetter interface {
	SetRealtime(realtime bool)
}

// Chain is an ordered list of slots processed in insertion order. Slots are never
// reordered or removed.
type Chain struct {
	settings  audio.Settings
	logger    logger.Logger
	loader    PluginLoader
	newPreset PresetFactory

	slots    []Slot
	state    State
	realtime bool

	scratch  *audio.SampleBuffer
	deadline time.Time

	// now and sleep drive real-time pacing. Replaced in tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Chain) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithLoader sets the loader resolving plugin names in AddFromArgument.
func WithLoader(loader PluginLoader) Option {
	return func(c *Chain) {
		c.loader = loader
	}
}

// WithPresetFactory replaces the .fxp preset factory.
func WithPresetFactory(fn PresetFactory) Option {
	return func(c *Chain) {
		if fn != nil {
			c.newPreset = fn
		}
	}
}

// WithClock sets the time source and sleep function used for pacing.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(c *Chain) {
		if now != nil {
			c.now = now
		}

		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates an empty chain.
func New(settings audio.Settings, opts ...Option) *Chain {
	c := &Chain{
		settings: settings,
		logger:   logger.NewNoOpLogger(),
		now:      time.Now,
		sleep:    time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.newPreset == nil {
		c.newPreset = func(name string) (plugin.Preset, error) {
			return preset.New(name, c.logger)
		}
	}

	return c
}

// State returns the lifecycle state.
func (c *Chain) State() State { return c.state }

// Len returns the number of slots.
func (c *Chain) Len() int { return len(c.slots) }

// Slots returns a copy of the slots in processing order.
func (c *Chain) Slots() []Slot {
	return append([]Slot(nil), c.slots...)
}

// Realtime reports whether processing is paced to wall-clock time.
func (c *Chain) Realtime() bool { return c.realtime }

// Append adds a plugin and an optional preset at the end of the chain.
func (c *Chain) Append(p plugin.Plugin, pr plugin.Preset) error {
	if p == nil {
		return ErrNilPlugin
	}

	if c.state > StatePopulated {
		return errors.Wrapf(ErrInvalidState, "cannot add plugins to a %s chain", c.state)
	}

	if rt, ok := p.(realtimeSetter); ok {
		rt.SetRealtime(c.realtime)
	}

	c.slots = append(c.slots, Slot{Plugin: p, Preset: pr})
	c.state = StatePopulated

	c.logger.Debug("appended plugin", "slot", len(c.slots)-1, "name", p.Name(), "kind", p.Kind())

	return nil
}

// AddFromArgument parses a "name[,preset];..." argument and appends one slot per
// token. A token that fails to parse or resolve is reported and skipped; the other
// tokens are still added.
func (c *Chain) AddFromArgument(arg string) error {
	if c.loader == nil {
		return errors.Wrap(ErrInvalidState, "chain has no plugin loader")
	}

	tokens, errs := ParseArgument(arg)
	if errs != nil {
		c.logger.Error("invalid plugin argument", "argument", arg, "error", errs)
	}

	for _, token := range tokens {
		if err := c.addToken(token); err != nil {
			c.logger.Error("could not add plugin to chain", "token", token.String(), "error", err)
			errs = errors.CombineErrors(errs, err)
		}
	}

	return errs
}

func (c *Chain) addToken(token Token) error {
	p, err := c.loader.Load(token.Name)
	if err != nil {
		return err
	}

	var pr plugin.Preset

	if token.Preset != "" {
		if pr, err = c.newPreset(token.Preset); err != nil {
			_ = p.Close()

			return err
		}
	}

	if err := c.Append(p, pr); err != nil {
		_ = p.Close()

		return err
	}

	return nil
}

// Initialize opens every plugin in order and applies its preset. The first slot
// that fails stops initialization; slots opened before it stay open.
func (c *Chain) Initialize(ctx context.Context) error {
	if c.state != StateEmpty && c.state != StatePopulated {
		return errors.Wrapf(ErrInvalidState, "cannot initialize a %s chain", c.state)
	}

	for i, slot := range c.slots {
		if err := c.initializeSlot(ctx, slot); err != nil {
			c.logger.Error("plugin chain could not be initialized", "slot", i, "name", slot.Plugin.Name(), "error", err)

			return fmt.Errorf("%w: slot %d (%s): %w", ErrSlotInitialization, i, slot.Plugin.Name(), err)
		}
	}

	c.state = StateInitialized

	return nil
}

func (c *Chain) initializeSlot(ctx context.Context, slot Slot) error {
	if err := slot.Plugin.Open(ctx); err != nil {
		return err
	}

	if slot.Preset == nil {
		return nil
	}

	if err := slot.Preset.Open(); err != nil {
		return errors.Wrapf(err, "opening preset %s", slot.Preset.Name())
	}

	return errors.Wrapf(slot.Preset.Apply(slot.Plugin), "applying preset %s", slot.Preset.Name())
}

// Prepare resumes every plugin in order.
func (c *Chain) Prepare() error {
	if c.state != StateInitialized {
		return errors.Wrapf(ErrInvalidState, "cannot prepare a %s chain", c.state)
	}

	for i, slot := range c.slots {
		if err := slot.Plugin.Prepare(); err != nil {
			return errors.Wrapf(err, "slot %d (%s)", i, slot.Plugin.Name())
		}
	}

	c.state = StatePrepared

	return nil
}

// SetRealtime enables wall-clock pacing. It can only change before processing
// starts.
func (c *Chain) SetRealtime(realtime bool) error {
	if c.state >= StateProcessing {
		return errors.Wrapf(ErrInvalidState, "cannot change pacing of a %s chain", c.state)
	}

	c.realtime = realtime

	for _, slot := range c.slots {
		if rt, ok := slot.Plugin.(realtimeSetter); ok {
			rt.SetRealtime(realtime)
		}
	}

	return nil
}

func (c *Chain) checkProcessing() error {
	if c.state != StatePrepared && c.state != StateProcessing {
		return errors.Wrapf(ErrInvalidState, "cannot process with a %s chain", c.state)
	}

	return nil
}

// ProcessAudio runs one block through every plugin. Each plugin reads the previous
// plugin's output; out holds the last output. in is never modified. With no slots
// the input is copied to out.
func (c *Chain) ProcessAudio(in, out *audio.SampleBuffer) error {
	start := c.now()

	if err := c.checkProcessing(); err != nil {
		return err
	}

	if !in.SameShape(out) {
		return errors.Wrapf(audio.ErrShapeMismatch, "input %dx%d, output %dx%d",
			in.Channels(), in.Frames(), out.Channels(), out.Frames())
	}

	if c.state == StatePrepared {
		c.deadline = start
		c.state = StateProcessing
	}

	if len(c.slots) == 0 {
		if err := out.CopyFrom(in); err != nil {
			return err
		}
	} else {
		c.run(in, out)
	}

	if c.realtime {
		c.pace(out.Frames())
	}

	return nil
}

// run alternates between out and the scratch buffer so the last plugin writes to
// out.
func (c *Chain) run(in, out *audio.SampleBuffer) {
	if c.scratch == nil || !c.scratch.SameShape(out) {
		c.scratch = audio.NewSampleBuffer(out.Channels(), out.Frames())
	}

	last := len(c.slots) - 1
	src := in

	for i, slot := range c.slots {
		dst := c.scratch
		if (last-i)%2 == 0 {
			dst = out
		}

		dst.Clear()
		slot.Plugin.ProcessAudio(src, dst)
		src = dst
	}
}

// pace sleeps until one block period has passed since the previous deadline. When
// processing falls behind, the deadline restarts from now instead of bursting to
// catch up.
func (c *Chain) pace(frames int) {
	c.deadline = c.deadline.Add(c.settings.FramesToDuration(int64(frames)))

	if wait := c.deadline.Sub(c.now()); wait > 0 {
		c.sleep(wait)

		return
	}

	c.deadline = c.now()
}

// ProcessMIDI delivers the block's events to every plugin. Each plugin gets its
// own copy.
func (c *Chain) ProcessMIDI(events []midi.Event) error {
	if err := c.checkProcessing(); err != nil {
		return err
	}

	for _, slot := range c.slots {
		slot.Plugin.ProcessMIDI(midi.Clone(events))
	}

	return nil
}

// MaxTailTimeMs returns the longest tail of any plugin in milliseconds. Tail sizes
// of zero or one mean no tail.
func (c *Chain) MaxTailTimeMs() int64 {
	var maxTail int64

	for _, slot := range c.slots {
		frames := slot.Plugin.Setting(plugin.SettingTailFrames)
		if frames <= 1 {
			continue
		}

		maxTail = max(maxTail, c.settings.FramesToMillis(frames))
	}

	return maxTail
}

// DisplayInfo logs the description of every plugin.
func (c *Chain) DisplayInfo() {
	for i, slot := range c.slots {
		c.logger.Info("chain slot", "slot", i, "name", slot.Plugin.Name())
		slot.Plugin.DisplayInfo()
	}
}

// Shutdown suspends and closes every plugin and preset. Every slot is shut down
// even when an earlier one fails; the first error is returned.
func (c *Chain) Shutdown() error {
	if c.state == StateShutDown {
		return nil
	}

	var firstErr error

	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i, slot := range c.slots {
		c.logger.Debug("closing plugin", "slot", i, "name", slot.Plugin.Name())

		keep(slot.Plugin.Suspend())
		keep(slot.Plugin.Close())

		if slot.Preset != nil {
			keep(slot.Preset.Close())
		}
	}

	c.state = StateShutDown
	c.scratch = nil

	return firstErr
}
