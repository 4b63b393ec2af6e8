// Package amp keeps one amplifier session for the daemon and serializes
// every caller onto it.
package amp

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mzyy94/plugd/internal/mustang"
)

// Opener finds and opens an amplifier.
type Opener func() (mustang.Transport, mustang.DeviceModel, error)

// Amp is a high-level interface for amplifier operations. All methods are
// safe for concurrent use; device round trips run one at a time.
type Amp struct {
	mu      sync.Mutex
	open    Opener
	opts    []mustang.Option
	session *mustang.Session
	model   mustang.DeviceModel
	presets []mustang.Preset
	current mustang.SignalChain
}

// Snapshot is the cached device state.
type Snapshot struct {
	Model   mustang.DeviceModel `json:"-"`
	Online  bool                `json:"online"`
	Presets []mustang.Preset    `json:"presets"`
	Current mustang.SignalChain `json:"current"`
}

// New creates an Amp that opens devices with open. opts are passed to every
// session.
func New(open Opener, opts ...mustang.Option) *Amp {
	return &Amp{open: open, opts: opts}
}

// Connect opens the amplifier and reads its initial state. When loadSlot is
// set, that bank is selected afterwards.
func (a *Amp) Connect(loadSlot *int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return nil
	}

	conn, model, err := a.open()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	session, err := mustang.NewSession(model, conn, a.opts...)
	if err != nil {
		conn.Close()
		return err
	}
	data, err := session.Start()
	if err != nil {
		session.Stop()
		return fmt.Errorf("start: %w", err)
	}
	a.session = session
	a.model = model
	a.presets = data.Slots
	a.current = data.Chain
	slog.Info("connected to amplifier", "model", model.Name, "presets", len(data.Presets), "program", data.Chain.Name)

	if loadSlot != nil {
		chain, err := session.LoadMemoryBank(byte(*loadSlot))
		if err != nil {
			slog.Warn("load bank on connect failed", "slot", *loadSlot, "err", err)
			a.checkTransport(err)
			return nil
		}
		a.current = chain
	}
	return nil
}

// Disconnect closes the session.
func (a *Amp) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	if err := a.session.Stop(); err != nil {
		slog.Warn("stop failed", "err", err)
	}
	a.session = nil
	slog.Info("disconnected from amplifier", "model", a.model.Name)
}

// Online reports whether a session is active.
func (a *Amp) Online() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

// Model returns the model of the last connected amplifier.
func (a *Amp) Model() mustang.DeviceModel {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}

// Snapshot returns a copy of the cached state.
func (a *Amp) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Model:   a.model,
		Online:  a.session != nil,
		Presets: slices.Clone(a.presets),
		Current: cloneChain(a.current),
	}
}

// LoadBank selects the bank at slot and makes it the current program.
func (a *Amp) LoadBank(slot byte) (mustang.SignalChain, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return mustang.SignalChain{}, mustang.ErrNotConnected
	}
	chain, err := a.session.LoadMemoryBank(slot)
	if err != nil {
		return mustang.SignalChain{}, a.checkTransport(err)
	}
	a.current = chain
	return cloneChain(chain), nil
}

// SaveBank stores the current program in slot under name.
func (a *Amp) SaveBank(slot byte, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return mustang.ErrNotConnected
	}
	if err := a.session.SaveOnAmp(name, slot); err != nil {
		return a.checkTransport(err)
	}
	a.current.Name = name
	a.presets = renamePreset(a.presets, mustang.Preset{Slot: slot, Name: name})
	return nil
}

// SetAmplifier changes the amplifier of the current program.
func (a *Amp) SetAmplifier(s mustang.AmpSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return mustang.ErrNotConnected
	}
	if err := a.session.SetAmplifier(s); err != nil {
		return a.checkTransport(err)
	}
	a.current.Amp = s
	return nil
}

// SetEffect changes one effect slot of the current program.
func (a *Amp) SetEffect(e mustang.FxPedalSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return mustang.ErrNotConnected
	}
	if err := a.session.SetEffect(e); err != nil {
		return a.checkTransport(err)
	}
	a.current.Effects = replaceEffect(a.current.Effects, e)
	return nil
}

// SaveEffects stores a quick-access effect set.
func (a *Amp) SaveEffects(slot byte, name string, effects []mustang.FxPedalSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return mustang.ErrNotConnected
	}
	return a.checkTransport(a.session.SaveEffects(slot, name, effects))
}

// checkTransport drops the session when err came from the transport, so the
// next Connect reopens the device. Protocol-level errors keep it. The caller
// must hold a.mu.
func (a *Amp) checkTransport(err error) error {
	if err == nil || errors.Is(err, mustang.ErrMalformedResponse) || errors.Is(err, mustang.ErrNoEffects) {
		return err
	}
	slog.Warn("amplifier transport failed, dropping session", "model", a.model.Name, "err", err)
	if stopErr := a.session.Stop(); stopErr != nil {
		slog.Debug("stop after transport failure", "err", stopErr)
	}
	a.session = nil
	return err
}

// renamePreset sets the name cached for p.Slot, adding the slot in order
// when it was blank.
func renamePreset(presets []mustang.Preset, p mustang.Preset) []mustang.Preset {
	i, found := slices.BinarySearchFunc(presets, p.Slot, func(e mustang.Preset, slot byte) int {
		return int(e.Slot) - int(slot)
	})
	if found {
		presets[i] = p
		return presets
	}
	return slices.Insert(presets, i, p)
}

// replaceEffect drops whatever occupies e's slot and adds e when it is active.
func replaceEffect(effects []mustang.FxPedalSettings, e mustang.FxPedalSettings) []mustang.FxPedalSettings {
	out := make([]mustang.FxPedalSettings, 0, len(effects)+1)
	for _, cur := range effects {
		if cur.Slot != e.Slot {
			out = append(out, cur)
		}
	}
	if e.Enabled && e.Effect != mustang.EffectEmpty {
		out = append(out, e)
		slices.SortFunc(out, func(x, y mustang.FxPedalSettings) int { return int(x.Slot) - int(y.Slot) })
	}
	return out
}

func cloneChain(c mustang.SignalChain) mustang.SignalChain {
	c.Effects = slices.Clone(c.Effects)
	return c
}
