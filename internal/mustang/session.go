package mustang

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Transport is the half-duplex channel to the amplifier. Receive returns an
// empty slice at the end of a response burst.
type Transport interface {
	IsOpen() bool
	Close() error
	Send(data []byte) (int, error)
	Receive(maxBytes int) ([]byte, error)
}

// Option configures a Session.
type Option func(*Session)

// WithDocumentDir makes Start write the reassembled NewerUSB document to
// <dir>/response1.json.
func WithDocumentDir(dir string) Option {
	return func(s *Session) { s.documentDir = dir }
}

// Session drives one amplifier over a Transport. It is not safe for
// concurrent use; every operation runs its round trips to completion before
// returning.
type Session struct {
	model       DeviceModel
	conn        Transport
	proto       Protocol
	documentDir string
}

// NewSession selects the protocol for model and takes ownership of conn.
func NewSession(model DeviceModel, conn Transport, opts ...Option) (*Session, error) {
	proto, err := SelectProtocol(model)
	if err != nil {
		return nil, err
	}
	s := &Session{model: model, conn: conn, proto: proto}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DeviceModel returns the model the session was created for.
func (s *Session) DeviceModel() DeviceModel {
	return s.model
}

// Start initializes the amplifier and reads the preset table and the
// current program.
func (s *Session) Start() (InitialData, error) {
	if !s.conn.IsOpen() {
		return InitialData{}, ErrNotConnected
	}
	slog.Info("starting session", "model", s.model.Name, "category", s.model.Category)

	if !s.proto.DeferInit() {
		for i, p := range s.proto.InitCommand() {
			if _, err := s.roundTrip("init", p.Bytes()); err != nil {
				return InitialData{}, fmt.Errorf("init %d: %w", i, err)
			}
		}
	}
	return s.loadData()
}

// Stop closes the transport.
func (s *Session) Stop() error {
	slog.Info("stopping session", "model", s.model.Name)
	return s.conn.Close()
}

// SetEffect clears the effect's slot and, when the effect is enabled and
// not empty, writes the new settings.
func (s *Session) SetEffect(e FxPedalSettings) error {
	if !s.conn.IsOpen() {
		return ErrNotConnected
	}
	if _, err := s.roundTrip("clear effect", ClearEffectPacket(e).Bytes()); err != nil {
		return fmt.Errorf("clear effect slot %d: %w", e.Slot, err)
	}
	if err := s.apply(); err != nil {
		return err
	}
	if !e.Enabled || e.Effect == EffectEmpty {
		return nil
	}
	if _, err := s.roundTrip("set effect", EffectSettingsPacket(e).Bytes()); err != nil {
		return fmt.Errorf("set effect slot %d: %w", e.Slot, err)
	}
	return s.apply()
}

// SetAmplifier writes the amplifier settings, then the USB gain, each
// followed by its own apply.
func (s *Session) SetAmplifier(a AmpSettings) error {
	if !s.conn.IsOpen() {
		return ErrNotConnected
	}
	if _, err := s.roundTrip("set amp", AmpSettingsPacket(a).Bytes()); err != nil {
		return fmt.Errorf("set amp: %w", err)
	}
	if err := s.apply(); err != nil {
		return err
	}
	if _, err := s.roundTrip("set usb gain", AmpUSBGainPacket(a).Bytes()); err != nil {
		return fmt.Errorf("set usb gain: %w", err)
	}
	return s.apply()
}

// SaveOnAmp stores the current program in slot under name and reads the bank
// back to confirm the write.
func (s *Session) SaveOnAmp(name string, slot byte) error {
	if !s.conn.IsOpen() {
		return ErrNotConnected
	}
	if _, err := s.roundTrip("save", NameAssignment(slot, name).Bytes()); err != nil {
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	if _, err := s.loadBank(slot); err != nil {
		return err
	}
	slog.Info("program saved", "slot", slot, "name", name)
	return nil
}

// LoadMemoryBank selects the bank at slot and returns its decoded program.
func (s *Session) LoadMemoryBank(slot byte) (SignalChain, error) {
	if !s.conn.IsOpen() {
		return SignalChain{}, ErrNotConnected
	}
	bank, err := s.loadBank(slot)
	if err != nil {
		return SignalChain{}, err
	}
	return s.decodeBank(bank), nil
}

// SaveEffects stores a quick-access effect set in slot. The set is bound to
// the FX knob of effects[0].
func (s *Session) SaveEffects(slot byte, name string, effects []FxPedalSettings) error {
	if len(effects) == 0 {
		return fmt.Errorf("save effects slot %d: %w", slot, ErrNoEffects)
	}
	if !s.conn.IsOpen() {
		return ErrNotConnected
	}
	namePacket, err := SaveEffectNamePacket(slot, name, effects)
	if err != nil {
		return err
	}
	if _, err := s.roundTrip("save effect name", namePacket.Bytes()); err != nil {
		return fmt.Errorf("save effect name slot %d: %w", slot, err)
	}
	for i, p := range SaveEffectPackets(slot, effects) {
		if _, err := s.roundTrip("save effect", p.Bytes()); err != nil {
			return fmt.Errorf("save effect %d slot %d: %w", i, slot, err)
		}
	}
	apply, err := ApplyEffectCommand(effects)
	if err != nil {
		return err
	}
	if _, err := s.roundTrip("apply effects", apply.Bytes()); err != nil {
		return fmt.Errorf("apply effects: %w", err)
	}
	slog.Info("effects saved", "slot", slot, "name", name, "count", len(effects))
	return nil
}

func (s *Session) apply() error {
	if _, err := s.roundTrip("apply", ApplyCommand().Bytes()); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}

// roundTrip sends one frame and reads one reply.
func (s *Session) roundTrip(label string, raw [PacketSize]byte) ([]byte, error) {
	if err := s.send(label, raw); err != nil {
		return nil, err
	}
	resp, err := s.conn.Receive(PacketSize)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return resp, nil
}

func (s *Session) send(label string, raw [PacketSize]byte) error {
	slog.Debug("send", "cmd", label, "header", Header(raw[:HeaderSize]))
	if _, err := s.conn.Send(raw[:]); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

// drain reads frames until the device signals the end of the burst.
func (s *Session) drain() ([][PacketSize]byte, error) {
	var burst [][PacketSize]byte
	for {
		resp, err := s.conn.Receive(PacketSize)
		if err != nil {
			return nil, fmt.Errorf("receive burst: %w", err)
		}
		if len(resp) == 0 {
			break
		}
		burst = append(burst, RawPacket(resp))
	}
	slog.Debug("burst received", "packets", len(burst))
	return burst, nil
}

func (s *Session) loadBank(slot byte) ([BankPackets][PacketSize]byte, error) {
	var bank [BankPackets][PacketSize]byte
	if err := s.send("load slot", LoadSlotCommand(slot).Bytes()); err != nil {
		return bank, fmt.Errorf("load bank %d: %w", slot, err)
	}
	burst, err := s.drain()
	if err != nil {
		return bank, fmt.Errorf("load bank %d: %w", slot, err)
	}
	if len(burst) < BankPackets {
		return bank, fmt.Errorf("load bank %d: got %d packets, want %d: %w", slot, len(burst), BankPackets, ErrMalformedResponse)
	}
	copy(bank[:], burst)
	return bank, nil
}

func (s *Session) decodeBank(bank [BankPackets][PacketSize]byte) SignalChain {
	if _, ok := s.proto.(usbV3Protocol); ok {
		// Amp and effect records of NewerUSB devices live in the structured
		// document, not in the bank frames.
		return SignalChain{Name: DecodeName(bank[bankNameIndex]), Effects: []FxPedalSettings{}}
	}
	return DecodeBank(bank)
}

func (s *Session) loadData() (InitialData, error) {
	var collected [][PacketSize]byte

	// NewerUSB init replies carry the start of the first document, so they
	// share the buffer with the load burst.
	if s.proto.DeferInit() {
		for i, p := range s.proto.InitCommand() {
			resp, err := s.roundTrip("init", p.Bytes())
			if err != nil {
				return InitialData{}, fmt.Errorf("init %d: %w", i, err)
			}
			collected = append(collected, RawPacket(resp))
		}
	}

	if err := s.send("load", LoadCommand().Bytes()); err != nil {
		return InitialData{}, fmt.Errorf("load: %w", err)
	}
	burst, err := s.drain()
	if err != nil {
		return InitialData{}, fmt.Errorf("load: %w", err)
	}
	collected = append(collected, burst...)

	switch s.proto.(type) {
	case legacyProtocol:
		return s.splitLegacyBurst(collected)
	case usbV3Protocol:
		return s.decodeDocumentBurst(collected), nil
	default:
		return InitialData{}, fmt.Errorf("%w: %s", ErrUnsupportedCategory, s.model.Category)
	}
}

// presetTablePackets returns how many leading packets of a load burst hold
// the preset table.
func (s *Session) presetTablePackets(collected int) int {
	if s.model.NumberOfPresets > 0 {
		return s.model.NumberOfPresets * packetsPerPresetRecord
	}
	if collected > presetTableThreshold {
		return presetTableLarge
	}
	return presetTableSmall
}

func (s *Session) splitLegacyBurst(collected [][PacketSize]byte) (InitialData, error) {
	n := s.presetTablePackets(len(collected))
	if len(collected) < n+BankPackets {
		return InitialData{}, fmt.Errorf("load: got %d packets, want %d: %w", len(collected), n+BankPackets, ErrMalformedResponse)
	}
	var bank [BankPackets][PacketSize]byte
	copy(bank[:], collected[n:n+BankPackets])

	data := InitialData{
		Chain:   DecodeBank(bank),
		Presets: DecodePresetList(collected[:n]),
		Slots:   DecodePresetSlots(collected[:n]),
	}
	slog.Info("initial data loaded", "presets", len(data.Presets), "name", data.Chain.Name)
	return data, nil
}

func (s *Session) decodeDocumentBurst(collected [][PacketSize]byte) InitialData {
	data := InitialData{
		Chain:    SignalChain{Effects: []FxPedalSettings{}},
		Presets:  []string{},
		Slots:    []Preset{},
		Document: ReassemblePayload(collected),
	}
	if len(collected) > 0 {
		data.Chain.Name = DecodeName(collected[0])
	}
	slog.Info("initial data loaded", "packets", len(collected), "document", len(data.Document))

	if s.documentDir != "" {
		path := filepath.Join(s.documentDir, "response1.json")
		if err := os.WriteFile(path, data.Document, 0o644); err != nil {
			slog.Warn("failed to write document", "path", path, "error", err)
		}
	}
	return data
}
