package mustang

import "strings"

// --------------------------------------------------------------------------
// Session control
// --------------------------------------------------------------------------

// LoadCommand requests the full preset table followed by the current program.
func LoadCommand() Packet[EmptyPayload] {
	return Packet[EmptyPayload]{Header: newHeader(StageUnknown, TypeLoad, DSPNone)}
}

// LoadSlotCommand selects the memory bank at slot and requests its contents.
func LoadSlotCommand(slot byte) Packet[EmptyPayload] {
	h := newHeader(StageReady, TypeData, DSPOpSelectMemBank)
	h.SetSlot(slot)
	h.SetUnknown(0x01, 0x00)
	return Packet[EmptyPayload]{Header: h}
}

// ApplyCommand commits pending parameter writes.
func ApplyCommand() Packet[EmptyPayload] {
	return Packet[EmptyPayload]{Header: newHeader(StageReady, TypeOperation, DSPNone)}
}

// ApplyEffectCommand commits a quick-access effect save. The FX knob the
// effects are bound to is taken from effects[0].
func ApplyEffectCommand(effects []FxPedalSettings) (Packet[EmptyPayload], error) {
	if len(effects) == 0 {
		return Packet[EmptyPayload]{}, ErrNoEffects
	}
	p := ApplyCommand()
	p.Header.SetFXKnob(fxKnob(effects[0]))
	return p, nil
}

// --------------------------------------------------------------------------
// Memory banks
// --------------------------------------------------------------------------

// NameAssignment stores the current program under name in bank slot.
func NameAssignment(slot byte, name string) Packet[NamePayload] {
	h := newHeader(StageReady, TypeData, DSPOpSave)
	h.SetSlot(slot)
	h.SetUnknown(0x01, 0x01)
	p := Packet[NamePayload]{Header: h}
	p.Payload.SetName(name, nameLength)
	return p
}

// SaveEffectNamePacket names a quick-access effect set. The FX knob is taken
// from effects[0].
func SaveEffectNamePacket(slot byte, name string, effects []FxPedalSettings) (Packet[NamePayload], error) {
	if len(effects) == 0 {
		return Packet[NamePayload]{}, ErrNoEffects
	}
	h := newHeader(StageReady, TypeData, DSPOpSaveEffectName)
	h.SetFXKnob(fxKnob(effects[0]))
	h.SetSlot(slot)
	h.SetUnknown(0x01, 0x01)
	p := Packet[NamePayload]{Header: h}
	p.Payload.SetName(name, effectNameLength)
	return p, nil
}

// SaveEffectPackets builds one packet per effect of a quick-access effect set.
func SaveEffectPackets(slot byte, effects []FxPedalSettings) []Packet[EffectPayload] {
	packets := make([]Packet[EffectPayload], 0, len(effects))
	for _, e := range effects {
		h := newHeader(StageReady, TypeData, e.Effect.Family())
		h.SetFXKnob(fxKnob(e))
		h.SetSlot(slot)
		h.SetUnknown(0x01, 0x01)
		packets = append(packets, Packet[EffectPayload]{Header: h, Payload: encodeEffect(e)})
	}
	return packets
}

func fxKnob(e FxPedalSettings) byte {
	switch e.Effect.Family() {
	case DSPEffect1:
		return 0x01
	case DSPEffect2, DSPEffect3:
		return 0x02
	default:
		return 0x00
	}
}

// --------------------------------------------------------------------------
// Amplifier
// --------------------------------------------------------------------------

// AmpSettingsPacket sets the amplifier model and its controls.
func AmpSettingsPacket(s AmpSettings) Packet[AmpPayload] {
	h := newHeader(StageReady, TypeOperation, DSPAmp)
	h.SetUnknown(0x01, 0x01)

	var pl AmpPayload
	code, ok := ampCodes[s.Model]
	if !ok {
		code = ampCodes[AmpFender57Deluxe]
	}
	pl[ampModel] = code.id
	pl[ampFixedA] = code.a
	pl[ampFixedB] = code.a
	pl[ampFixedC] = code.c
	pl[ampFixedC+1] = code.c
	pl[ampFixedC+2] = code.c
	pl[ampFixedD] = code.c
	pl[ampFixedE] = code.e

	pl[ampVolume] = s.Volume
	pl[ampGain] = s.Gain
	pl[ampGain2] = s.Gain2
	pl[ampMasterVol] = s.MasterVol
	pl[ampTreble] = s.Treble
	pl[ampMiddle] = s.Middle
	pl[ampBass] = s.Bass
	pl[ampPresence] = s.Presence
	pl[ampBias] = s.Bias

	if s.Cabinet <= CabinetSS112 {
		pl[ampCabinet] = byte(s.Cabinet)
	}
	if s.NoiseGate <= 0x05 {
		pl[ampNoiseGate] = s.NoiseGate
	}
	// Threshold and depth only apply to the custom noise gate.
	if s.NoiseGate == 0x05 {
		if s.Threshold <= 0x09 {
			pl[ampThreshold] = s.Threshold
		}
		pl[ampDepth] = s.Depth
	}
	if s.Sag > 0x02 {
		pl[ampSag] = 0x01
	} else {
		pl[ampSag] = s.Sag
	}
	if s.Brightness {
		pl[ampBrightness] = 0x01
	}
	return Packet[AmpPayload]{Header: h, Payload: pl}
}

// AmpUSBGainPacket sets the USB output gain.
func AmpUSBGainPacket(s AmpSettings) Packet[AmpPayload] {
	h := newHeader(StageReady, TypeOperation, DSPUSBGain)
	h.SetUnknown(0x01, 0x01)
	var pl AmpPayload
	pl[ampUSBGain] = s.USBGain
	return Packet[AmpPayload]{Header: h, Payload: pl}
}

// DecodeAmp merges the amplifier record (bank position 1) with the USB gain
// record (bank position 6).
func DecodeAmp(ampRaw, gainRaw [PacketSize]byte) AmpSettings {
	pl := PacketFromBytes[AmpPayload](ampRaw).Payload
	gain := PacketFromBytes[AmpPayload](gainRaw).Payload
	return AmpSettings{
		Model:      ampFromID(pl[ampModel]),
		Volume:     pl[ampVolume],
		Gain:       pl[ampGain],
		Gain2:      pl[ampGain2],
		MasterVol:  pl[ampMasterVol],
		Treble:     pl[ampTreble],
		Middle:     pl[ampMiddle],
		Bass:       pl[ampBass],
		Presence:   pl[ampPresence],
		Depth:      pl[ampDepth],
		Bias:       pl[ampBias],
		NoiseGate:  pl[ampNoiseGate],
		Threshold:  pl[ampThreshold],
		Cabinet:    Cabinet(pl[ampCabinet]),
		Sag:        pl[ampSag],
		Brightness: pl[ampBrightness] != 0,
		USBGain:    gain[ampUSBGain],
	}
}

// --------------------------------------------------------------------------
// Effects
// --------------------------------------------------------------------------

// EffectSettingsPacket places an effect into its slot.
func EffectSettingsPacket(e FxPedalSettings) Packet[EffectPayload] {
	h := newHeader(StageReady, TypeOperation, e.Effect.Family())
	h.SetUnknown(0x01, 0x01)
	return Packet[EffectPayload]{Header: h, Payload: encodeEffect(e)}
}

// ClearEffectPacket removes whatever effect occupies e's slot. The DSP is the
// family of e.Effect, or the slot's default DSP when e is empty.
func ClearEffectPacket(e FxPedalSettings) Packet[EffectPayload] {
	dsp := e.Effect.Family()
	if dsp == DSPNone {
		dsp = DSPEffect0 + DSP(e.Slot&0x03)
	}
	h := newHeader(StageReady, TypeOperation, dsp)
	h.SetUnknown(0x01, 0x01)
	var pl EffectPayload
	pl[fxSlot] = slotByte(e)
	return Packet[EffectPayload]{Header: h, Payload: pl}
}

func slotByte(e FxPedalSettings) byte {
	if e.PostAmp {
		return e.Slot + postAmpSlotOffset
	}
	return e.Slot
}

func encodeEffect(e FxPedalSettings) EffectPayload {
	var pl EffectPayload
	code := effectCodes[e.Effect]
	pl[fxModel] = code.id
	pl[fxSlot] = slotByte(e)
	pl[fxVariant] = code.variant
	pl[fxFlags] = code.flags

	knobs := [6]byte{e.Knob1, e.Knob2, e.Knob3, e.Knob4, e.Knob5, e.Knob6}
	switch e.Effect {
	case EffectSimpleComp:
		knobs[0] = min(knobs[0], 0x03)
		clear(knobs[1:])
	case EffectRingModulator:
		knobs[3] = min(knobs[3], 0x01)
	case EffectPhaser:
		knobs[4] = min(knobs[4], 0x01)
	}
	copy(pl[fxKnob1:], knobs[:])
	return pl
}

// DecodeEffects decodes the four effect positions of a bank. Empty slots are
// omitted.
func DecodeEffects(raws [4][PacketSize]byte) []FxPedalSettings {
	effects := make([]FxPedalSettings, 0, len(raws))
	for _, raw := range raws {
		pl := PacketFromBytes[EffectPayload](raw).Payload
		effect := effectFromID(pl[fxModel])
		if effect == EffectEmpty {
			continue
		}
		slot := pl[fxSlot]
		postAmp := slot >= postAmpSlotOffset
		if postAmp {
			slot -= postAmpSlotOffset
		}
		effects = append(effects, FxPedalSettings{
			Slot:    slot,
			Effect:  effect,
			Knob1:   pl[fxKnob1],
			Knob2:   pl[fxKnob1+1],
			Knob3:   pl[fxKnob1+2],
			Knob4:   pl[fxKnob1+3],
			Knob5:   pl[fxKnob1+4],
			Knob6:   pl[fxKnob1+5],
			PostAmp: postAmp,
			Enabled: true,
		})
	}
	return effects
}

// --------------------------------------------------------------------------
// Names
// --------------------------------------------------------------------------

// DecodeName returns the program name carried by a name packet.
func DecodeName(raw [PacketSize]byte) string {
	return PacketFromBytes[NamePayload](raw).Payload.Name()
}

// DecodePresetList decodes the preset table of a load burst. Each preset
// occupies two packets; the name is in the first. Blank names are skipped.
func DecodePresetList(raws [][PacketSize]byte) []string {
	presets := DecodePresetSlots(raws)
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// DecodePresetSlots decodes the preset table like DecodePresetList but keeps
// the device slot of every named preset.
func DecodePresetSlots(raws [][PacketSize]byte) []Preset {
	presets := make([]Preset, 0, len(raws)/packetsPerPresetRecord)
	for i := 0; i < len(raws); i += packetsPerPresetRecord {
		name := DecodeName(raws[i])
		if strings.TrimSpace(name) == "" {
			continue
		}
		presets = append(presets, Preset{Slot: byte(i / packetsPerPresetRecord), Name: name})
	}
	return presets
}

// DecodeBank decodes a 7-packet bank snapshot.
func DecodeBank(bank [BankPackets][PacketSize]byte) SignalChain {
	return SignalChain{
		Name: DecodeName(bank[bankNameIndex]),
		Amp:  DecodeAmp(bank[bankAmpIndex], bank[bankUSBGainIndex]),
		Effects: DecodeEffects([4][PacketSize]byte{
			bank[bankFirstEffectIndex],
			bank[bankFirstEffectIndex+1],
			bank[bankFirstEffectIndex+2],
			bank[bankFirstEffectIndex+3],
		}),
	}
}
