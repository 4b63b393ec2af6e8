package mustang

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func namePacket(name string) [PacketSize]byte {
	var p Packet[NamePayload]
	p.Payload.SetName(name, nameLength)
	return p.Bytes()
}

func TestLoadCommand(t *testing.T) {
	raw := LoadCommand().Bytes()
	if raw[0] != 0xff || raw[1] != 0xc1 {
		t.Errorf("header = % x, want ff c1", raw[:2])
	}
}

func TestLoadSlotCommand(t *testing.T) {
	raw := LoadSlotCommand(17).Bytes()
	want := []byte{0x1c, 0x01, 0x01, 0x00, 17, 0x00, 0x01, 0x00}
	if !bytes.Equal(raw[:8], want) {
		t.Errorf("header = % x, want % x", raw[:8], want)
	}
}

func TestApplyCommand(t *testing.T) {
	raw := ApplyCommand().Bytes()
	if raw[0] != 0x1c || raw[1] != 0x03 || raw[2] != 0x00 || raw[3] != 0x00 {
		t.Errorf("header = % x, want 1c 03 00 00", raw[:4])
	}
}

func TestApplyEffectCommand_FXKnob(t *testing.T) {
	tests := []struct {
		effect Effect
		want   byte
	}{
		{EffectOverdrive, 0x00},
		{EffectSineChorus, 0x01},
		{EffectTapeDelay, 0x02},
		{EffectArenaReverb, 0x02},
	}
	for _, tt := range tests {
		p, err := ApplyEffectCommand([]FxPedalSettings{{Effect: tt.effect}, {Effect: EffectSineChorus}})
		if err != nil {
			t.Fatalf("ApplyEffectCommand(%s) error: %v", tt.effect, err)
		}
		if p.Header.FXKnob() != tt.want {
			t.Errorf("ApplyEffectCommand(%s) fx knob = 0x%02x, want 0x%02x", tt.effect, p.Header.FXKnob(), tt.want)
		}
		if p.Header.Type() != TypeOperation {
			t.Errorf("ApplyEffectCommand(%s) type = 0x%02x, want 0x03", tt.effect, p.Header.Type())
		}
	}
}

func TestApplyEffectCommand_Empty(t *testing.T) {
	if _, err := ApplyEffectCommand(nil); !errors.Is(err, ErrNoEffects) {
		t.Errorf("error = %v, want ErrNoEffects", err)
	}
}

func TestNameAssignment(t *testing.T) {
	raw := NameAssignment(5, "Blues Lead").Bytes()
	want := []byte{0x1c, 0x01, 0x03, 0x00, 5, 0x00, 0x01, 0x01}
	if !bytes.Equal(raw[:8], want) {
		t.Errorf("header = % x, want % x", raw[:8], want)
	}
	if got := DecodeName(raw); got != "Blues Lead" {
		t.Errorf("name = %q, want %q", got, "Blues Lead")
	}
}

func TestSaveEffectNamePacket(t *testing.T) {
	effects := []FxPedalSettings{{Effect: EffectMonoDelay}}
	p, err := SaveEffectNamePacket(2, "A very long quick-access effect name", effects)
	if err != nil {
		t.Fatalf("SaveEffectNamePacket error: %v", err)
	}
	raw := p.Bytes()
	want := []byte{0x1c, 0x01, 0x04, 0x02, 2, 0x00, 0x01, 0x01}
	if !bytes.Equal(raw[:8], want) {
		t.Errorf("header = % x, want % x", raw[:8], want)
	}
	if got := DecodeName(raw); len(got) != effectNameLength {
		t.Errorf("name length = %d, want %d", len(got), effectNameLength)
	}

	if _, err := SaveEffectNamePacket(2, "x", nil); !errors.Is(err, ErrNoEffects) {
		t.Errorf("empty effects error = %v, want ErrNoEffects", err)
	}
}

func TestSaveEffectPackets(t *testing.T) {
	effects := []FxPedalSettings{
		{Slot: 1, Effect: EffectSineFlanger, Knob1: 1, Knob2: 2},
		{Slot: 2, Effect: EffectLargeHallReverb, Knob1: 3, PostAmp: true},
	}
	packets := SaveEffectPackets(7, effects)
	if len(packets) != 2 {
		t.Fatalf("len = %d, want 2", len(packets))
	}
	for i, p := range packets {
		if p.Header.Type() != TypeData {
			t.Errorf("packet %d type = 0x%02x, want 0x01", i, p.Header.Type())
		}
		if p.Header.Slot() != 7 {
			t.Errorf("packet %d slot = %d, want 7", i, p.Header.Slot())
		}
		if p.Header.DSP() != effects[i].Effect.Family() {
			t.Errorf("packet %d dsp = 0x%02x, want 0x%02x", i, p.Header.DSP(), effects[i].Effect.Family())
		}
	}
	if packets[0].Header.FXKnob() != 0x01 || packets[1].Header.FXKnob() != 0x02 {
		t.Errorf("fx knobs = %d/%d, want 1/2", packets[0].Header.FXKnob(), packets[1].Header.FXKnob())
	}
	if packets[1].Payload[fxSlot] != 6 {
		t.Errorf("post-amp slot byte = %d, want 6", packets[1].Payload[fxSlot])
	}
}

func TestAmpSettingsPacket(t *testing.T) {
	s := AmpSettings{
		Model:      AmpFender65DeluxeReverb,
		Volume:     0x10,
		Gain:       0x20,
		Gain2:      0x21,
		MasterVol:  0x30,
		Treble:     0x40,
		Middle:     0x50,
		Bass:       0x60,
		Presence:   0x70,
		Depth:      0x80,
		Bias:       0x90,
		NoiseGate:  0x05,
		Threshold:  0x04,
		Cabinet:    Cabinet65Deluxe,
		Sag:        0x02,
		Brightness: true,
	}
	p := AmpSettingsPacket(s)
	raw := p.Bytes()

	if raw[0] != 0x1c || raw[1] != 0x03 || raw[2] != 0x05 || raw[6] != 0x01 || raw[7] != 0x01 {
		t.Errorf("header = % x, want 1c 03 05 .. .. .. 01 01", raw[:8])
	}

	checks := []struct {
		offset int
		want   byte
	}{
		{16, 0x53}, // model
		{32, 0x10}, // volume
		{33, 0x20}, // gain
		{34, 0x21}, // gain2
		{35, 0x30}, // master
		{36, 0x40}, // treble
		{37, 0x50}, // middle
		{38, 0x60}, // bass
		{39, 0x70}, // presence
		{40, 0x00}, // fixed a
		{41, 0x80}, // depth
		{42, 0x90}, // bias
		{43, 0x00}, // fixed a
		{44, 0x03}, // fixed c
		{45, 0x03},
		{46, 0x03},
		{47, 0x05}, // noise gate
		{48, 0x04}, // threshold
		{49, 0x03}, // cabinet
		{50, 0x03}, // fixed c
		{51, 0x02}, // sag
		{52, 0x01}, // brightness
		{54, 0x6a}, // fixed e
	}
	for _, c := range checks {
		if raw[c.offset] != c.want {
			t.Errorf("raw[%d] = 0x%02x, want 0x%02x", c.offset, raw[c.offset], c.want)
		}
	}
}

func TestAmpSettingsPacket_Clamps(t *testing.T) {
	tests := []struct {
		name   string
		in     AmpSettings
		offset int
		want   byte
	}{
		{"cabinet out of range", AmpSettings{Cabinet: 0x0d}, ampCabinet, 0x00},
		{"cabinet in range", AmpSettings{Cabinet: CabinetSS112}, ampCabinet, 0x0c},
		{"noise gate out of range", AmpSettings{NoiseGate: 6}, ampNoiseGate, 0x00},
		{"threshold needs custom gate", AmpSettings{NoiseGate: 2, Threshold: 5}, ampThreshold, 0x00},
		{"threshold out of range", AmpSettings{NoiseGate: 5, Threshold: 10}, ampThreshold, 0x00},
		{"depth needs custom gate", AmpSettings{NoiseGate: 1, Depth: 0x44}, ampDepth, 0x00},
		{"sag out of range", AmpSettings{Sag: 7}, ampSag, 0x01},
		{"brightness off", AmpSettings{}, ampBrightness, 0x00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AmpSettingsPacket(tt.in)
			if got := p.Payload[tt.offset]; got != tt.want {
				t.Errorf("payload[%d] = 0x%02x, want 0x%02x", tt.offset, got, tt.want)
			}
		})
	}
}

func TestAmpUSBGainPacket(t *testing.T) {
	raw := AmpUSBGainPacket(AmpSettings{USBGain: 0x7f, Volume: 0x10}).Bytes()
	if raw[0] != 0x1c || raw[1] != 0x03 || raw[2] != 0x0d {
		t.Errorf("header = % x, want 1c 03 0d", raw[:3])
	}
	if raw[16] != 0x7f {
		t.Errorf("raw[16] = 0x%02x, want 0x7f", raw[16])
	}
	if raw[32] != 0x00 {
		t.Errorf("raw[32] = 0x%02x, want 0 (volume is not part of this packet)", raw[32])
	}
}

func TestEffectSettingsPacket(t *testing.T) {
	e := FxPedalSettings{Slot: 1, Effect: EffectSineChorus, Knob1: 1, Knob2: 2, Knob3: 3, Knob4: 4, Knob5: 5, Knob6: 6, PostAmp: true, Enabled: true}
	raw := EffectSettingsPacket(e).Bytes()

	if raw[0] != 0x1c || raw[1] != 0x03 || raw[2] != 0x07 {
		t.Errorf("header = % x, want 1c 03 07", raw[:3])
	}
	if raw[16] != 0x12 {
		t.Errorf("model = 0x%02x, want 0x12", raw[16])
	}
	if raw[18] != 5 {
		t.Errorf("slot = %d, want 5", raw[18])
	}
	if raw[19] != 0x01 || raw[20] != 0x01 {
		t.Errorf("variant/flags = % x, want 01 01", raw[19:21])
	}
	for i := range 6 {
		if raw[32+i] != byte(i+1) {
			t.Errorf("knob%d = %d, want %d", i+1, raw[32+i], i+1)
		}
	}
}

func TestEffectSettingsPacket_KnobClamps(t *testing.T) {
	all := FxPedalSettings{Knob1: 9, Knob2: 9, Knob3: 9, Knob4: 9, Knob5: 9, Knob6: 9}
	tests := []struct {
		effect Effect
		want   [6]byte
	}{
		{EffectSimpleComp, [6]byte{3, 0, 0, 0, 0, 0}},
		{EffectRingModulator, [6]byte{9, 9, 9, 1, 9, 9}},
		{EffectPhaser, [6]byte{9, 9, 9, 9, 1, 9}},
		{EffectOverdrive, [6]byte{9, 9, 9, 9, 9, 9}},
	}
	for _, tt := range tests {
		e := all
		e.Effect = tt.effect
		p := EffectSettingsPacket(e)
		if got := [6]byte(p.Payload[fxKnob1 : fxKnob1+6]); got != tt.want {
			t.Errorf("%s knobs = %v, want %v", tt.effect, got, tt.want)
		}
	}
}

func TestClearEffectPacket(t *testing.T) {
	p := ClearEffectPacket(FxPedalSettings{Slot: 3, Effect: EffectMonoDelay, Knob1: 9, PostAmp: true})
	if p.Header.DSP() != DSPEffect2 {
		t.Errorf("dsp = 0x%02x, want 0x08", p.Header.DSP())
	}
	if p.Payload[fxModel] != 0 || p.Payload[fxKnob1] != 0 {
		t.Error("clear packet carries effect data")
	}
	if p.Payload[fxSlot] != 7 {
		t.Errorf("slot = %d, want 7", p.Payload[fxSlot])
	}

	empty := ClearEffectPacket(FxPedalSettings{Slot: 2, Effect: EffectEmpty})
	if empty.Header.DSP() != DSPEffect2 {
		t.Errorf("empty effect dsp = 0x%02x, want slot default 0x08", empty.Header.DSP())
	}
}

func TestDecodeAmp_MergesPositions(t *testing.T) {
	in := AmpSettings{
		Model:      AmpMetal2000,
		Volume:     1,
		Gain:       2,
		Gain2:      3,
		MasterVol:  4,
		Treble:     5,
		Middle:     6,
		Bass:       7,
		Presence:   8,
		Depth:      9,
		Bias:       10,
		NoiseGate:  5,
		Threshold:  2,
		Cabinet:    Cabinet4x12V,
		Sag:        2,
		Brightness: true,
		USBGain:    11,
	}
	got := DecodeAmp(AmpSettingsPacket(in).Bytes(), AmpUSBGainPacket(in).Bytes())
	if got != in {
		t.Errorf("DecodeAmp = %+v, want %+v", got, in)
	}

	// USB gain only comes from the second packet.
	onlyFirst := DecodeAmp(AmpSettingsPacket(in).Bytes(), [PacketSize]byte{})
	if onlyFirst.USBGain != 0 {
		t.Errorf("USBGain = %d, want 0", onlyFirst.USBGain)
	}
	if onlyFirst.Model != AmpMetal2000 {
		t.Errorf("Model = %s, want %s", onlyFirst.Model, AmpMetal2000)
	}
}

func TestDecodeEffects_AllEmpty(t *testing.T) {
	var raws [4][PacketSize]byte
	if got := DecodeEffects(raws); len(got) != 0 {
		t.Errorf("DecodeEffects(empty) = %v, want empty", got)
	}
}

func TestDecodeEffects_SingleSlot(t *testing.T) {
	for k := range 4 {
		want := FxPedalSettings{Slot: byte(k), Effect: EffectVibratone, Knob1: 10, Knob6: 60, Enabled: true}
		var raws [4][PacketSize]byte
		raws[k] = EffectSettingsPacket(want).Bytes()

		got := DecodeEffects(raws)
		if len(got) != 1 {
			t.Fatalf("position %d: len = %d, want 1", k, len(got))
		}
		if got[0] != want {
			t.Errorf("position %d: got %+v, want %+v", k, got[0], want)
		}
	}
}

func TestDecodeEffects_PostAmp(t *testing.T) {
	want := FxPedalSettings{Slot: 1, Effect: EffectTapeDelay, PostAmp: true, Enabled: true}
	var raws [4][PacketSize]byte
	raws[2] = EffectSettingsPacket(want).Bytes()

	got := DecodeEffects(raws)
	if len(got) != 1 || got[0] != want {
		t.Errorf("DecodeEffects = %+v, want [%+v]", got, want)
	}
}

func TestDecodePresetList(t *testing.T) {
	var raws [][PacketSize]byte
	for _, n := range []string{"Clean", "", "Crunch", "   ", "Lead"} {
		raws = append(raws, namePacket(n), [PacketSize]byte{})
	}
	got := DecodePresetList(raws)
	want := []string{"Clean", "Crunch", "Lead"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodePresetList = %q, want %q", got, want)
	}
}

func TestDecodePresetSlots(t *testing.T) {
	var raws [][PacketSize]byte
	for _, n := range []string{"Clean", "", "Lead"} {
		raws = append(raws, namePacket(n), [PacketSize]byte{})
	}
	got := DecodePresetSlots(raws)
	want := []Preset{{Slot: 0, Name: "Clean"}, {Slot: 2, Name: "Lead"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DecodePresetSlots = %+v, want %+v", got, want)
	}
}

func TestDecodeBank(t *testing.T) {
	amp := AmpSettings{Model: AmpBritish60s, Gain: 0x44, USBGain: 0x10}
	fx := FxPedalSettings{Slot: 0, Effect: EffectFuzz, Knob1: 0x20, Enabled: true}

	var bank [BankPackets][PacketSize]byte
	bank[0] = namePacket("Vox-ish")
	bank[1] = AmpSettingsPacket(amp).Bytes()
	bank[2] = EffectSettingsPacket(fx).Bytes()
	bank[6] = AmpUSBGainPacket(amp).Bytes()

	got := DecodeBank(bank)
	if got.Name != "Vox-ish" {
		t.Errorf("Name = %q, want %q", got.Name, "Vox-ish")
	}
	if got.Amp.Model != AmpBritish60s || got.Amp.Gain != 0x44 || got.Amp.USBGain != 0x10 {
		t.Errorf("Amp = %+v", got.Amp)
	}
	if len(got.Effects) != 1 || got.Effects[0] != fx {
		t.Errorf("Effects = %+v, want [%+v]", got.Effects, fx)
	}
}
