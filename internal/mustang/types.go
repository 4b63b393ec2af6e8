package mustang

// Category groups hardware generations that share a protocol shape.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryLegacyV1
	CategoryLegacyV2
	CategoryNewerUSB
	CategoryNewerBluetooth
)

func (c Category) String() string {
	switch c {
	case CategoryLegacyV1:
		return "v1"
	case CategoryLegacyV2:
		return "v2"
	case CategoryNewerUSB:
		return "v3-usb"
	case CategoryNewerBluetooth:
		return "v3-bt"
	default:
		return "unknown"
	}
}

// DeviceModel identifies one amplifier model.
type DeviceModel struct {
	Name            string
	Category        Category
	NumberOfPresets int // 0 when unknown
	ProductID       uint16
}

// Amp is an amplifier model selectable on the device.
type Amp int

const (
	AmpFender57Deluxe Amp = iota
	AmpFender59Bassman
	AmpFender57Champ
	AmpFender65DeluxeReverb
	AmpFender65Princeton
	AmpFender65TwinReverb
	AmpFenderSuperSonic
	AmpBritish60s
	AmpBritish70s
	AmpBritish80s
	AmpAmerican90s
	AmpMetal2000
	AmpStudioPreamp
	AmpFender57Twin
	AmpFender60sThrift
	AmpBritishWatts
	AmpBritishColour
)

// ampCode holds the model id and the fixed bytes the device expects with it.
type ampCode struct {
	name string
	id   byte
	a    byte // frame 40 and 43
	c    byte // frame 44..46 and 50
	e    byte // frame 54
}

var ampCodes = map[Amp]ampCode{
	AmpFender57Deluxe:       {"Fender '57 Deluxe", 0x67, 0x80, 0x01, 0x53},
	AmpFender59Bassman:      {"Fender '59 Bassman", 0x64, 0x80, 0x02, 0x67},
	AmpFender57Champ:        {"Fender '57 Champ", 0x7c, 0x80, 0x0c, 0x00},
	AmpFender65DeluxeReverb: {"Fender '65 Deluxe Reverb", 0x53, 0x00, 0x03, 0x6a},
	AmpFender65Princeton:    {"Fender '65 Princeton", 0x6a, 0x80, 0x04, 0x61},
	AmpFender65TwinReverb:   {"Fender '65 Twin Reverb", 0x75, 0x80, 0x05, 0x72},
	AmpFenderSuperSonic:     {"Fender Super-Sonic", 0x72, 0x80, 0x06, 0x79},
	AmpBritish60s:           {"British '60s", 0x61, 0x80, 0x07, 0x5e},
	AmpBritish70s:           {"British '70s", 0x79, 0x80, 0x0b, 0x7c},
	AmpBritish80s:           {"British '80s", 0x5e, 0x80, 0x09, 0x5d},
	AmpAmerican90s:          {"American '90s", 0x5d, 0x80, 0x0a, 0x6d},
	AmpMetal2000:            {"Metal 2000", 0x6d, 0x80, 0x08, 0x75},
	AmpStudioPreamp:         {"Studio Preamp", 0xf1, 0x80, 0x0d, 0xf6},
	AmpFender57Twin:         {"Fender '57 Twin", 0xf6, 0x80, 0x0e, 0xf9},
	AmpFender60sThrift:      {"Fender '60s Thrift", 0xf9, 0x80, 0x0f, 0xfc},
	AmpBritishWatts:         {"British Watts", 0xff, 0x80, 0x10, 0x00},
	AmpBritishColour:        {"British Colour", 0xfc, 0x80, 0x11, 0xff},
}

func (a Amp) String() string {
	if c, ok := ampCodes[a]; ok {
		return c.name
	}
	return "unknown amp"
}

func ampFromID(id byte) Amp {
	for a, c := range ampCodes {
		if c.id == id {
			return a
		}
	}
	return AmpFender57Deluxe
}

// Cabinet is the speaker cabinet emulation; values are the wire codes.
type Cabinet byte

const (
	CabinetOff Cabinet = iota
	Cabinet57Deluxe
	CabinetBassman
	Cabinet65Deluxe
	Cabinet65Princeton
	CabinetChamp
	Cabinet4x12M
	Cabinet2x12C
	Cabinet4x12G
	Cabinet65Twin
	Cabinet4x12V
	CabinetSS212
	CabinetSS112
)

// AmpSettings is the amplifier half of a signal chain.
type AmpSettings struct {
	Model      Amp     `json:"model"`
	Volume     byte    `json:"volume"`
	Gain       byte    `json:"gain"`
	Gain2      byte    `json:"gain2"`
	MasterVol  byte    `json:"masterVol"`
	Treble     byte    `json:"treble"`
	Middle     byte    `json:"middle"`
	Bass       byte    `json:"bass"`
	Presence   byte    `json:"presence"`
	Depth      byte    `json:"depth"`
	Bias       byte    `json:"bias"`
	NoiseGate  byte    `json:"noiseGate"` // 0..5, 5 enables threshold and depth
	Threshold  byte    `json:"threshold"` // 0..9
	Cabinet    Cabinet `json:"cabinet"`
	Sag        byte    `json:"sag"` // 0..2
	Brightness bool    `json:"brightness"`
	USBGain    byte    `json:"usbGain"`
}

// Effect identifies an effect pedal. EffectEmpty marks an unused slot.
type Effect int

const (
	EffectEmpty Effect = iota

	EffectOverdrive
	EffectWah
	EffectTouchWah
	EffectFuzz
	EffectFuzzTouchWah
	EffectSimpleComp
	EffectCompressor

	EffectSineChorus
	EffectTriangleChorus
	EffectSineFlanger
	EffectTriangleFlanger
	EffectVibratone
	EffectVintageTremolo
	EffectSineTremolo
	EffectRingModulator
	EffectStepFilter
	EffectPhaser
	EffectPitchShifter

	EffectMonoDelay
	EffectMonoEchoFilter
	EffectStereoEchoFilter
	EffectMultitapDelay
	EffectPingPongDelay
	EffectDuckingDelay
	EffectReverseDelay
	EffectTapeDelay
	EffectStereoTapeDelay

	EffectSmallHallReverb
	EffectLargeHallReverb
	EffectSmallRoomReverb
	EffectLargeRoomReverb
	EffectSmallPlateReverb
	EffectLargePlateReverb
	EffectAmbientReverb
	EffectArenaReverb
	EffectFender63SpringReverb
	EffectFender65SpringReverb
)

type effectCode struct {
	name    string
	id      byte
	family  DSP
	variant byte // frame 19
	flags   byte // frame 20
}

var effectCodes = map[Effect]effectCode{
	EffectOverdrive:    {"Overdrive", 0x3c, DSPEffect0, 0x00, 0x00},
	EffectWah:          {"Wah", 0x49, DSPEffect0, 0x01, 0x00},
	EffectTouchWah:     {"Touch Wah", 0x4a, DSPEffect0, 0x01, 0x00},
	EffectFuzz:         {"Fuzz", 0x1a, DSPEffect0, 0x00, 0x00},
	EffectFuzzTouchWah: {"Fuzz Touch Wah", 0x1c, DSPEffect0, 0x00, 0x00},
	EffectSimpleComp:   {"Simple Comp", 0x88, DSPEffect0, 0x08, 0x00},
	EffectCompressor:   {"Compressor", 0x07, DSPEffect0, 0x00, 0x00},

	EffectSineChorus:      {"Sine Chorus", 0x12, DSPEffect1, 0x01, 0x01},
	EffectTriangleChorus:  {"Triangle Chorus", 0x13, DSPEffect1, 0x01, 0x01},
	EffectSineFlanger:     {"Sine Flanger", 0x18, DSPEffect1, 0x01, 0x01},
	EffectTriangleFlanger: {"Triangle Flanger", 0x19, DSPEffect1, 0x01, 0x01},
	EffectVibratone:       {"Vibratone", 0x2d, DSPEffect1, 0x01, 0x01},
	EffectVintageTremolo:  {"Vintage Tremolo", 0x40, DSPEffect1, 0x01, 0x01},
	EffectSineTremolo:     {"Sine Tremolo", 0x41, DSPEffect1, 0x01, 0x01},
	EffectRingModulator:   {"Ring Modulator", 0x22, DSPEffect1, 0x01, 0x01},
	EffectStepFilter:      {"Step Filter", 0x29, DSPEffect1, 0x01, 0x01},
	EffectPhaser:          {"Phaser", 0x4f, DSPEffect1, 0x01, 0x01},
	EffectPitchShifter:    {"Pitch Shifter", 0x1f, DSPEffect1, 0x01, 0x01},

	EffectMonoDelay:        {"Mono Delay", 0x16, DSPEffect2, 0x02, 0x01},
	EffectMonoEchoFilter:   {"Mono Echo Filter", 0x43, DSPEffect2, 0x02, 0x01},
	EffectStereoEchoFilter: {"Stereo Echo Filter", 0x48, DSPEffect2, 0x02, 0x01},
	EffectMultitapDelay:    {"Multitap Delay", 0x44, DSPEffect2, 0x02, 0x01},
	EffectPingPongDelay:    {"Ping Pong Delay", 0x45, DSPEffect2, 0x02, 0x01},
	EffectDuckingDelay:     {"Ducking Delay", 0x15, DSPEffect2, 0x02, 0x01},
	EffectReverseDelay:     {"Reverse Delay", 0x46, DSPEffect2, 0x02, 0x01},
	EffectTapeDelay:        {"Tape Delay", 0x2b, DSPEffect2, 0x02, 0x01},
	EffectStereoTapeDelay:  {"Stereo Tape Delay", 0x2a, DSPEffect2, 0x02, 0x01},

	EffectSmallHallReverb:      {"Small Hall", 0x24, DSPEffect3, 0x02, 0x01},
	EffectLargeHallReverb:      {"Large Hall", 0x3a, DSPEffect3, 0x02, 0x01},
	EffectSmallRoomReverb:      {"Small Room", 0x26, DSPEffect3, 0x02, 0x01},
	EffectLargeRoomReverb:      {"Large Room", 0x3b, DSPEffect3, 0x02, 0x01},
	EffectSmallPlateReverb:     {"Small Plate", 0x4e, DSPEffect3, 0x02, 0x01},
	EffectLargePlateReverb:     {"Large Plate", 0x4b, DSPEffect3, 0x02, 0x01},
	EffectAmbientReverb:        {"Ambient", 0x4c, DSPEffect3, 0x02, 0x01},
	EffectArenaReverb:          {"Arena", 0x4d, DSPEffect3, 0x02, 0x01},
	EffectFender63SpringReverb: {"'63 Fender Spring", 0x21, DSPEffect3, 0x02, 0x01},
	EffectFender65SpringReverb: {"'65 Fender Spring", 0x0b, DSPEffect3, 0x02, 0x01},
}

func (e Effect) String() string {
	if e == EffectEmpty {
		return "empty"
	}
	if c, ok := effectCodes[e]; ok {
		return c.name
	}
	return "unknown effect"
}

// Family returns the DSP that hosts the effect, or DSPNone for EffectEmpty.
func (e Effect) Family() DSP {
	return effectCodes[e].family
}

func effectFromID(id byte) Effect {
	if id == 0x00 {
		return EffectEmpty
	}
	for e, c := range effectCodes {
		if c.id == id {
			return e
		}
	}
	return EffectEmpty
}

// FxPedalSettings is one effect slot.
type FxPedalSettings struct {
	Slot    byte   `json:"slot"` // 0..3
	Effect  Effect `json:"effect"`
	Knob1   byte   `json:"knob1"`
	Knob2   byte   `json:"knob2"`
	Knob3   byte   `json:"knob3"`
	Knob4   byte   `json:"knob4"`
	Knob5   byte   `json:"knob5"`
	Knob6   byte   `json:"knob6"`
	PostAmp bool   `json:"postAmp"`
	Enabled bool   `json:"enabled"`
}

// SignalChain is a decoded device program.
type SignalChain struct {
	Name    string            `json:"name"`
	Amp     AmpSettings       `json:"amp"`
	Effects []FxPedalSettings `json:"effects"`
}

// Preset is a named entry of the device's preset table.
type Preset struct {
	Slot byte   `json:"slot"`
	Name string `json:"name"`
}

// InitialData is the state read from the device at session start.
type InitialData struct {
	Chain   SignalChain `json:"chain"`
	Presets []string    `json:"presets"`

	// Slots holds the same presets as Presets tagged with their slot.
	Slots []Preset `json:"slots"`

	// Document is the reassembled structured payload of a NewerUSB device.
	Document []byte `json:"-"`
}
