package mustang

// USB identification.
const (
	VendorID uint16 = 0x1ed8

	EndpointOut = 0x01
	EndpointIn  = 0x81 // interrupt IN, endpoint number 1
	Interface   = 0
)

// Frame geometry.
const (
	PacketSize  = 64
	HeaderSize  = 16
	PayloadSize = PacketSize - HeaderSize
)

// Stage is the header byte at offset 0.
type Stage byte

const (
	StageInit0   Stage = 0x00
	StageInit1   Stage = 0x1a
	StageReady   Stage = 0x1c
	StageUnknown Stage = 0xff
)

// Type is the header byte at offset 1.
type Type byte

const (
	TypeData      Type = 0x01
	TypeOperation Type = 0x03
	TypeInit0     Type = 0xc3
	TypeInit1     Type = 0x03
	TypeLoad      Type = 0xc1
)

// DSP selects the sub-opcode (header byte at offset 2).
type DSP byte

const (
	DSPNone             DSP = 0x00
	DSPOpSelectMemBank  DSP = 0x01
	DSPOpSave           DSP = 0x03
	DSPOpSaveEffectName DSP = 0x04
	DSPAmp              DSP = 0x05
	DSPEffect0          DSP = 0x06 // stompbox
	DSPEffect1          DSP = 0x07 // modulation
	DSPEffect2          DSP = 0x08 // delay
	DSPEffect3          DSP = 0x09 // reverb
	DSPUSBGain          DSP = 0x0d
)

// Header field offsets.
const (
	hdrStage    = 0
	hdrType     = 1
	hdrDSP      = 2
	hdrFXKnob   = 3
	hdrSlot     = 4
	hdrUnknown1 = 6
	hdrUnknown2 = 7
)

// Amplifier payload offsets (relative to the payload start, i.e. frame offset - 16).
const (
	ampModel      = 0
	ampVolume     = 16
	ampGain       = 17
	ampGain2      = 18
	ampMasterVol  = 19
	ampTreble     = 20
	ampMiddle     = 21
	ampBass       = 22
	ampPresence   = 23
	ampDepth      = 25
	ampBias       = 26
	ampNoiseGate  = 31
	ampThreshold  = 32
	ampCabinet    = 33
	ampSag        = 35
	ampBrightness = 36

	// Model-dependent constants the amp expects alongside the model id.
	ampFixedA  = 24 // frame 40
	ampFixedB  = 27 // frame 43
	ampFixedC  = 28 // frame 44..46
	ampFixedD  = 34 // frame 50
	ampFixedE  = 38 // frame 54
	ampUSBGain = 0  // usb gain packet, frame 16
)

// Effect payload offsets.
const (
	fxModel   = 0
	fxSlot    = 2
	fxVariant = 3 // frame 19
	fxFlags   = 4 // frame 20
	fxKnob1   = 16
)

// Name payload geometry.
const (
	nameOffset        = 0
	nameLength        = 32
	effectNameLength  = 24
	postAmpSlotOffset = 4
)

// Response burst geometry.
const (
	BankPackets            = 7
	bankNameIndex          = 0
	bankAmpIndex           = 1
	bankFirstEffectIndex   = 2
	bankUSBGainIndex       = 6
	presetTableSmall       = 48
	presetTableLarge       = 200
	presetTableThreshold   = 143
	packetsPerPresetRecord = 2
)

// V3 multi-frame payload tags (byte at offset 1 of a response frame).
const (
	FrameFirst  byte = 0x33
	FrameMiddle byte = 0x34
	FrameLast   byte = 0x35

	frameTagOffset    = 1
	frameLenOffset    = 2
	frameDataOffset   = 3
	frameMetaOffset   = 3
	reassemblyStartAt = 2
)
