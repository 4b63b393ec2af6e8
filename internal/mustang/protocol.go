package mustang

import "fmt"

// Protocol is the per-generation initialization behavior. The set of
// implementations is closed: legacyProtocol and usbV3Protocol.
type Protocol interface {
	// InitCommand returns the packets that put the amplifier into control mode.
	InitCommand() []Packet[EmptyPayload]

	// DeferInit reports whether the init responses belong to the first load burst.
	DeferInit() bool

	protocol()
}

// SelectProtocol returns the protocol variant for a model's category.
func SelectProtocol(model DeviceModel) (Protocol, error) {
	switch model.Category {
	case CategoryLegacyV1, CategoryLegacyV2:
		return legacyProtocol{}, nil
	case CategoryNewerUSB:
		return usbV3Protocol{}, nil
	case CategoryNewerBluetooth:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedCategory, model.Name, model.Category)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCategory, model.Category)
	}
}

// legacyProtocol serves Mustang I-V (v1 and v2 firmware).
type legacyProtocol struct{}

func (legacyProtocol) protocol()       {}
func (legacyProtocol) DeferInit() bool { return false }

func (legacyProtocol) InitCommand() []Packet[EmptyPayload] {
	return []Packet[EmptyPayload]{
		{Header: newHeader(StageInit0, TypeInit0, DSPNone)},
		{Header: newHeader(StageInit1, TypeInit1, DSPNone)},
	}
}

// usbV3Protocol serves the LT series over USB.
type usbV3Protocol struct{}

func (usbV3Protocol) protocol()       {}
func (usbV3Protocol) DeferInit() bool { return true }

// Captured from the vendor application; not derivable.
var v3InitHeaders = [][]byte{
	{0x35, 0x09, 0x08, 0x00, 0x8a, 0x07, 0x04, 0x08, 0x00, 0x10},
	{0x35, 0x07, 0x08, 0x00, 0xb2, 0x06, 0x02, 0x08, 0x01, 0x00, 0x10},
	{0x35, 0x07, 0x08, 0x00, 0xca, 0x06, 0x02, 0x08, 0x01, 0x01, 0x00, 0x10},
}

func (usbV3Protocol) InitCommand() []Packet[EmptyPayload] {
	packets := make([]Packet[EmptyPayload], 0, len(v3InitHeaders))
	for _, b := range v3InitHeaders {
		var h Header
		copy(h[:], b)
		packets = append(packets, Packet[EmptyPayload]{Header: h})
	}
	return packets
}
