package mustang

import (
	"bytes"
	"fmt"
)

// Header is the first 16 bytes of a frame.
type Header [HeaderSize]byte

func (h Header) Stage() Stage { return Stage(h[hdrStage]) }
func (h Header) Type() Type   { return Type(h[hdrType]) }
func (h Header) DSP() DSP     { return DSP(h[hdrDSP]) }
func (h Header) FXKnob() byte { return h[hdrFXKnob] }
func (h Header) Slot() byte   { return h[hdrSlot] }

func (h *Header) SetStage(s Stage)  { h[hdrStage] = byte(s) }
func (h *Header) SetType(t Type)    { h[hdrType] = byte(t) }
func (h *Header) SetDSP(d DSP)      { h[hdrDSP] = byte(d) }
func (h *Header) SetFXKnob(v byte)  { h[hdrFXKnob] = v }
func (h *Header) SetSlot(slot byte) { h[hdrSlot] = slot }

// SetUnknown sets the flag bytes whose meaning is not known but whose values
// the device checks.
func (h *Header) SetUnknown(v1, v2 byte) {
	h[hdrUnknown1] = v1
	h[hdrUnknown2] = v2
}

func newHeader(stage Stage, typ Type, dsp DSP) Header {
	var h Header
	h.SetStage(stage)
	h.SetType(typ)
	h.SetDSP(dsp)
	return h
}

// Payload kinds. All share the same 48-byte layout; the kind only selects
// which accessors make sense.
type (
	EmptyPayload  [PayloadSize]byte
	NamePayload   [PayloadSize]byte
	AmpPayload    [PayloadSize]byte
	EffectPayload [PayloadSize]byte
)

// Payload constrains Packet to the known payload kinds.
type Payload interface {
	EmptyPayload | NamePayload | AmpPayload | EffectPayload
}

// Packet is one 64-byte frame.
type Packet[P Payload] struct {
	Header  Header
	Payload P
}

// Bytes returns the wire form of the packet.
func (p Packet[P]) Bytes() [PacketSize]byte {
	var raw [PacketSize]byte
	payload := [PayloadSize]byte(p.Payload)
	copy(raw[:HeaderSize], p.Header[:])
	copy(raw[HeaderSize:], payload[:])
	return raw
}

// PacketFromBytes maps a raw frame onto a packet of payload kind P.
func PacketFromBytes[P Payload](raw [PacketSize]byte) Packet[P] {
	var p Packet[P]
	var payload [PayloadSize]byte
	copy(p.Header[:], raw[:HeaderSize])
	copy(payload[:], raw[HeaderSize:])
	p.Payload = P(payload)
	return p
}

// RawPacket copies up to PacketSize bytes of a received buffer into a frame.
// Short reads are zero padded.
func RawPacket(b []byte) [PacketSize]byte {
	var raw [PacketSize]byte
	copy(raw[:], b)
	return raw
}

// Name returns the NUL-terminated name stored at the start of the payload.
func (p NamePayload) Name() string {
	return nullTerminated(p[nameOffset : nameOffset+nameLength])
}

// SetName stores name, truncated to limit bytes, and zeroes the rest of the field.
func (p *NamePayload) SetName(name string, limit int) {
	field := p[nameOffset : nameOffset+nameLength]
	clear(field)
	copy(field[:limit], name)
}

func nullTerminated(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// String formats a frame header for debug logs.
func (h Header) String() string {
	return fmt.Sprintf("stage=0x%02x type=0x%02x dsp=0x%02x slot=%d", h[hdrStage], h[hdrType], h[hdrDSP], h[hdrSlot])
}
