package mustang

import (
	"bytes"
	"errors"
	"testing"
)

func TestSelectProtocol(t *testing.T) {
	tests := []struct {
		category Category
		want     Protocol
	}{
		{CategoryLegacyV1, legacyProtocol{}},
		{CategoryLegacyV2, legacyProtocol{}},
		{CategoryNewerUSB, usbV3Protocol{}},
	}
	for _, tt := range tests {
		got, err := SelectProtocol(DeviceModel{Name: "test", Category: tt.category})
		if err != nil {
			t.Errorf("SelectProtocol(%s) error: %v", tt.category, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SelectProtocol(%s) = %T, want %T", tt.category, got, tt.want)
		}
	}
}

func TestSelectProtocol_Unsupported(t *testing.T) {
	for _, c := range []Category{CategoryNewerBluetooth, CategoryUnknown} {
		p, err := SelectProtocol(DeviceModel{Name: "test", Category: c})
		if !errors.Is(err, ErrUnsupportedCategory) {
			t.Errorf("SelectProtocol(%s) error = %v, want ErrUnsupportedCategory", c, err)
		}
		if p != nil {
			t.Errorf("SelectProtocol(%s) = %T, want nil", c, p)
		}
	}
}

func TestLegacyProtocol_InitCommand(t *testing.T) {
	packets := legacyProtocol{}.InitCommand()
	if len(packets) != 2 {
		t.Fatalf("len = %d, want 2", len(packets))
	}

	first := packets[0].Bytes()
	if first[0] != 0x00 || first[1] != 0xc3 || first[2] != 0x00 {
		t.Errorf("first header = % x, want 00 c3 00", first[:3])
	}
	second := packets[1].Bytes()
	if second[0] != 0x1a || second[1] != 0x03 || second[2] != 0x00 {
		t.Errorf("second header = % x, want 1a 03 00", second[:3])
	}
	for i, p := range packets {
		raw := p.Bytes()
		if !bytes.Equal(raw[3:], make([]byte, PacketSize-3)) {
			t.Errorf("packet %d: trailing bytes are not zero", i)
		}
	}
	if (legacyProtocol{}).DeferInit() {
		t.Error("legacy DeferInit = true, want false")
	}
}

func TestUSBV3Protocol_InitCommand(t *testing.T) {
	want := [][]byte{
		{0x35, 0x09, 0x08, 0x00, 0x8a, 0x07, 0x04, 0x08, 0x00, 0x10},
		{0x35, 0x07, 0x08, 0x00, 0xb2, 0x06, 0x02, 0x08, 0x01, 0x00, 0x10},
		{0x35, 0x07, 0x08, 0x00, 0xca, 0x06, 0x02, 0x08, 0x01, 0x01, 0x00, 0x10},
	}
	packets := usbV3Protocol{}.InitCommand()
	if len(packets) != len(want) {
		t.Fatalf("len = %d, want %d", len(packets), len(want))
	}
	for i, p := range packets {
		raw := p.Bytes()
		if !bytes.Equal(raw[:len(want[i])], want[i]) {
			t.Errorf("packet %d = % x, want % x", i, raw[:len(want[i])], want[i])
		}
		if !bytes.Equal(raw[len(want[i]):], make([]byte, PacketSize-len(want[i]))) {
			t.Errorf("packet %d: trailing bytes are not zero", i)
		}
	}
	if !(usbV3Protocol{}).DeferInit() {
		t.Error("v3 DeferInit = false, want true")
	}
}
