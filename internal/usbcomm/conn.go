// Package usbcomm implements the amplifier transport over USB interrupt
// endpoints using libusb.
package usbcomm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/mzyy94/plugd/internal/mustang"
)

// ErrNoDevice is returned when no known amplifier is attached.
var ErrNoDevice = errors.New("usbcomm: no supported amplifier found")

// DefaultReadTimeout bounds a single interrupt read. The device signals the
// end of a burst by not answering, so a timed out read is an empty receive.
const DefaultReadTimeout = 500 * time.Millisecond

// Options configures Open.
type Options struct {
	ReadTimeout time.Duration
}

// Conn is an open amplifier. It implements mustang.Transport.
type Conn struct {
	mu      sync.Mutex
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	out     *gousb.OutEndpoint
	in      *gousb.InEndpoint
	model   mustang.DeviceModel
	timeout time.Duration
	open    bool
}

// matchModel reports the known model for a USB vendor/product pair.
func matchModel(vendor, product gousb.ID) (mustang.DeviceModel, bool) {
	if uint16(vendor) != mustang.VendorID {
		return mustang.DeviceModel{}, false
	}
	return mustang.LookupModel(uint16(product))
}

// Open finds the first attached amplifier with a known product id, detaches
// any kernel driver and claims its control interface.
func Open(opts Options) (*Conn, error) {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}

	ctx := gousb.NewContext()
	var model mustang.DeviceModel
	found := false
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if found {
			return false
		}
		m, ok := matchModel(desc.Vendor, desc.Product)
		if ok {
			model, found = m, true
		}
		return ok
	})
	if err != nil && len(devs) == 0 {
		ctx.Close()
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	if len(devs) == 0 {
		ctx.Close()
		return nil, ErrNoDevice
	}
	dev := devs[0]
	for _, d := range devs[1:] {
		d.Close()
	}
	slog.Info("amplifier found", "model", model.Name, "pid", fmt.Sprintf("0x%04x", model.ProductID))

	c := &Conn{ctx: ctx, dev: dev, model: model, timeout: opts.ReadTimeout}
	if err := c.claim(); err != nil {
		c.release()
		return nil, err
	}
	c.open = true
	return c, nil
}

func (c *Conn) claim() error {
	if err := c.dev.SetAutoDetach(true); err != nil {
		return fmt.Errorf("usb auto detach: %w", err)
	}
	cfg, err := c.dev.Config(1)
	if err != nil {
		return fmt.Errorf("usb config: %w", err)
	}
	c.cfg = cfg
	intf, err := cfg.Interface(mustang.Interface, 0)
	if err != nil {
		return fmt.Errorf("usb claim interface %d: %w", mustang.Interface, err)
	}
	c.intf = intf
	out, err := intf.OutEndpoint(mustang.EndpointOut)
	if err != nil {
		return fmt.Errorf("usb out endpoint: %w", err)
	}
	in, err := intf.InEndpoint(mustang.EndpointIn & 0x0f)
	if err != nil {
		return fmt.Errorf("usb in endpoint: %w", err)
	}
	c.out, c.in = out, in
	return nil
}

func (c *Conn) release() {
	if c.intf != nil {
		c.intf.Close()
	}
	if c.cfg != nil {
		c.cfg.Close()
	}
	if c.dev != nil {
		c.dev.Close()
	}
	if c.ctx != nil {
		c.ctx.Close()
	}
}

// Model returns the identified amplifier model.
func (c *Conn) Model() mustang.DeviceModel {
	return c.model
}

// IsOpen reports whether the interface is still claimed.
func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Close releases the interface and reattaches the kernel driver.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil
	}
	c.open = false
	c.release()
	slog.Info("amplifier closed", "model", c.model.Name)
	return nil
}

// Send writes one frame to the OUT endpoint.
func (c *Conn) Send(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return 0, mustang.ErrNotConnected
	}
	n, err := c.out.Write(data)
	if err != nil {
		c.checkGone(err)
		return n, fmt.Errorf("usb write: %w", err)
	}
	return n, nil
}

// Receive reads one frame from the IN endpoint. A read that times out
// returns an empty slice.
func (c *Conn) Receive(maxBytes int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, mustang.ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	buf := make([]byte, maxBytes)
	n, err := c.in.ReadContext(ctx, buf)
	if err != nil {
		if endOfBurst(err) {
			return []byte{}, nil
		}
		c.checkGone(err)
		return nil, fmt.Errorf("usb read: %w", err)
	}
	return buf[:n], nil
}

// checkGone closes the connection when err says the device was unplugged.
// The caller must hold c.mu.
func (c *Conn) checkGone(err error) {
	if !deviceGone(err) {
		return
	}
	c.open = false
	c.release()
	slog.Warn("amplifier disconnected", "model", c.model.Name, "err", err)
}

// deviceGone reports whether err means the device is no longer attached.
func deviceGone(err error) bool {
	return errors.Is(err, gousb.ErrorNoDevice) || errors.Is(err, gousb.TransferNoDevice)
}

// endOfBurst reports whether a read error only means the device had nothing
// more to send.
func endOfBurst(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, gousb.TransferCancelled) ||
		errors.Is(err, gousb.TransferTimedOut) ||
		errors.Is(err, gousb.ErrorTimeout)
}
