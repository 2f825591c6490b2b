package usb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/gousb"

	"github.com/xboot/xfel-go/transport"
)

// Allwinner FEL USB identity.
const (
	VendorID  gousb.ID = 0x1f3a
	ProductID gousb.ID = 0xefe8
)

// DefaultTimeout bounds a single bulk transfer.
const DefaultTimeout = 10 * time.Second

// Device is a transport.Transport over the bulk endpoints of a libusb device handle.
type Device struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	done    func()
	in      *gousb.InEndpoint
	out     *gousb.OutEndpoint
	timeout time.Duration
}

// Open opens the first device matching vid:pid, claims its default
// interface and locates the bulk IN and OUT endpoints. It returns
// transport.ErrDeviceNotFound when nothing matches.
func Open(vid, pid gousb.ID, timeout time.Duration) (u *Device, err error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx := gousb.NewContext()
	defer func() {
		if err != nil {
			ctx.Close()
		}
	}()

	dev, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("open %s:%s: %w", vid, pid, err)
	}
	if dev == nil {
		return nil, transport.ErrDeviceNotFound
	}
	defer func() {
		if err != nil {
			dev.Close()
		}
	}()

	if err = dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("set auto detach: %w", err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		return nil, fmt.Errorf("claim interface: %w", err)
	}

	var inNum, outNum int
	for _, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn {
			inNum = ep.Number
		} else {
			outNum = ep.Number
		}
	}
	if inNum == 0 || outNum == 0 {
		done()
		return nil, errors.New("device has no bulk IN/OUT endpoint pair")
	}

	in, err := intf.InEndpoint(inNum)
	if err != nil {
		done()
		return nil, fmt.Errorf("IN endpoint %d: %w", inNum, err)
	}
	out, err := intf.OutEndpoint(outNum)
	if err != nil {
		done()
		return nil, fmt.Errorf("OUT endpoint %d: %w", outNum, err)
	}

	return &Device{
		ctx:     ctx,
		dev:     dev,
		done:    done,
		in:      in,
		out:     out,
		timeout: timeout,
	}, nil
}

// Write sends p on the bulk OUT endpoint.
func (u *Device) Write(ctx context.Context, p []byte) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	sent := 0
	for sent < len(p) {
		n, err := u.out.WriteContext(ctx, p[sent:])
		if err != nil {
			return &transport.Error{Op: "write", Len: len(p), Err: err}
		}
		if n <= 0 {
			return &transport.Error{Op: "write", Len: len(p), Err: transport.ErrShortTransfer}
		}
		sent += n
	}
	return nil
}

// Read fills p from the bulk IN endpoint.
func (u *Device) Read(ctx context.Context, p []byte) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	got := 0
	for got < len(p) {
		n, err := u.in.ReadContext(ctx, p[got:])
		if err != nil {
			return &transport.Error{Op: "read", Len: len(p), Err: err}
		}
		if n <= 0 {
			return &transport.Error{Op: "read", Len: len(p), Err: transport.ErrShortTransfer}
		}
		got += n
	}
	return nil
}

// Close releases the interface, the device handle and the libusb context.
func (u *Device) Close() error {
	u.done()
	err := u.dev.Close()
	if cerr := u.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}
