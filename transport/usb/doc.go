// Package usb implements transport.Transport on top of libusb (via gousb).
//
// It is kept apart from package transport because gousb needs cgo and the
// libusb headers; the protocol, session and simulator packages build
// without them.
//
// Open opens a device by vendor and product ID, detaches any kernel driver
// and picks the bulk endpoint pair of the default interface:
//
//	t, err := usb.Open(usb.VendorID, usb.ProductID, 0)
//	if errors.Is(err, transport.ErrDeviceNotFound) {
//	    // no device in FEL mode
//	}
//	defer t.Close()
package usb
