// Package transport moves raw bytes between the host and a device sitting in
// its USB boot-ROM recovery mode.
//
// The Transport interface is deliberately small: a blocking Write and a
// blocking Read that must fill the whole buffer. Framing lives in package
// protocol and sessions live in package fel. The libusb implementation is
// in the usb subpackage; package felsim provides a simulated device.
//
// # Errors
//
// Failed transfers are reported as *Error. Timeout reports whether the
// per-transfer deadline elapsed. ErrDeviceNotFound is returned by openers
// when no device matches. Nothing in this package retries.
package transport
