package pipe

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// DefaultTowerDevice is the kernel driver's USB tower device node.
const DefaultTowerDevice = "/dev/usb/legousbtower0"

// USBTowerPipe talks to the USB IR tower through its character device.
// The kernel driver hides the transceiver echo, so the pipe is full
// duplex from here.
type USBTowerPipe struct {
	f *os.File
}

// NewUSBTowerPipe creates a USB tower pipe. It fails on platforms
// without the tower character device driver.
func NewUSBTowerPipe() (*USBTowerPipe, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("USB tower device not available on %s", runtime.GOOS)
	}
	return &USBTowerPipe{}, nil
}

// Open opens the tower device node, or the default when name is empty.
func (u *USBTowerPipe) Open(name string) error {
	if name == "" {
		name = DefaultTowerDevice
	}

	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open USB tower %s: %w", name, err)
	}

	u.f = f
	return nil
}

// Close closes the device node.
func (u *USBTowerPipe) Close() error {
	if u.f == nil {
		return nil
	}
	err := u.f.Close()
	u.f = nil
	return err
}

// Read reads up to len(p) bytes, waiting at most timeout.
func (u *USBTowerPipe) Read(p []byte, timeout time.Duration) (int, error) {
	if u.f == nil {
		return 0, ErrNotOpen
	}

	if err := u.f.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}

	n, err := u.f.Read(p)
	if err != nil {
		if os.IsTimeout(err) {
			return n, ErrTimeout
		}
		return n, err
	}
	return n, nil
}

// Write writes p to the device node.
func (u *USBTowerPipe) Write(p []byte) (int, error) {
	if u.f == nil {
		return 0, ErrNotOpen
	}
	return u.f.Write(p)
}

// Capabilities implements Pipe.Capabilities
func (u *USBTowerPipe) Capabilities() Caps {
	return 0
}

// SetFastMode implements Pipe.SetFastMode. The tower driver has no fast
// regime.
func (u *USBTowerPipe) SetFastMode(fast bool) error {
	if !fast {
		return nil
	}
	return ErrUnsupported
}
