// Package hidio wraps the USB HID transport the device exposes: feature
// reports for control/status, and interrupt reports for the 400 Hz sensor
// stream. The concrete implementation binds to github.com/sstallion/go-hid,
// a Go binding for hidapi; acquisition and facade code depend only on the
// Device/Enumerator interfaces below so tests can substitute a fake
// transport.
package hidio

import (
	"errors"
	"time"
)

// SLUSBVendor is Stereolabs' USB vendor id.
const SLUSBVendor = 0x2b03

// HID report ids used by the device.
const (
	ReportIDStreamStatus = 0x02
	ReportIDSensorData   = 0x05
	ReportIDRequestSet   = 0x21

	CmdPing = 0xF2
)

// ReadTimeout is the interrupt-read deadline the acquisition loop uses for
// every sample read.
const ReadTimeout = 500 * time.Millisecond

// ErrNotOpen describes a Device call on a handle that is not open. The
// Device implementations in this package do not return it: the go-hid
// adapter passes every call straight to the underlying handle.
var ErrNotOpen = errors.New("hidio: device not open")

// DeviceInfo is one entry from an HID enumeration pass.
type DeviceInfo struct {
	Serial      string
	ProductID   uint16
	ReleaseNbr  uint16 // high byte: firmware major, low byte: firmware minor
	Path        string
}

// FirmwareVersion splits ReleaseNbr into (major, minor), matching the
// original's release_number>>8 / release_number&0xFF split.
func (d DeviceInfo) FirmwareVersion() (major, minor uint16) {
	return d.ReleaseNbr >> 8, d.ReleaseNbr & 0x00FF
}

// Enumerator lists HID devices for a vendor id. The concrete
// implementation calls hid.Enumerate; tests substitute a fixed catalog.
type Enumerator interface {
	Enumerate(vendorID uint16) ([]DeviceInfo, error)
}

// Opener opens a device by vendor id, product id, and serial number.
type Opener interface {
	Open(vendorID, productID uint16, serial string) (Device, error)
}

// Device is the minimal HID handle surface the acquisition loop and
// facade need: feature-report send/get, timed interrupt reads, blocking
// mode toggling, and close.
type Device interface {
	// SendFeatureReport issues a host->device feature report (used for
	// stream enable/disable and pings).
	SendFeatureReport(data []byte) (int, error)
	// GetFeatureReport issues a device->host feature report read (used for
	// stream status queries).
	GetFeatureReport(data []byte) (int, error)
	// ReadTimeout reads one interrupt report, returning 0 on timeout and a
	// negative count is reported as an error rather than a sentinel int,
	// matching Go convention over the C hid_read_timeout return contract.
	ReadTimeout(data []byte, timeout time.Duration) (int, error)
	// SetNonblocking toggles non-blocking mode on the handle.
	SetNonblocking(nonblocking bool) error
	// Close releases the handle. Safe to call more than once.
	Close() error
}
