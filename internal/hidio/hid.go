package hidio

import (
	"time"

	hid "github.com/sstallion/go-hid"
)

// GoHID adapts github.com/sstallion/go-hid to the Enumerator/Opener/Device
// interfaces. It is the only file in this package that imports the
// cgo-backed hidapi binding; everything else in the core depends on the
// interfaces above.
type GoHID struct{}

var _ Enumerator = GoHID{}
var _ Opener = GoHID{}

// Enumerate lists every HID device for vendorID, mirroring
// SensorCapture::enumerateDevices.
func (GoHID) Enumerate(vendorID uint16) ([]DeviceInfo, error) {
	var out []DeviceInfo
	err := hid.Enumerate(vendorID, 0x0, func(info *hid.DeviceInfo) error {
		out = append(out, DeviceInfo{
			Serial:     info.SerialNbr,
			ProductID:  info.ProductID,
			ReleaseNbr: info.ReleaseNbr,
			Path:       info.Path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Open opens a device by (vendor, product, serial), mirroring hid_open.
func (GoHID) Open(vendorID, productID uint16, serial string) (Device, error) {
	dev, err := hid.Open(vendorID, productID, serial)
	if err != nil {
		return nil, err
	}
	return &goHIDDevice{dev: dev}, nil
}

type goHIDDevice struct {
	dev *hid.Device
}

func (d *goHIDDevice) SendFeatureReport(data []byte) (int, error) {
	return d.dev.SendFeatureReport(data)
}

func (d *goHIDDevice) GetFeatureReport(data []byte) (int, error) {
	return d.dev.GetFeatureReport(data)
}

func (d *goHIDDevice) ReadTimeout(data []byte, timeout time.Duration) (int, error) {
	return d.dev.ReadWithTimeout(data, timeout)
}

func (d *goHIDDevice) SetNonblocking(nonblocking bool) error {
	return d.dev.SetNonblock(nonblocking)
}

func (d *goHIDDevice) Close() error {
	return d.dev.Close()
}

// Init/Exit wrap the hidapi library-level init/teardown. The facade calls
// Init before every enumeration pass and never calls Exit.
func Init() error { return hid.Init() }
func Exit() error { return hid.Exit() }
