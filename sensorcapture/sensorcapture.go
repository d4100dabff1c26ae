// Package sensorcapture is the public facade over the sensor acquisition
// and clock-synchronization core: device enumeration, initialization by
// serial number, per-modality getters, firmware/serial introspection, and
// the sync handshake with a paired video-capture collaborator.
//
// The facade is a small interface plus one concrete implementation that
// owns the underlying transport and acquisition goroutine.
package sensorcapture

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haleqiu/zed-open-capture/internal/acquisition"
	"github.com/haleqiu/zed-open-capture/internal/clock"
	"github.com/haleqiu/zed-open-capture/internal/hidio"
	"github.com/haleqiu/zed-open-capture/internal/logx"
	"github.com/haleqiu/zed-open-capture/sensordata"
)

// Logger is re-exported from internal/logx so callers can supply their own
// sink without reaching into an internal package.
type Logger = logx.Logger

// VideoObserver is the read-only view the core needs of the paired video
// component: the timestamp of its most recently captured frame. See
// EnableSync.
type VideoObserver interface {
	LastFrameTimestampNs() int64
}

// SensorCapture is the public facade surface for the sensor acquisition
// core.
type SensorCapture interface {
	// Enumerate refreshes and returns the serial numbers of every
	// eligible device found on the bus.
	Enumerate() ([]int, error)

	// Init opens the device with the given serial number (or the first
	// enumerated device if serial is -1), enables its sensor stream, and
	// starts the acquisition worker.
	Init(serial int) error

	// Reset stops the acquisition worker, disables the stream, and closes
	// the device handle. Idempotent; safe to call when uninitialized.
	Reset() error

	// FirmwareVersion returns the (major, minor) firmware version of the
	// currently opened device.
	FirmwareVersion() (major, minor uint16)

	// SerialNumber returns the serial number of the currently opened
	// device, or -1 if uninitialized.
	SerialNumber() int

	// StreamEnabled queries the device's sensor-stream status directly.
	// Safe to call while the acquisition worker is running: access to the
	// underlying HID handle is serialized against the worker's own reads
	// and writes.
	StreamEnabled() (bool, error)

	// EnableSync stores a read-only reference to the paired video component
	// plus its initial sync offset. Init hands both to the clock aligner it
	// creates; a call made while the device is initialized does not reach
	// the running aligner and takes effect at the next Init.
	EnableSync(video VideoObserver, initialOffsetNs int64)

	LastIMU(timeout time.Duration) (sensordata.Imu, bool)
	LastMag(timeout time.Duration) (sensordata.Mag, bool)
	LastEnv(timeout time.Duration) (sensordata.Env, bool)
	LastCamTemp(timeout time.Duration) (sensordata.CamTemp, bool)
}

// Option configures a device at construction time.
type Option func(*device)

// WithLogger injects a logging sink for facade diagnostics. The sink is
// used only until Init: Init replaces it with a default logrus sink tagged
// with the session id and serial, and that sink, not the injected one,
// receives the facade's and the acquisition loop's later diagnostics.
func WithLogger(l Logger) Option {
	return func(d *device) { d.log = l }
}

// WithEnumerator overrides the HID enumeration backend. Used by tests.
func WithEnumerator(e hidio.Enumerator) Option {
	return func(d *device) { d.enumerator = e }
}

// WithOpener overrides the HID open backend. Used by tests.
func WithOpener(o hidio.Opener) Option {
	return func(d *device) { d.opener = o }
}

type device struct {
	mu sync.Mutex

	enumerator hidio.Enumerator
	opener     hidio.Opener
	log        Logger

	catalog    map[int]hidio.DeviceInfo
	catalogOrd []int

	serial  int
	fwMajor uint16
	fwMinor uint16

	hid  hidio.Device
	loop *acquisition.Loop
	reg  *acquisition.Registry

	cancel context.CancelFunc

	video         VideoObserver
	initialOffset int64

	initialized bool
	sessionID   string
}

// New constructs an uninitialized SensorCapture facade.
func New(opts ...Option) SensorCapture {
	d := &device{
		enumerator: hidio.GoHID{},
		opener:     hidio.GoHID{},
		log:        logx.NewDefault(),
		serial:     -1,
		reg:        acquisition.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *device) Enumerate() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enumerateLocked()
}

func (d *device) enumerateLocked() ([]int, error) {
	if err := hidio.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevices, err)
	}

	infos, err := d.enumerator.Enumerate(hidio.SLUSBVendor)
	if err != nil || len(infos) == 0 {
		d.catalog = map[int]hidio.DeviceInfo{}
		d.catalogOrd = nil
		return nil, ErrNoDevices
	}

	d.catalog = make(map[int]hidio.DeviceInfo, len(infos))
	d.catalogOrd = d.catalogOrd[:0]
	for _, info := range infos {
		sn, convErr := strconv.Atoi(info.Serial)
		if convErr != nil {
			d.log.Warnf("sensorcapture: skipping device with non-numeric serial %q", info.Serial)
			continue
		}
		d.catalog[sn] = info
		d.catalogOrd = append(d.catalogOrd, sn)
		d.log.Infof("sensorcapture: found device sn=%d pid=0x%04x path=%s", sn, info.ProductID, info.Path)
	}
	sort.Ints(d.catalogOrd)

	if len(d.catalog) == 0 {
		return nil, ErrNoDevices
	}
	out := make([]int, len(d.catalogOrd))
	copy(out, d.catalogOrd)
	return out, nil
}

func (d *device) Init(serial int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return ErrAlreadyInitialized
	}

	if len(d.catalog) == 0 {
		if _, err := d.enumerateLocked(); err != nil {
			return err
		}
	}

	sn := serial
	if sn == -1 {
		if len(d.catalogOrd) == 0 {
			return ErrNoDevices
		}
		sn = d.catalogOrd[0]
	}

	info, ok := d.catalog[sn]
	if !ok {
		return fmt.Errorf("%w: %d", ErrDeviceNotFound, sn)
	}

	hdl, err := d.opener.Open(hidio.SLUSBVendor, info.ProductID, strconv.Itoa(sn))
	if err != nil {
		return fmt.Errorf("%w: sn=%d: %v", ErrOpenFailed, sn, err)
	}

	d.sessionID = uuid.NewString()
	d.serial = sn
	d.fwMajor, d.fwMinor = info.FirmwareVersion()
	d.hid = hidio.NewGuard(hdl)

	d.log = logx.NewWithFields(map[string]interface{}{
		"session": d.sessionID,
		"serial":  sn,
	})
	d.log.Infof("sensorcapture: opened device fw=%d.%d", d.fwMajor, d.fwMinor)

	if _, err := d.hid.SendFeatureReport([]byte{hidio.ReportIDStreamStatus, 1}); err != nil {
		d.log.Warnf("sensorcapture: enable stream failed: %v", err)
	}

	clk := newRealClock()
	aligner := clock.New(clk)
	if d.video != nil {
		aligner.EnableSync(d.video, d.initialOffset)
	}

	d.loop = acquisition.New(d.hid, d.fwMajor, d.fwMinor, aligner, d.reg, d.log)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.loop.Start(ctx)

	d.initialized = true
	return nil
}

func (d *device) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil
	}

	d.cancel()
	d.loop.Wait()

	if _, err := d.hid.SendFeatureReport([]byte{hidio.ReportIDStreamStatus, 0}); err != nil {
		d.log.Warnf("sensorcapture: disable stream failed: %v", err)
	}
	if err := d.hid.Close(); err != nil {
		d.log.Warnf("sensorcapture: close failed: %v", err)
	}

	d.reg.Imu.Reset()
	d.reg.Mag.Reset()
	d.reg.Env.Reset()
	d.reg.CamTemp.Reset()

	d.hid = nil
	d.loop = nil
	d.cancel = nil
	d.initialized = false
	d.serial = -1

	return nil
}

func (d *device) FirmwareVersion() (major, minor uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fwMajor, d.fwMinor
}

func (d *device) SerialNumber() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.serial
}

func (d *device) StreamEnabled() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return false, ErrNotInitialized
	}

	buf := make([]byte, 65)
	buf[0] = hidio.ReportIDStreamStatus
	n, err := d.hid.GetFeatureReport(buf)
	if err != nil {
		d.log.Warnf("sensorcapture: get stream status failed: %v", err)
		return false, err
	}
	if n < 2 || buf[0] != hidio.ReportIDStreamStatus {
		return false, fmt.Errorf("sensorcapture: stream status size/id mismatch")
	}
	return buf[1] == 1, nil
}

func (d *device) EnableSync(video VideoObserver, initialOffsetNs int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.video = video
	d.initialOffset = initialOffsetNs
}

func (d *device) LastIMU(timeout time.Duration) (sensordata.Imu, bool) {
	return d.reg.Imu.Poll(timeout)
}

func (d *device) LastMag(timeout time.Duration) (sensordata.Mag, bool) {
	return d.reg.Mag.Poll(timeout)
}

func (d *device) LastEnv(timeout time.Duration) (sensordata.Env, bool) {
	return d.reg.Env.Poll(timeout)
}

func (d *device) LastCamTemp(timeout time.Duration) (sensordata.CamTemp, bool) {
	return d.reg.CamTemp.Poll(timeout)
}

// realClock backs internal/clock.Clock with the host monotonic clock.
type realClock struct{ epoch time.Time }

func newRealClock() realClock { return realClock{epoch: time.Now()} }

func (c realClock) NowNs() int64    { return c.epoch.UnixNano() + int64(time.Since(c.epoch)) }
func (c realClock) SteadyNs() int64 { return int64(time.Since(c.epoch)) }
