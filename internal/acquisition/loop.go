// Package acquisition orchestrates the HID transport (hidio), the report
// codec (report), and the clock aligner (clock) on one dedicated worker,
// publishing decoded samples into per-modality registry cells. Shutdown
// runs on a cancel context plus a sync.WaitGroup the owner waits on before
// tearing anything else down, rather than a bare stop flag polled by the
// read loop.
package acquisition

import (
	"context"
	"sync"
	"time"

	"github.com/haleqiu/zed-open-capture/internal/clock"
	"github.com/haleqiu/zed-open-capture/internal/hidio"
	"github.com/haleqiu/zed-open-capture/internal/logx"
	"github.com/haleqiu/zed-open-capture/internal/registry"
	"github.com/haleqiu/zed-open-capture/internal/report"
	"github.com/haleqiu/zed-open-capture/sensordata"
)

// PingInterval is how many read iterations elapse between liveness pings,
// roughly 1s at the device's 400Hz sample rate.
const PingInterval = 400

// Registry bundles the four modality cells the loop publishes into.
type Registry struct {
	Imu     *registry.Cell[sensordata.Imu]
	Mag     *registry.Cell[sensordata.Mag]
	Env     *registry.Cell[sensordata.Env]
	CamTemp *registry.Cell[sensordata.CamTemp]
}

// NewRegistry constructs the four cells with their poll granularities:
// 100us for IMU, since it updates far more often than the rest, 10us
// otherwise.
func NewRegistry() *Registry {
	return &Registry{
		Imu:     registry.NewCell[sensordata.Imu](100 * time.Microsecond),
		Mag:     registry.NewCell[sensordata.Mag](10 * time.Microsecond),
		Env:     registry.NewCell[sensordata.Env](10 * time.Microsecond),
		CamTemp: registry.NewCell[sensordata.CamTemp](10 * time.Microsecond),
	}
}

// Loop is the acquisition worker. One Loop exists per initialized device.
type Loop struct {
	dev      hidio.Device
	fwMajor  uint16
	fwMinor  uint16
	aligner  *clock.Aligner
	registry *Registry
	log      logx.Logger

	wg sync.WaitGroup
}

// New constructs a Loop bound to an already-open device handle. fwMajor/
// fwMinor gate the environmental scale factors.
func New(dev hidio.Device, fwMajor, fwMinor uint16, aligner *clock.Aligner, reg *Registry, log logx.Logger) *Loop {
	if log == nil {
		log = logx.Nop{}
	}
	return &Loop{
		dev:      dev,
		fwMajor:  fwMajor,
		fwMinor:  fwMinor,
		aligner:  aligner,
		registry: reg,
		log:      log,
	}
}

// Registry returns the loop's publish target.
func (l *Loop) Registry() *Registry { return l.registry }

// Start spawns the acquisition goroutine, returning immediately. Stop, or
// cancellation of ctx, terminates it; call Wait to block for that.
func (l *Loop) Start(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.run(ctx)
	}()
}

// Wait blocks until the worker goroutine has returned.
func (l *Loop) Wait() { l.wg.Wait() }

func (l *Loop) run(ctx context.Context) {
	pingCount := 0
	buf := make([]byte, 65)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if pingCount >= PingInterval {
			pingCount = 0
			l.sendPing()
		}
		pingCount++

		n, err := l.dev.ReadTimeout(buf, hidio.ReadTimeout)
		if err != nil || n < report.RecordSize+1 {
			if err != nil {
				l.log.Warnf("acquisition: read error: %v", err)
			}
			if setErr := l.dev.SetNonblocking(false); setErr != nil {
				l.log.Warnf("acquisition: set blocking mode: %v", setErr)
			}
			continue
		}

		raw, decErr := report.Decode(buf[:n])
		if decErr != nil {
			l.log.Warnf("acquisition: decode: %v", decErr)
			if setErr := l.dev.SetNonblocking(false); setErr != nil {
				l.log.Warnf("acquisition: set blocking mode: %v", setErr)
			}
			continue
		}

		l.handleRecord(raw)
	}
}

func (l *Loop) handleRecord(raw report.RawRecord) {
	imuNotValid := raw.ImuNotValid != 0

	alignedNs, ok := l.aligner.Update(
		raw.TimestampNs(),
		imuNotValid,
		raw.FrameSync,
		raw.FrameSyncCount,
		raw.SyncCapabilities,
	)
	if !ok {
		// Bootstrap sample: establishes start_host_ns, never published.
		return
	}

	l.registry.Imu.Publish(sensordata.Imu{
		TimestampNs: alignedNs,
		Valid:       !imuNotValid,
		Sync:        raw.FrameSync != 0,
		Accel: sensordata.Vec3{
			X: float64(raw.AX) * report.AccScale,
			Y: float64(raw.AY) * report.AccScale,
			Z: float64(raw.AZ) * report.AccScale,
		},
		Gyro: sensordata.Vec3{
			X: float64(raw.GX) * report.GyroScale,
			Y: float64(raw.GY) * report.GyroScale,
			Z: float64(raw.GZ) * report.GyroScale,
		},
		TempC: float64(raw.ImuTemp) * report.TempScale,
	})

	if raw.MagValid == report.MagNew {
		l.registry.Mag.Publish(sensordata.Mag{
			TimestampNs: alignedNs,
			Valid:       true,
			Field: sensordata.Vec3{
				X: float64(raw.MX) * report.MagScale,
				Y: float64(raw.MY) * report.MagScale,
				Z: float64(raw.MZ) * report.MagScale,
			},
		})
	}

	if raw.EnvValid == report.EnvNew {
		pressScale := report.PressureScale(l.fwMajor, l.fwMinor)
		humidScale := report.HumidityScale(l.fwMajor, l.fwMinor)

		l.registry.Env.Publish(sensordata.Env{
			TimestampNs: alignedNs,
			Valid:       true,
			TempC:       float64(raw.Temp) * report.TempScale,
			PressureHPa: float64(raw.Press) * pressScale,
			HumidityPct: float64(raw.Humid) * humidScale,
		})

		if raw.TempCamLeft != report.TempNotValid && raw.TempCamRight != report.TempNotValid {
			l.registry.CamTemp.Publish(sensordata.CamTemp{
				TimestampNs: alignedNs,
				Valid:       true,
				LeftC:       float64(raw.TempCamLeft) * report.TempScale,
				RightC:      float64(raw.TempCamRight) * report.TempScale,
			})
		}
	}
}

func (l *Loop) sendPing() {
	buf := []byte{hidio.ReportIDRequestSet, hidio.CmdPing}
	if _, err := l.dev.SendFeatureReport(buf); err != nil {
		l.log.Warnf("acquisition: ping failed: %v", err)
	}
}
