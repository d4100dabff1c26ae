package acquisition

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haleqiu/zed-open-capture/internal/clock"
	"github.com/haleqiu/zed-open-capture/internal/hidio"
	"github.com/haleqiu/zed-open-capture/internal/logx"
	"github.com/haleqiu/zed-open-capture/internal/report"
)

// fakeDevice feeds a scripted sequence of interrupt reports and records
// feature-report traffic (pings, stream enable/disable).
type fakeDevice struct {
	mu       sync.Mutex
	reports  [][]byte
	idx      int
	pings    int
	nonblock []bool
	closed   bool
}

func (d *fakeDevice) SendFeatureReport(data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(data) == 2 && data[0] == hidio.ReportIDRequestSet && data[1] == hidio.CmdPing {
		d.pings++
	}
	return len(data), nil
}

func (d *fakeDevice) GetFeatureReport(data []byte) (int, error) { return 0, nil }

func (d *fakeDevice) ReadTimeout(data []byte, timeout time.Duration) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.idx >= len(d.reports) {
		return 0, nil // timeout, no data
	}
	n := copy(data, d.reports[d.idx])
	d.idx++
	return n, nil
}

func (d *fakeDevice) SetNonblocking(nonblocking bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nonblock = append(d.nonblock, nonblocking)
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type sysClock struct{}

func (sysClock) NowNs() int64    { return time.Now().UnixNano() }
func (sysClock) SteadyNs() int64 { return time.Now().UnixNano() }

func recordFor(mcuTicks uint32, imuNotValid uint8, magValid report.MagStatus, envValid report.EnvStatus, tempLeft, tempRight int16) []byte {
	return report.Encode(report.RawRecord{
		ImuNotValid:  imuNotValid,
		Timestamp:    mcuTicks,
		GX:           10, GY: 20, GZ: 30,
		AX: 100, AY: 200, AZ: 300,
		ImuTemp:      2500,
		MagValid:     magValid,
		MX:           1, MY: 2, MZ: 3,
		EnvValid:     envValid,
		Temp:         2000,
		Press:        9000,
		Humid:        4500,
		TempCamLeft:  tempLeft,
		TempCamRight: tempRight,
	})
}

func TestLoopPublishesIMUAndSkipsBootstrap(t *testing.T) {
	dev := &fakeDevice{
		reports: [][]byte{
			recordFor(1_000_000, 0, report.MagOld, report.EnvOld, report.TempNotValid, report.TempNotValid),
			recordFor(1_025_600, 0, report.MagOld, report.EnvOld, report.TempNotValid, report.TempNotValid),
		},
	}
	reg := NewRegistry()
	loop := New(dev, 3, 9, clock.New(sysClock{}), reg, logx.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	sample, ok := reg.Imu.Poll(200 * time.Millisecond)
	require.True(t, ok)
	require.True(t, sample.Valid)

	cancel()
	loop.Wait()
}

func TestLoopModalityGating(t *testing.T) {
	dev := &fakeDevice{
		reports: [][]byte{
			recordFor(1_000_000, 0, report.MagOld, report.EnvOld, report.TempNotValid, report.TempNotValid), // bootstrap
			recordFor(1_025_600, 0, report.MagInvalid, report.EnvNew, 3200, 3300),
		},
	}
	reg := NewRegistry()
	loop := New(dev, 3, 9, clock.New(sysClock{}), reg, logx.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	_, ok := reg.Imu.Poll(200 * time.Millisecond)
	require.True(t, ok)
	_, ok = reg.Env.Poll(200 * time.Millisecond)
	require.True(t, ok)
	_, ok = reg.CamTemp.Poll(200 * time.Millisecond)
	require.True(t, ok)
	_, ok = reg.Mag.Poll(2 * time.Millisecond)
	require.False(t, ok)

	cancel()
	loop.Wait()
}

func TestLoopCamTempSuppressedOnSentinel(t *testing.T) {
	dev := &fakeDevice{
		reports: [][]byte{
			recordFor(1_000_000, 0, report.MagOld, report.EnvOld, report.TempNotValid, report.TempNotValid),
			recordFor(1_025_600, 0, report.MagOld, report.EnvNew, report.TempNotValid, 3300),
		},
	}
	reg := NewRegistry()
	loop := New(dev, 3, 9, clock.New(sysClock{}), reg, logx.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	_, ok := reg.Env.Poll(200 * time.Millisecond)
	require.True(t, ok)
	_, ok = reg.CamTemp.Poll(2 * time.Millisecond)
	require.False(t, ok)

	cancel()
	loop.Wait()
}

func TestLoopStopsPromptlyOnCancel(t *testing.T) {
	dev := &fakeDevice{}
	reg := NewRegistry()
	loop := New(dev, 3, 9, clock.New(sysClock{}), reg, logx.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		loop.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}
