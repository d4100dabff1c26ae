package clock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests drive NowNs/SteadyNs deterministically.
type fakeClock struct {
	now, steady int64
}

func (c *fakeClock) NowNs() int64    { return c.now }
func (c *fakeClock) SteadyNs() int64 { return c.steady }

func TestBootstrapSampleNotPublished(t *testing.T) {
	clk := &fakeClock{now: 5_000_000_000}
	a := New(clk)

	_, ok := a.Update(1_000_000, false, 0, 0, 0)
	require.False(t, ok)
	require.True(t, a.Bootstrapped())
}

func TestBootstrapTiming(t *testing.T) {
	// MCU ticks 1_000_000, 1_025_600, 1_051_200 (deltas of 25_600 ticks
	// each, i.e. 1ms at TSScale=39.0625ns/tick, per the seed scenario).
	// Update takes nanoseconds, so the ticks are passed already scaled:
	// 39_062_500, 40_062_500, 41_062_500.
	clk := &fakeClock{now: 1_000_000_000}
	a := New(clk)

	_, ok := a.Update(39_062_500, false, 0, 0, 0)
	require.False(t, ok)

	ns1, ok := a.Update(40_062_500, false, 0, 0, 0)
	require.True(t, ok)
	require.Equal(t, uint64(1_000_000_000+1_000_000), ns1)

	ns2, ok := a.Update(41_062_500, false, 0, 0, 0)
	require.True(t, ok)
	require.Equal(t, uint64(1_000_000_000+2_000_000), ns2)
}

func TestScaleUnchangedBelowDriftWindow(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 1) // bootstrap

	mcu := uint64(0)
	for i := 0; i < DriftWindow-1; i++ {
		mcu += 1_000_000
		clk.steady += 1_000_000
		_, _ = a.Update(mcu, false, 1, uint32(i+1), 1)
	}
	require.Equal(t, 1.0, a.NtpScale())
}

// primeEdge issues a first frame-sync sample so that lastFrameSyncCount
// becomes non-zero without itself counting as a sync edge (the source
// requires mLastFrameSyncCount!=0 to detect an edge, so the very first
// frame-sync sample after bootstrap only arms detection for the next one).
func primeEdge(a *Aligner, mcu *uint64, clk *fakeClock) {
	*mcu += 1_000_000
	clk.steady += 1_000_000
	_, _ = a.Update(*mcu, false, 1, 1, 1)
}

func TestDriftCorrection10Percent(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 1) // bootstrap, lastFrameSyncCount stays 0

	mcu := uint64(0)
	primeEdge(a, &mcu, clk)

	for i := 0; i < DriftWindow; i++ {
		mcu += 1_000_000        // MCU advances 1ms/edge
		clk.steady += 1_100_000 // host (steady) advances 10% faster
		_, _ = a.Update(mcu, false, 1, uint32(i+2), 1)
	}
	require.InDelta(t, 1.1, a.NtpScale(), 1e-9)

	// A second window where the host clock now advances in lockstep with
	// the already-corrected aligned timestamp (raw MCU rate unchanged)
	// computes scale==1.0, leaving the compounded ntp_scale unchanged.
	for i := 0; i < DriftWindow; i++ {
		mcu += 1_000_000
		clk.steady += 1_100_000
		_, _ = a.Update(mcu, false, 1, uint32(DriftWindow+i+2), 1)
	}
	require.InDelta(t, 1.1, a.NtpScale(), 1e-6)
}

func TestScaleClampedAtUpperBound(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 1)

	mcu := uint64(0)
	primeEdge(a, &mcu, clk)

	for i := 0; i < DriftWindow; i++ {
		mcu += 1_000_000
		clk.steady += 2_000_000 // 2x ratio, should clamp to 1.2
		_, _ = a.Update(mcu, false, 1, uint32(i+2), 1)
	}
	require.InDelta(t, ScaleClampMax, a.NtpScale(), 1e-9)
}

func TestScaleClampedAtLowerBound(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 1)

	mcu := uint64(0)
	primeEdge(a, &mcu, clk)

	for i := 0; i < DriftWindow; i++ {
		mcu += 2_000_000
		clk.steady += 1_000_000 // 0.5x ratio, should clamp to 0.8
		_, _ = a.Update(mcu, false, 1, uint32(i+2), 1)
	}
	require.InDelta(t, ScaleClampMin, a.NtpScale(), 1e-9)
}

func TestNoDriftUpdateWithoutSyncCapability(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 0) // sync_capabilities == 0

	mcu := uint64(0)
	for i := 0; i < DriftWindow+10; i++ {
		mcu += 1_000_000
		clk.steady += 5_000_000
		_, _ = a.Update(mcu, false, 1, uint32(i+1), 0)
	}
	require.Equal(t, 1.0, a.NtpScale())
}

// fakeVideo implements VideoObserver with a fixed timestamp.
type fakeVideo struct{ ts int64 }

func (v *fakeVideo) LastFrameTimestampNs() int64 { return v.ts }

func TestOffsetRealignmentAfterThreeDriftUpdates(t *testing.T) {
	clk := &fakeClock{now: 0}
	a := New(clk)
	video := &fakeVideo{ts: 0}
	a.EnableSync(video, 0)

	_, _ = a.Update(0, false, 0, 0, 1)

	mcu := uint64(0)
	edge := 1
	primeEdge(a, &mcu, clk)

	runWindow := func() {
		for i := 0; i < DriftWindow; i++ {
			mcu += 1_000_000
			clk.steady += 1_000_000
			edge++
			_, _ = a.Update(mcu, false, 1, uint32(edge), 1)
		}
	}

	require.Equal(t, int64(0), a.SyncOffsetNs())
	runWindow()
	runWindow()
	runWindow()
	require.NotEqual(t, int64(0), a.SyncOffsetNs())
}

func TestMonotoneAlignedTimestamps(t *testing.T) {
	clk := &fakeClock{now: 1_000_000_000}
	a := New(clk)
	_, _ = a.Update(0, false, 0, 0, 0)

	mcu := uint64(0)
	last := uint64(0)
	for i := 0; i < 500; i++ {
		mcu += 25_600
		ns, ok := a.Update(mcu, false, 0, 0, 0)
		require.True(t, ok)
		require.GreaterOrEqual(t, ns, last)
		last = ns
	}
}
