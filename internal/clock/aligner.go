// Package clock implements the MCU-to-host clock alignment pipeline: it
// maps the device's free-running microcontroller ticks onto the host
// monotonic clock, estimates and corrects the MCU's frequency drift, and
// folds in a periodic offset re-alignment against a paired video stream.
package clock

// DriftWindow is the number of paired (host, mcu) samples collected at
// sync edges before a drift update runs.
const DriftWindow = 50

// NTPAdjustBootstrapCount bounds the bootstrap phase: while fewer than or
// exactly this many drift updates have run (so the first
// NTPAdjustBootstrapCount+1 updates), the update discards a wider early
// window.
const NTPAdjustBootstrapCount = 3

// ScaleClampMin/Max bound ntp_scale on every update.
const (
	ScaleClampMin = 0.8
	ScaleClampMax = 1.2
)

// OffsetSamples is the number of drift updates accumulated before the
// running average is folded into SyncOffsetNs.
const OffsetSamples = 3

// VideoObserver is the read-only view the aligner has of the paired video
// component: a single scalar, the timestamp of the most recently captured
// frame. Modeled as a one-way read interface so the aligner never needs a
// reference back into the video component's own state.
type VideoObserver interface {
	LastFrameTimestampNs() int64
}

// Clock abstracts the host monotonic clock so tests can drive it
// deterministically. Now must be non-decreasing across calls; Steady need
// not be the same clock as Now — a wall-clock reading and an elapsed-time
// reading serve different purposes below and are kept as separate calls.
type Clock interface {
	NowNs() int64
	SteadyNs() int64
}

// Aligner holds all clock-alignment state for one device instance. It is
// owned exclusively by the acquisition worker; nothing else may touch it
// concurrently.
type Aligner struct {
	clock  Clock
	video  VideoObserver
	hasVideo bool

	firstSample bool
	startHostNs uint64
	lastMcuNs   uint64
	relMcuNs    uint64

	ntpScale       float64
	syncOffsetNs   int64
	ntpAdjustCount uint32

	lastFrameSyncCount uint32

	hostTs []int64
	mcuTs  []int64

	offsetSum   int64
	offsetCount int
}

// New creates an Aligner. clock supplies the host monotonic readings. No
// video observer is attached until EnableSync is called with a non-nil one;
// until then the offset-realignment step is simply skipped.
func New(clk Clock) *Aligner {
	return &Aligner{
		clock:       clk,
		firstSample: true,
		ntpScale:    1.0,
		hostTs:      make([]int64, 0, DriftWindow),
		mcuTs:       make([]int64, 0, DriftWindow),
	}
}

// EnableSync hands the aligner a read-only reference to the video
// collaborator plus an initial sync offset.
func (a *Aligner) EnableSync(v VideoObserver, initialOffsetNs int64) {
	a.video = v
	a.hasVideo = v != nil
	a.syncOffsetNs = initialOffsetNs
}

// NtpScale returns the current drift-correction multiplier. Always within
// [ScaleClampMin, ScaleClampMax].
func (a *Aligner) NtpScale() float64 { return a.ntpScale }

// SyncOffsetNs returns the running MCU-to-video offset.
func (a *Aligner) SyncOffsetNs() int64 { return a.syncOffsetNs }

// Bootstrapped reports whether the first valid sample has been consumed.
func (a *Aligner) Bootstrapped() bool { return !a.firstSample }

// Update feeds one sample's raw MCU nanosecond timestamp (already scaled by
// report.RawRecord.TimestampNs) and sync-related fields through the
// alignment pipeline. ok is false for the bootstrap sample, which the
// caller must not publish.
func (a *Aligner) Update(mcuNs uint64, imuNotValid bool, frameSync uint8, frameSyncCount uint32, syncCapabilities uint8) (alignedNs uint64, ok bool) {
	if a.firstSample {
		if imuNotValid {
			return 0, false
		}
		a.startHostNs = uint64(a.clock.NowNs())
		a.lastMcuNs = mcuNs
		a.firstSample = false
		return 0, false
	}

	deltaRaw := mcuNs - a.lastMcuNs
	a.lastMcuNs = mcuNs

	a.relMcuNs += uint64(roundHalfAwayFromZero(float64(deltaRaw) * a.ntpScale))

	aligned := (a.startHostNs - uint64(a.syncOffsetNs)) + a.relMcuNs

	if syncCapabilities != 0 {
		a.handleSyncEdge(aligned, frameSync, frameSyncCount)
	}
	a.lastFrameSyncCount = frameSyncCount

	return aligned, true
}

func (a *Aligner) handleSyncEdge(alignedNs uint64, frameSync uint8, frameSyncCount uint32) {
	isEdge := a.lastFrameSyncCount != 0 && (frameSync != 0 || frameSyncCount > a.lastFrameSyncCount)
	if !isEdge {
		return
	}

	a.hostTs = append(a.hostTs, a.clock.SteadyNs())
	a.mcuTs = append(a.mcuTs, int64(alignedNs))

	if len(a.hostTs) < DriftWindow || len(a.mcuTs) < DriftWindow {
		return
	}

	firstIndex := 5
	if a.ntpAdjustCount <= NTPAdjustBootstrapCount {
		firstIndex = DriftWindow / 2
	}

	last := DriftWindow - 1
	firstHost, lastHost := a.hostTs[firstIndex], a.hostTs[last]
	firstMcu, lastMcu := a.mcuTs[firstIndex], a.mcuTs[last]

	scale := float64(lastHost-firstHost) / float64(lastMcu-firstMcu)
	if scale > ScaleClampMax {
		scale = ScaleClampMax
	} else if scale < ScaleClampMin {
		scale = ScaleClampMin
	}

	a.ntpScale *= scale
	if a.ntpScale > ScaleClampMax {
		a.ntpScale = ScaleClampMax
	} else if a.ntpScale < ScaleClampMin {
		a.ntpScale = ScaleClampMin
	}
	a.hostTs = a.hostTs[:0]
	a.mcuTs = a.mcuTs[:0]
	a.ntpAdjustCount++

	if a.hasVideo {
		a.offsetSum += int64(alignedNs) - a.video.LastFrameTimestampNs()
		a.offsetCount++
		if a.offsetCount == OffsetSamples {
			a.syncOffsetNs += a.offsetSum / int64(a.offsetCount)
			a.offsetSum = 0
			a.offsetCount = 0
		}
	}
}

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}
