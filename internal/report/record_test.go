package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleRecord() RawRecord {
	return RawRecord{
		FrameSync:        1,
		FrameSyncCount:   42,
		ImuNotValid:      0,
		Timestamp:        1_000_000,
		GX:               100, GY: -200, GZ: 300,
		AX: -400, AY: 500, AZ: -600,
		ImuTemp:          2500,
		MagValid:         MagNew,
		MX:               10, MY: -20, MZ: 30,
		EnvValid:         EnvNew,
		Temp:             2100,
		Press:            9800,
		Humid:            4500,
		TempCamLeft:      3200,
		TempCamRight:     3300,
		SyncCapabilities: 1,
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	want := sampleRecord()
	buf := Encode(want)
	got, err := Decode(buf)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBadID(t *testing.T) {
	buf := Encode(sampleRecord())
	buf[0] = 0x99
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrBadID)
}

func TestDecodeShortBuffer(t *testing.T) {
	buf := Encode(sampleRecord())
	_, err := Decode(buf[:10])
	require.ErrorIs(t, err, ErrShort)
}

func TestDecodeAcceptsPaddedReport(t *testing.T) {
	buf := Encode(sampleRecord())
	padded := make([]byte, 64)
	copy(padded, buf)
	_, err := Decode(padded)
	require.NoError(t, err)
}

func TestTimestampNsRounds(t *testing.T) {
	r := RawRecord{Timestamp: 1_000_000}
	// 1,000,000 * 39.0625 = 39,062,500 exactly.
	require.Equal(t, uint64(39_062_500), r.TimestampNs())
}

func TestFirmwareScaleGate(t *testing.T) {
	require.Equal(t, PressScaleOld, PressureScale(3, 8))
	require.Equal(t, PressScaleNew, PressureScale(3, 9))
	require.Equal(t, PressScaleNew, PressureScale(4, 0))
	require.Equal(t, HumidScaleOld, HumidityScale(2, 9))
	require.Equal(t, HumidScaleNew, HumidityScale(3, 9))
}
