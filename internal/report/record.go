// Package report decodes the 64-byte HID sensor report emitted by the
// device into a typed RawRecord, and applies the fixed-point scaling
// factors documented in scale.go. Fields are read by offset out of the
// opaque byte buffer rather than by struct overlay, to avoid alignment and
// strict-aliasing hazards on the wire format.
package report

import (
	"encoding/binary"
	"errors"
	"math"
)

// ReportID is the HID report ID that precedes every sensor sample.
const ReportID = 0x05

// RecordSize is the number of bytes a sensor report must carry after the
// report ID byte. Reports arrive padded to 64 bytes; the fields Decode
// reads occupy the first 43 bytes after the ID.
const RecordSize = 44

// ErrBadID is returned when the buffer's report ID byte doesn't match
// ReportID.
var ErrBadID = errors.New("report: unexpected report id")

// ErrShort is returned when the buffer is too small to hold a full record.
var ErrShort = errors.New("report: buffer shorter than a sensor record")

// RawRecord is the unscaled sensor sample as decoded off the wire.
type RawRecord struct {
	FrameSync        uint8
	FrameSyncCount   uint32
	ImuNotValid      uint8
	Timestamp        uint32
	GX, GY, GZ       int16
	AX, AY, AZ       int16
	ImuTemp          int16
	MagValid         MagStatus
	MX, MY, MZ       int16
	EnvValid         EnvStatus
	Temp             int16
	Press            int16
	Humid            int16
	TempCamLeft      int16
	TempCamRight     int16
	SyncCapabilities uint8
}

// Decode parses buf into a RawRecord. buf must start with the report ID
// byte and be at least RecordSize+1 bytes long.
func Decode(buf []byte) (RawRecord, error) {
	var r RawRecord
	if len(buf) < 1 || buf[0] != ReportID {
		return r, ErrBadID
	}
	if len(buf) < RecordSize+1 {
		return r, ErrShort
	}
	b := buf[1:]

	r.FrameSync = b[0]
	r.FrameSyncCount = binary.LittleEndian.Uint32(b[1:5])
	r.ImuNotValid = b[5]
	r.Timestamp = binary.LittleEndian.Uint32(b[6:10])
	r.GX = int16(binary.LittleEndian.Uint16(b[10:12]))
	r.GY = int16(binary.LittleEndian.Uint16(b[12:14]))
	r.GZ = int16(binary.LittleEndian.Uint16(b[14:16]))
	r.AX = int16(binary.LittleEndian.Uint16(b[16:18]))
	r.AY = int16(binary.LittleEndian.Uint16(b[18:20]))
	r.AZ = int16(binary.LittleEndian.Uint16(b[20:22]))
	r.ImuTemp = int16(binary.LittleEndian.Uint16(b[22:24]))
	r.MagValid = MagStatus(b[24])
	r.MX = int16(binary.LittleEndian.Uint16(b[25:27]))
	r.MY = int16(binary.LittleEndian.Uint16(b[27:29]))
	r.MZ = int16(binary.LittleEndian.Uint16(b[29:31]))
	r.EnvValid = EnvStatus(b[31])
	r.Temp = int16(binary.LittleEndian.Uint16(b[32:34]))
	r.Press = int16(binary.LittleEndian.Uint16(b[34:36]))
	r.Humid = int16(binary.LittleEndian.Uint16(b[36:38]))
	r.TempCamLeft = int16(binary.LittleEndian.Uint16(b[38:40]))
	r.TempCamRight = int16(binary.LittleEndian.Uint16(b[40:42]))
	r.SyncCapabilities = b[42]

	return r, nil
}

// Encode is the inverse of Decode, used by tests to exercise the
// round-trip law and by fakes that synthesize device traffic.
func Encode(r RawRecord) []byte {
	buf := make([]byte, RecordSize+1)
	buf[0] = ReportID
	b := buf[1:]

	b[0] = r.FrameSync
	binary.LittleEndian.PutUint32(b[1:5], r.FrameSyncCount)
	b[5] = r.ImuNotValid
	binary.LittleEndian.PutUint32(b[6:10], r.Timestamp)
	binary.LittleEndian.PutUint16(b[10:12], uint16(r.GX))
	binary.LittleEndian.PutUint16(b[12:14], uint16(r.GY))
	binary.LittleEndian.PutUint16(b[14:16], uint16(r.GZ))
	binary.LittleEndian.PutUint16(b[16:18], uint16(r.AX))
	binary.LittleEndian.PutUint16(b[18:20], uint16(r.AY))
	binary.LittleEndian.PutUint16(b[20:22], uint16(r.AZ))
	binary.LittleEndian.PutUint16(b[22:24], uint16(r.ImuTemp))
	b[24] = uint8(r.MagValid)
	binary.LittleEndian.PutUint16(b[25:27], uint16(r.MX))
	binary.LittleEndian.PutUint16(b[27:29], uint16(r.MY))
	binary.LittleEndian.PutUint16(b[29:31], uint16(r.MZ))
	b[31] = uint8(r.EnvValid)
	binary.LittleEndian.PutUint16(b[32:34], uint16(r.Temp))
	binary.LittleEndian.PutUint16(b[34:36], uint16(r.Press))
	binary.LittleEndian.PutUint16(b[36:38], uint16(r.Humid))
	binary.LittleEndian.PutUint16(b[38:40], uint16(r.TempCamLeft))
	binary.LittleEndian.PutUint16(b[40:42], uint16(r.TempCamRight))
	b[42] = r.SyncCapabilities

	return buf
}

// TimestampNs converts the record's raw MCU tick count to nanoseconds,
// rounding to nearest.
func (r RawRecord) TimestampNs() uint64 {
	return uint64(math.Round(float64(r.Timestamp) * TSScale))
}
