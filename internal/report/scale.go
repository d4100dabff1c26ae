package report

// Fixed-point scaling constants inherited from the device firmware.
const (
	// TSScale converts raw MCU ticks to nanoseconds (39.0625 ns/tick).
	TSScale = 39.0625

	AccScale  = 0.000244 * 9.80665 // m/s^2 per LSB (16-bit, +-8g range)
	GyroScale = 0.00875            // deg/s per LSB (16-bit, +-2000dps range)
	MagScale  = 0.001              // uT per LSB
	TempScale = 0.01               // degC per LSB

	PressScaleOld = 1.0
	PressScaleNew = 0.01
	HumidScaleOld = 1.0
	HumidScaleNew = 0.01

	// TempNotValid is the sentinel firmware uses for "no camera-die sensor".
	TempNotValid = int16(0x7FFF)
)

// MagStatus mirrors SensMagData::MagStatus from the firmware protocol.
type MagStatus uint8

const (
	MagOld     MagStatus = 0
	MagNew     MagStatus = 1
	MagInvalid MagStatus = 2
)

// EnvStatus mirrors the analogous env_valid field.
type EnvStatus uint8

const (
	EnvOld EnvStatus = 0
	EnvNew EnvStatus = 1
)

// fwVersion packs major/minor the way the device's release_number field
// does: high byte major, low byte minor.
type fwVersion struct {
	Major, Minor uint16
}

// FW39 is the firmware cutoff at which pressure/humidity switch scale.
var FW39 = fwVersion{Major: 3, Minor: 9}

// FirmwareAtLeast reports whether (major, minor) is >= threshold. Kept
// general rather than hardcoded to the pressure/humidity cutoff so later
// firmware-gated constants have a home.
func FirmwareAtLeast(major, minor uint16, threshold fwVersion) bool {
	if major != threshold.Major {
		return major > threshold.Major
	}
	return minor >= threshold.Minor
}

// PressureScale picks the pressure scale factor for a given firmware version.
func PressureScale(major, minor uint16) float64 {
	if FirmwareAtLeast(major, minor, FW39) {
		return PressScaleNew
	}
	return PressScaleOld
}

// HumidityScale picks the humidity scale factor for a given firmware version.
func HumidityScale(major, minor uint16) float64 {
	if FirmwareAtLeast(major, minor, FW39) {
		return HumidScaleNew
	}
	return HumidScaleOld
}
