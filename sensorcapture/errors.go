package sensorcapture

import "errors"

// Error kinds surfaced by the facade. Transport/protocol errors inside the
// acquisition worker are recovered locally and never reach the caller, and
// poll timeouts surface as ok == false from the Last* getters. The errors
// below are the ones the facade's own methods return.
var (
	// ErrNoDevices is returned by Enumerate, and by Init, when enumeration
	// finds no eligible device.
	ErrNoDevices = errors.New("sensorcapture: no available devices")

	// ErrDeviceNotFound is returned by Init when the requested serial
	// isn't present in the last enumeration pass.
	ErrDeviceNotFound = errors.New("sensorcapture: requested serial not found")

	// ErrOpenFailed wraps a lower-level HID open failure.
	ErrOpenFailed = errors.New("sensorcapture: failed to open device")

	// ErrAlreadyInitialized is returned by Init when called twice without
	// an intervening Reset.
	ErrAlreadyInitialized = errors.New("sensorcapture: already initialized")

	// ErrNotInitialized is returned by calls that require an open device
	// (e.g. StreamEnabled) while uninitialized.
	ErrNotInitialized = errors.New("sensorcapture: not initialized")
)
