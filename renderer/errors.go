package renderer

import "errors"

// Sentinel errors (spec 7, concretized onto device.Context's own
// ErrNotInitialized/ErrAlreadyInitialized/ErrLaunchFailed). ErrNoTracers
// is dropped: there is no multi-device attach step to fail any more, a
// single device.Context is always present once New returns.
var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrCameraNotDefined = errors.New("renderer: no camera defined")
	ErrNoLights         = errors.New("renderer: scene has no area lights or environment map")
	ErrNotInitialized   = errors.New("renderer: not initialized; call Init first")
	ErrInterrupted      = errors.New("renderer: interrupted while rendering")
)
