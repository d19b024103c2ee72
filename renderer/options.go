package renderer

// Options configures a Renderer (spec 4.F's wavefront driver options
// plus 4.K's device lifecycle), replacing the teacher's multi-OpenCL-
// device Options (FrameW/FrameH/BlackListedDevices/ForcePrimaryDevice)
// with a single goroutine worker pool's worth of knobs: there is exactly
// one device.Context per Renderer now, not one tracer per discovered
// OpenCL device.
type Options struct {
	Width, Height int

	// MaxDepth bounds path length (spec 3: remainingBounces starts here).
	MaxDepth int

	// RussianRouletteThreshold is the bounce count past which the
	// integrator may probabilistically terminate a path.
	RussianRouletteThreshold int32
	RussianRoulette          bool

	// CacheFirstBounce and SortByMaterial forward directly to
	// tracer.Options (spec 4.F.2c, 4.F.3).
	CacheFirstBounce bool
	SortByMaterial   bool

	// Workers sizes the device.Context's goroutine pool; <= 0 resolves
	// to runtime.GOMAXPROCS(0).
	Workers int
}
