// Package renderer assembles a device.Context, a tracer.Driver and an
// integrator.Full into the five-operation façade spec.md §6 names
// (Init/RenderIteration/ReadFramebuffer/Denoise/Close), grounded in the
// teacher's own Renderer interface shape (renderer/renderer.go: Render/
// Close/Stats) generalized from a single blocking Render() call that
// owns its own sample count to a caller-driven per-iteration loop, since
// spec 4.F drives iterations one at a time so a caller can read back and
// denoise intermediate results.
package renderer

import (
	"errors"
	"time"

	"pathtrace/denoise"
	"pathtrace/device"
	"pathtrace/integrator"
	"pathtrace/log"
	"pathtrace/scene"
	"pathtrace/tracer"
	"pathtrace/types"
)

var logger = log.New("renderer")

// Renderer owns one device.Context and the tracer.Driver built around
// it. A Renderer is reusable across scenes: Close frees the device
// context so a later Init can target a different scene.
type Renderer struct {
	opts Options
	ctx  *device.Context

	driver *tracer.Driver
	stats  FrameStats
}

// New creates a Renderer for the given frame/device options. The
// returned value is not yet usable for rendering until Init succeeds.
func New(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		ctx:  device.NewContext(opts.Workers),
	}
}

// Init validates sc and allocates the device context's per-scene
// bookkeeping (spec 4.K: "a single init(scene) allocates every device
// array sized from the scene"), then wires a tracer.Driver around it.
func (r *Renderer) Init(sc *scene.Scene) error {
	if sc == nil {
		return ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return ErrCameraNotDefined
	}
	if len(sc.Lights) == 0 && sc.Environment == nil {
		return ErrNoLights
	}

	sizes := map[string]int{
		"framebuffer":  r.opts.Width * r.opts.Height,
		"gbuffer":      r.opts.Width * r.opts.Height,
		"geoms":        len(sc.Geoms),
		"materials":    len(sc.Materials),
		"kdtree_nodes": len(sc.Tree.Nodes),
		"area_lights":  len(sc.Lights),
	}
	if err := r.ctx.Init(sizes); err != nil {
		return err
	}

	driverOpts := tracer.Options{
		Width:                    r.opts.Width,
		Height:                   r.opts.Height,
		MaxDepth:                 r.opts.MaxDepth,
		RussianRouletteThreshold: r.opts.RussianRouletteThreshold,
		CacheFirstBounce:         r.opts.CacheFirstBounce,
		SortByMaterial:           r.opts.SortByMaterial,
	}
	integ := integrator.Full{RussianRoulette: r.opts.RussianRoulette}
	r.driver = tracer.NewDriver(driverOpts, r.ctx, sc, integ)
	r.stats = FrameStats{}
	logger.Noticef("initialized renderer: %dx%d, %d workers, %d geoms, %d materials", r.opts.Width, r.opts.Height, r.ctx.Workers(), len(sc.Geoms), len(sc.Materials))
	return nil
}

// RenderIteration runs one sample-per-pixel iteration (spec 4.F). iter
// is the 0-based iteration index; it seeds every path's per-sample RNG
// (spec 8 property 1, determinism); ReadFramebuffer/Denoise normalize by
// the count of completed iterations (iter+1), so callers must invoke RenderIteration(0), RenderIteration(1), ... in order
// without skipping values.
//
// A launch failure (a worker goroutine panic, surfaced as
// *device.ErrLaunchFailed) faults the underlying device.Context; per
// spec 7 this is fatal, so RenderIteration frees the context and drops
// the driver, requiring a fresh Init before any further calls.
func (r *Renderer) RenderIteration(iter uint32) error {
	if r.driver == nil {
		return ErrNotInitialized
	}

	start := time.Now()
	err := r.driver.RenderIteration(int(iter))
	r.stats = FrameStats{
		Iteration:   int(iter),
		Workers:     r.ctx.Workers(),
		Allocations: r.ctx.Allocations(),
		RenderTime:  time.Since(start),
	}
	if err != nil {
		var launchErr *device.ErrLaunchFailed
		if errors.As(err, &launchErr) {
			logger.Errorf("iteration %d: device launch failed, closing context: %v", iter, launchErr)
			r.ctx.Free()
			r.driver = nil
		}
		return err
	}
	return nil
}

// ReadFramebuffer returns the current normalized (accum/iteration)
// display image (spec 4.J). iterationsDone is the count of completed
// RenderIteration calls, i.e. one past the last iteration index passed
// to RenderIteration.
func (r *Renderer) ReadFramebuffer(iterationsDone uint32) []types.Vec3 {
	if r.driver == nil {
		return nil
	}
	return r.driver.Framebuffer().Normalize(int(iterationsDone))
}

// Denoise runs the edge-aware À-Trous filter (spec 4.I) over the current
// accumulator using the last iteration's G-buffer and primary rays.
// iterationsDone is the same normalization count ReadFramebuffer takes:
// the accumulator is divided by it before filtering and the filtered
// result is multiplied back by it on the way out (spec 4.I), so the
// returned image is iterationsDone times ReadFramebuffer's scale and a
// display divides it by iterationsDone.
func (r *Renderer) Denoise(sigmaC, sigmaN, sigmaP float32, filterSize int, iterationsDone uint32) []types.Vec3 {
	if r.driver == nil {
		return nil
	}
	weights := denoise.Weights{
		SigmaColor:    sigmaC,
		SigmaNormal:   sigmaN,
		SigmaPosition: sigmaP,
	}
	fb := r.driver.Framebuffer()
	mean := fb.Normalize(int(iterationsDone))
	return denoise.ATrous(mean, r.driver.GBuffer(), r.driver.PrimaryRays(), fb, weights, filterSize, int(iterationsDone))
}

// Close frees the device context (spec 4.K: "a single free() releases
// all") and drops the driver; Init must be called again before further
// rendering.
func (r *Renderer) Close() {
	logger.Noticef("closing renderer")
	r.ctx.Free()
	r.driver = nil
}

// Stats reports the most recently completed RenderIteration's timing and
// device footprint (cmd info reads Workers; cmd render prints the whole
// summary after its iteration loop; spec 8 "Device/runner introspection
// CLI").
func (r *Renderer) Stats() FrameStats {
	return r.stats
}
