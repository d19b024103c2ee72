package tracer

import (
	"sort"

	"pathtrace/device"
	"pathtrace/framebuffer"
	"pathtrace/gbuffer"
	"pathtrace/geom"
	"pathtrace/log"
	"pathtrace/sampling"
	"pathtrace/types"
)

var logger = log.New("tracer")

// Options configures one Driver (spec 4.F).
type Options struct {
	Width, Height int

	// MaxDepth bounds how many bounces a path may take before forced
	// termination (spec 3: remainingBounces starts at MaxDepth).
	MaxDepth int

	// RussianRouletteThreshold is copied onto every path's
	// RussianRouletteThreshold field; the integrator decides whether to
	// act on it.
	RussianRouletteThreshold int32

	// CacheFirstBounce reuses the first depth step's intersections across
	// iterations for a static camera and scene (spec 4.F.3): the
	// intersect stage at depth 0 runs once, on the first iteration, and
	// every later iteration replays its hit/miss result instead of
	// re-tracing the primary ray.
	CacheFirstBounce bool

	// SortByMaterial reorders live paths by their hit surface's material
	// id before Shade at every depth step, grouping same-BSDF work (spec
	// 4.F.2c). Pure reordering; PixelIndex travels with each segment so
	// accumulation is unaffected.
	SortByMaterial bool
}

type firstBounceEntry struct {
	isect geom.Intersection
	hit   bool
}

// Driver owns one render's per-iteration wavefront loop (spec 4.F):
// generate, then for each depth step intersect/shade/compact, finally
// accumulating surviving color into the framebuffer. Grounded in the
// teacher's own per-iteration driver shape (achilleasa-polaris/
// tracer/tracer.go's BlockRequest/Stats lifecycle), generalized from a
// tile-scheduled CPU/OpenCL tracer pool to a single wavefront loop driven
// by a device.Context worker pool.
type Driver struct {
	opts  Options
	ctx   *device.Context
	scene Scene
	integ Integrator

	paths *PathBuffer
	gbuf  *gbuffer.Buffer
	fb    *framebuffer.Framebuffer

	firstBounce     []firstBounceEntry
	haveFirstBounce bool

	// primaryRays holds each pixel's camera ray from the most recent
	// RenderIteration, needed by the denoiser to reconstruct world-space
	// positions from the G-buffer's depth-only Pixel records (gbuffer.
	// Position takes the primary ray back in, spec 4.H).
	primaryRays []geom.Ray
}

// NewDriver wires a Driver around an already-Init'd device context, a
// compiled Scene and a chosen Integrator.
func NewDriver(opts Options, ctx *device.Context, scene Scene, integ Integrator) *Driver {
	if opts.CacheFirstBounce && scene.AntiAliasEnabled() {
		// The cache replays depth-0's intersection verbatim on every
		// iteration (spec 4.F.3); with AA on, each iteration's primary ray
		// differs per pixel, so the cached hit would silently apply to
		// the wrong ray and bias the accumulator. Disable rather than
		// trust the caller to have checked this.
		logger.Warningf("cache-first-bounce disabled: camera has anti-aliasing enabled")
		opts.CacheFirstBounce = false
	}

	pixelCount := opts.Width * opts.Height
	d := &Driver{
		opts:  opts,
		ctx:   ctx,
		scene: scene,
		integ: integ,
		paths: NewPathBuffer(pixelCount),
		gbuf:  gbuffer.NewBuffer(opts.Width, opts.Height),
		fb:    framebuffer.New(opts.Width, opts.Height),
	}
	if opts.CacheFirstBounce {
		d.firstBounce = make([]firstBounceEntry, pixelCount)
	}
	d.primaryRays = make([]geom.Ray, pixelCount)
	return d
}

// Framebuffer exposes the accumulation buffer for readback/denoising.
func (d *Driver) Framebuffer() *framebuffer.Framebuffer { return d.fb }

// GBuffer exposes the last iteration's G-buffer, used by the denoiser.
func (d *Driver) GBuffer() *gbuffer.Buffer { return d.gbuf }

// PrimaryRays exposes the last iteration's per-pixel camera rays, needed
// alongside GBuffer to reconstruct world-space positions for denoising.
func (d *Driver) PrimaryRays() []geom.Ray { return d.primaryRays }

// InvalidateFirstBounceCache drops the cached primary-ray intersections,
// required whenever the camera or scene geometry changes (spec 4.F.3).
func (d *Driver) InvalidateFirstBounceCache() {
	d.haveFirstBounce = false
}

// RenderIteration runs one full sample-per-pixel iteration (spec 4.F):
// generate primary rays, then loop depth 0..MaxDepth-1 doing
// intersect/shade, compacting the live set after each step, and finally
// accumulates every path's final Color into the framebuffer at its
// PixelIndex.
func (d *Driver) RenderIteration(iteration int) error {
	width, height := d.opts.Width, d.opts.Height
	pixelCount := width * height

	d.paths.Reset()

	genErr := d.ctx.ForEach("generate", pixelCount, func(i int) {
		x, y := i%width, i/width
		rng := sampling.NewRNG(uint32(iteration), uint32(i), 0)
		ray := d.scene.GenerateCameraRay(x, y, width, height, rng)
		d.primaryRays[i] = ray

		p := d.paths.At(i)
		*p = PathSegment{
			Ray:                      ray,
			Throughput:               types.XYZ(1, 1, 1),
			PixelIndex:               int32(i),
			RemainingBounces:         int32(d.opts.MaxDepth),
			RussianRouletteThreshold: d.opts.RussianRouletteThreshold,
			IsFromCamera:             true,
		}
	})
	if genErr != nil {
		logger.Errorf("iteration %d: generate stage failed: %v", iteration, genErr)
		return genErr
	}

	for depth := 0; depth < d.opts.MaxDepth; depth++ {
		n := d.paths.Len()
		if n == 0 {
			break
		}

		useCache := depth == 0 && d.opts.CacheFirstBounce && d.haveFirstBounce

		intersectErr := d.ctx.ForEach("intersect", n, func(i int) {
			p := d.paths.At(i)

			var isect geom.Intersection
			var hit bool
			if useCache {
				cached := d.firstBounce[p.PixelIndex]
				isect, hit = cached.isect, cached.hit
			} else {
				isect, hit = d.scene.Intersect(p.Ray)
				if depth == 0 && d.opts.CacheFirstBounce {
					d.firstBounce[p.PixelIndex] = firstBounceEntry{isect: isect, hit: hit}
				}
			}

			if depth == 0 {
				if hit {
					d.gbuf.Capture(int(p.PixelIndex), isect)
				} else {
					d.gbuf.Miss(int(p.PixelIndex))
				}
			}

			if !hit {
				p.TFar = -1
				return
			}
			p.HitSurface = isect
			p.TFar = isect.T
		})
		if intersectErr != nil {
			logger.Errorf("iteration %d depth %d: intersect stage failed: %v", iteration, depth, intersectErr)
			return intersectErr
		}
		if depth == 0 && d.opts.CacheFirstBounce {
			d.haveFirstBounce = true
		}

		if d.opts.SortByMaterial {
			d.sortLiveByMaterial(n)
		}

		shadeErr := d.ctx.ForEach("shade", n, func(i int) {
			p := d.paths.At(i)
			rng := sampling.NewRNG(uint32(iteration), uint32(p.PixelIndex), uint32(depth))
			if p.TFar < 0 {
				d.integ.Miss(p, p.Ray.Dir, d.scene)
				return
			}
			d.integ.Shade(p, p.HitSurface, d.scene, rng)
		})
		if shadeErr != nil {
			logger.Errorf("iteration %d depth %d: shade stage failed: %v", iteration, depth, shadeErr)
			return shadeErr
		}

		// Flush every path that just died into the framebuffer before
		// Compact() drops it from the live set; PixelIndex is unique
		// across the whole iteration (spec 8 property 6), so this never
		// double-accumulates a pixel.
		for i := 0; i < n; i++ {
			p := d.paths.At(i)
			if !p.Alive() {
				d.fb.Accumulate(int(p.PixelIndex), p.Color)
			}
		}

		d.paths.Compact()
	}

	// Any path still alive after MaxDepth depth steps is forcibly
	// terminated by hitting the bounce cap; its accumulated Color so far
	// is still a valid (if truncated) estimator contribution.
	finalN := d.paths.Len()
	for i := 0; i < finalN; i++ {
		p := d.paths.At(i)
		d.fb.Accumulate(int(p.PixelIndex), p.Color)
	}

	return nil
}

// sortLiveByMaterial reorders the first n live path segments by the
// material id of their just-computed hit surface (spec 4.F.2c), grouping
// same-BSDF work together before Shade runs.
func (d *Driver) sortLiveByMaterial(n int) {
	segs := make([]PathSegment, n)
	for i := 0; i < n; i++ {
		segs[i] = *d.paths.At(i)
	}
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].HitSurface.MaterialID < segs[j].HitSurface.MaterialID
	})
	for i := 0; i < n; i++ {
		*d.paths.At(i) = segs[i]
	}
}
