package denoise

import (
	"math"
	"sync"

	"pathtrace/types"
)

// GaussianFallback applies a fixed isotropic Gaussian blur for
// comparison/debugging against the À-Trous output (spec 4.I: "Optional
// fallback: a fixed isotropic Gaussian of variance sigma^2 with
// quarter-kernel cached on the device").
type GaussianFallback struct {
	cache quarterKernelCache
}

// NewGaussianFallback constructs a fallback filter with its own
// independent kernel cache.
func NewGaussianFallback() *GaussianFallback {
	return &GaussianFallback{cache: newQuarterKernelCache()}
}

// Apply runs a separable Gaussian blur of the given standard deviation
// over image (width x height), returning a new buffer.
func (g *GaussianFallback) Apply(image []types.Vec3, width, height int, sigma float32) []types.Vec3 {
	if sigma <= 0 {
		out := make([]types.Vec3, len(image))
		copy(out, image)
		return out
	}

	quarter := g.cache.get(sigma)
	temp := make([]types.Vec3, len(image))
	out := make([]types.Vec3, len(image))

	blurAxis(image, temp, width, height, quarter, true)
	blurAxis(temp, out, width, height, quarter, false)
	return out
}

func blurAxis(src, dst []types.Vec3, width, height int, quarter []float32, horizontal bool) {
	radius := len(quarter) - 1
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum types.Vec3
			var weightSum float32
			for d := -radius; d <= radius; d++ {
				// Mirror-symmetric indexing: the kernel is stored only
				// for offsets [0, radius] and looked up by |d|.
				w := quarter[absInt(d)]
				var sx, sy int
				if horizontal {
					sx, sy = mirror(x+d, width), y
				} else {
					sx, sy = x, mirror(y+d, height)
				}
				sum = sum.Add(src[sy*width+sx].Mul(w))
				weightSum += w
			}
			if weightSum > 0 {
				dst[y*width+x] = sum.Mul(1 / weightSum)
			} else {
				dst[y*width+x] = src[y*width+x]
			}
		}
	}
}

func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// quarterKernelCache caches the non-negative half of a symmetric 1D
// Gaussian kernel, keyed by quantized sigma, grounded in the teacher
// pack's gogpu-gg kernel cache (mutex-guarded map, eviction on overflow).
type quarterKernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

func newQuarterKernelCache() quarterKernelCache {
	return quarterKernelCache{cache: make(map[int][]float32), maxLen: 64}
}

func (c *quarterKernelCache) get(sigma float32) []float32 {
	key := int(sigma * 100)

	c.mu.RLock()
	if k, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return k
	}
	c.mu.RUnlock()

	kernel := quarterGaussianKernel(sigma)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= c.maxLen {
		count := 0
		for k := range c.cache {
			delete(c.cache, k)
			count++
			if count >= c.maxLen/2 {
				break
			}
		}
	}
	c.cache[key] = kernel
	return kernel
}

// quarterGaussianKernel returns weights for offsets [0, radius], where
// radius covers 3 standard deviations.
func quarterGaussianKernel(sigma float32) []float32 {
	radius := int(math.Ceil(float64(sigma) * 3))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, radius+1)
	twoSigmaSq := 2 * sigma * sigma
	for i := 0; i <= radius; i++ {
		x := float32(i)
		kernel[i] = float32(math.Exp(float64(-(x * x) / twoSigmaSq)))
	}
	return kernel
}
