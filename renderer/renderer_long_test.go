//go:build long

package renderer_test

import "testing"

// TestEndToEndScenariosLong reruns the spec 8 fixtures at the full 5000
// iteration count named in spec 11, at a display-realistic resolution.
// Excluded from the default test build (`go test -tags long ./...` to
// run it) since 5000 iterations per scenario is too slow for routine
// test runs.
func TestEndToEndScenariosLong(t *testing.T) {
	scenarios := []string{
		"../scene/testdata/cornell_mirror.txt",
		"../scene/testdata/cornell_dragon.txt",
		"../scene/testdata/hdr_env.txt",
		"../scene/testdata/dof_sphere.txt",
		"../scene/testdata/denoise_smoke.txt",
	}

	for _, path := range scenarios {
		path := path
		t.Run(path, func(t *testing.T) {
			pixels := renderScenario(t, path, 128, 128, 5000)
			assertFiniteNonZero(t, path, pixels)
		})
	}
}
