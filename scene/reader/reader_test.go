package reader

import (
	"os"
	"path/filepath"
	"testing"

	"pathtrace/geom"
)

func TestReadCornellMirrorFixture(t *testing.T) {
	sc, err := Read("../testdata/cornell_mirror.txt", Options{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if sc.Camera == nil {
		t.Fatalf("expected a camera to be parsed")
	}
	if len(sc.Materials) != 5 {
		t.Fatalf("expected 5 materials, got %d", len(sc.Materials))
	}
	if len(sc.Geoms) != 7 {
		t.Fatalf("expected 7 geoms (5 walls + 1 light panel + 1 sphere), got %d", len(sc.Geoms))
	}
	if len(sc.Lights) != 1 {
		t.Fatalf("expected 1 emissive light, got %d", len(sc.Lights))
	}
	if sc.Tree == nil {
		t.Fatalf("expected a built k-d tree")
	}
}

func TestReadHDREnvFixtureParsesEnvironmentMap(t *testing.T) {
	sc, err := Read("../testdata/hdr_env.txt", Options{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sc.Environment == nil {
		t.Fatalf("expected an environment map to be parsed")
	}
	if sc.Environment.Width != 4 || sc.Environment.Height != 2 {
		t.Fatalf("expected a 4x2 environment map, got %dx%d", sc.Environment.Width, sc.Environment.Height)
	}
}

func TestReadDoFFixtureSetsLensParameters(t *testing.T) {
	sc, err := Read("../testdata/dof_sphere.txt", Options{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sc.Camera.LensRadius != 0.15 {
		t.Fatalf("expected LensRadius 0.15, got %f", sc.Camera.LensRadius)
	}
	if sc.Camera.FocalDistance != 8.0 {
		t.Fatalf("expected FocalDistance 8, got %f", sc.Camera.FocalDistance)
	}
}

func TestReadCornellDragonFixtureBuildsMesh(t *testing.T) {
	sc, err := Read("../testdata/cornell_dragon.txt", Options{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var found bool
	for i := range sc.Geoms {
		g := &sc.Geoms[i]
		if g.Type == geom.TriangleMeshInstance && g.TriCount == 4 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a 4-triangle mesh geom among %d geoms", len(sc.Geoms))
	}
}

func TestReadRejectsMissingCamera(t *testing.T) {
	path := writeTempScene(t, "MATERIAL m DIFFUSE 1 1 1\nOBJECT SPHERE m 0 0 0 1\n")
	if _, err := Read(path, Options{Width: 4, Height: 4}); err == nil {
		t.Fatalf("expected an error for a scene with no CAMERA")
	}
}

func TestReadRejectsUndefinedMaterialReference(t *testing.T) {
	path := writeTempScene(t, "OBJECT SPHERE ghost 0 0 0 1\nCAMERA 0 0 5 0 0 0 0 1 0 40\n")
	if _, err := Read(path, Options{Width: 4, Height: 4}); err == nil {
		t.Fatalf("expected an error for an undefined material reference")
	}
}

func TestReadRejectsUnterminatedMeshBlock(t *testing.T) {
	path := writeTempScene(t, "MATERIAL m DIFFUSE 1 1 1\nOBJECT MESH m 0 0 0 1\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\nCAMERA 0 0 5 0 0 0 0 1 0 40\n")
	if _, err := Read(path, Options{Width: 4, Height: 4}); err == nil {
		t.Fatalf("expected an error for an OBJECT MESH block missing END")
	}
}

func writeTempScene(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}
