package writer

import (
	"os"
	"path/filepath"
	"testing"

	"pathtrace/scene/reader"
)

// TestRoundTripPreservesCounts re-parses a fixture, writes it back out
// through Write, re-reads the result and checks that geometry/material/
// light counts and the camera's field of view survive the round trip
// (material names are not preserved, spec 8 "Scene text format +
// writer"; this is a round trip on compiled content, not on source
// text).
func TestRoundTripPreservesCounts(t *testing.T) {
	const width, height = 32, 32

	original, err := reader.Read("../testdata/cornell_mirror.txt", reader.Options{Width: width, Height: height})
	if err != nil {
		t.Fatalf("reader.Read: %v", err)
	}

	out := filepath.Join(t.TempDir(), "roundtrip.txt")
	if err := Write(original, out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reread, err := reader.Read(out, reader.Options{Width: width, Height: height})
	if err != nil {
		t.Fatalf("reader.Read(round-tripped): %v", err)
	}

	if len(reread.Materials) != len(original.Materials) {
		t.Fatalf("material count changed: got %d, want %d", len(reread.Materials), len(original.Materials))
	}
	if len(reread.Geoms) != len(original.Geoms) {
		t.Fatalf("geom count changed: got %d, want %d", len(reread.Geoms), len(original.Geoms))
	}
	if len(reread.Lights) != len(original.Lights) {
		t.Fatalf("light count changed: got %d, want %d", len(reread.Lights), len(original.Lights))
	}
	if reread.Camera.FOVDegrees != original.Camera.FOVDegrees {
		t.Fatalf("camera FOV changed: got %f, want %f", reread.Camera.FOVDegrees, original.Camera.FOVDegrees)
	}
}

// TestRoundTripPreservesMesh checks that a mesh object's triangle count
// survives Write/Read, exercising writeMesh's vertex-index rebasing.
func TestRoundTripPreservesMesh(t *testing.T) {
	const width, height = 32, 32

	original, err := reader.Read("../testdata/cornell_dragon.txt", reader.Options{Width: width, Height: height})
	if err != nil {
		t.Fatalf("reader.Read: %v", err)
	}

	out := filepath.Join(t.TempDir(), "roundtrip.txt")
	if err := Write(original, out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reread, err := reader.Read(out, reader.Options{Width: width, Height: height})
	if err != nil {
		t.Fatalf("reader.Read(round-tripped): %v", err)
	}

	var origTris, rereadTris int32
	for i := range original.Geoms {
		origTris += original.Geoms[i].TriCount
	}
	for i := range reread.Geoms {
		rereadTris += reread.Geoms[i].TriCount
	}
	if origTris != rereadTris {
		t.Fatalf("total triangle count changed: got %d, want %d", rereadTris, origTris)
	}
}

func TestWriteRejectsUnwritableDestination(t *testing.T) {
	original, err := reader.Read("../testdata/cornell_mirror.txt", reader.Options{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("reader.Read: %v", err)
	}

	missingDir := filepath.Join(t.TempDir(), "does", "not", "exist", "out.txt")
	if err := Write(original, missingDir); err == nil {
		os.Remove(missingDir)
		t.Fatalf("expected an error writing into a nonexistent directory")
	}
}
