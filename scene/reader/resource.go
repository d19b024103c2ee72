package reader

import (
	"os"
	"path/filepath"
)

// resource is a local file together with the directory it should resolve
// relative includes (ENVIRONMENT_MAP paths) against. Grounded in
// achilleasa-polaris/scene/reader/resource.go's relTo-chaining shape,
// trimmed to local files only: the http/https remote-fetch branch there
// has no SPEC_FULL.md component to serve (scene files are local CLI
// inputs, spec 6 names no network collaborator), so it is dropped rather
// than carried dead.
type resource struct {
	path string
	dir  string
}

func newResource(path string) (*resource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &resource{path: abs, dir: filepath.Dir(abs)}, nil
}

// resolve turns a path referenced from within this resource (e.g. an
// ENVIRONMENT_MAP record's file argument) into an absolute path.
func (r *resource) resolve(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(r.dir, ref)
}

func (r *resource) open() (*os.File, error) {
	return os.Open(r.path)
}
