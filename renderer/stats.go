package renderer

import "time"

// FrameStats summarizes one RenderIteration call, grounded in the
// teacher's TracerStat/FrameStats shape (renderer/stats.go) but
// collapsed from one row per OpenCL tracer device to a single summary
// for the whole device.Context worker pool, since this module schedules
// across a goroutine pool rather than heterogeneous discovered hardware.
type FrameStats struct {
	Iteration int

	// Workers is the resolved device.Context worker pool size.
	Workers int

	// Allocations mirrors device.Context.Allocations(), the per-buffer
	// element counts sized at Init (printed by cmd render, spec 8
	// "Device/runner introspection CLI").
	Allocations map[string]int

	// RenderTime is the wall-clock duration of the most recent
	// RenderIteration call.
	RenderTime time.Duration
}
