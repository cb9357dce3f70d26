package overlay

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/trioverlay/internal/gpu"
)

// PaintJob is one draw list ready for the GPU renderer.
type PaintJob = gpu.PaintJob

// MeshCommand is one imgui draw command: a run of indices drawn with one
// texture and clip rectangle.
type MeshCommand struct {
	// Clip is (minX, minY, maxX, maxY) in points.
	Clip         [4]float32
	Texture      TextureID
	ElementCount int
}

// ClippedMesh is a copy of one imgui draw list. Vertices use the
// gpu.OverlayVertexStride layout and indices are uint16.
type ClippedMesh struct {
	Vertices []byte
	Indices  []byte
	Commands []MeshCommand
}

// Tessellate turns draw lists into paint jobs with clip rectangles in
// physical pixels. Commands whose clip is empty after scaling, or that
// draw no indices, are dropped; meshes left without commands produce no
// job.
func Tessellate(shapes []ClippedMesh, pixelsPerPoint float32) []PaintJob {
	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	jobs := make([]PaintJob, 0, len(shapes))
	for _, mesh := range shapes {
		var draws []gpu.DrawCall
		first := uint32(0)
		for _, cmd := range mesh.Commands {
			count := uint32(cmd.ElementCount) //nolint:gosec // element counts are non-negative
			if clip, ok := clipToPixels(cmd.Clip, pixelsPerPoint); ok && count > 0 {
				draws = append(draws, gpu.DrawCall{
					Clip:       clip,
					Texture:    cmd.Texture,
					FirstIndex: first,
					IndexCount: count,
				})
			}
			first += count
		}
		if len(draws) == 0 {
			continue
		}
		jobs = append(jobs, PaintJob{
			Vertices: mesh.Vertices,
			Indices:  mesh.Indices,
			Draws:    draws,
		})
	}
	return jobs
}

// clipToPixels converts a clip rectangle in points to an integer scissor
// rectangle in pixels. The min corner is rounded down and the max corner
// rounded up so that partially covered pixels stay visible.
func clipToPixels(clip [4]float32, ppp float32) (gpu.ScissorRect, bool) {
	minX := math32.Max(math32.Floor(clip[0]*ppp), 0)
	minY := math32.Max(math32.Floor(clip[1]*ppp), 0)
	maxX := math32.Ceil(clip[2] * ppp)
	maxY := math32.Ceil(clip[3] * ppp)
	if maxX <= minX || maxY <= minY {
		return gpu.ScissorRect{}, false
	}
	return gpu.ScissorRect{
		X:      uint32(minX),
		Y:      uint32(minY),
		Width:  uint32(maxX - minX),
		Height: uint32(maxY - minY),
	}, true
}
