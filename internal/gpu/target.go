package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrInvalidTargetSize is returned when an offscreen target has a zero side.
var ErrInvalidTargetSize = errors.New("gpu: invalid target size")

// copyPitchAlignment is the BytesPerRow alignment required for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Target is an offscreen color texture that can be rendered into like a
// surface texture and read back to the CPU.
type Target struct {
	device hal.Device
	queue  hal.Queue

	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	width  uint32
	height uint32
}

// NewTarget creates a width x height render target. format must be one of
// the 8-bit RGBA or BGRA formats for ReadPixels to work.
func NewTarget(device hal.Device, queue hal.Queue, width, height uint32, format gputypes.TextureFormat) (*Target, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTargetSize, width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create target texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "offscreen_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create target view: %w", err)
	}

	return &Target{
		device: device,
		queue:  queue,
		tex:    tex,
		view:   view,
		format: format,
		width:  width,
		height: height,
	}, nil
}

// View returns the render attachment view.
func (t *Target) View() hal.TextureView { return t.view }

// Format returns the texture format.
func (t *Target) Format() gputypes.TextureFormat { return t.format }

// Size returns the target size in pixels.
func (t *Target) Size() (width, height uint32) { return t.width, t.height }

// ReadPixels waits for all work on submit, copies the texture into a
// staging buffer and returns its content as RGBA.
func (t *Target) ReadPixels(submit *Submitter) (*image.RGBA, error) {
	if err := submit.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for rendering: %w", err)
	}

	w, h := t.width, t.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := t.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "target_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer t.device.DestroyBuffer(stagingBuf)

	encoder, err := t.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "target_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("target_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	// The texture is still in attachment layout after the last pass.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	if err := submit.Submit(cmdBuf); err != nil {
		return nil, err
	}
	if err := submit.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wait for readback: %w", err)
	}

	readback := make([]byte, stagingSize)
	if err := t.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpackRows(img.Pix, readback, int(bytesPerRow), int(alignedBytesPerRow), int(h),
		t.format == gputypes.TextureFormatBGRA8Unorm || t.format == gputypes.TextureFormatBGRA8UnormSrgb)
	return img, nil
}

// Destroy releases the texture and view.
func (t *Target) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// unpackRows strips per-row padding from src into dst and swaps the red
// and blue channels when swapRB is set.
func unpackRows(dst, src []byte, rowBytes, srcStride, rows int, swapRB bool) {
	for row := 0; row < rows; row++ {
		d := dst[row*rowBytes : (row+1)*rowBytes]
		copy(d, src[row*srcStride:row*srcStride+rowBytes])
		if swapRB {
			for i := 0; i+3 < len(d); i += 4 {
				d[i], d[i+2] = d[i+2], d[i]
			}
		}
	}
}
