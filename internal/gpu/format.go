package gpu

import "github.com/gogpu/gputypes"

// IsSRGB reports whether format stores sRGB-encoded color, i.e. whether
// the hardware converts from linear to sRGB when writing to it.
//
// Only color-renderable formats are listed; compressed sRGB formats can
// never be surface or render target formats.
func IsSRGB(format gputypes.TextureFormat) bool {
	switch format {
	case gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}
