package surface

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/trioverlay/internal/gpu"
)

// ChooseFormat picks the surface format from the formats the adapter
// reports: the first sRGB format wherever it appears, else the first
// entry. An empty list yields TextureFormatUndefined.
func ChooseFormat(formats []gputypes.TextureFormat) gputypes.TextureFormat {
	for _, f := range formats {
		if gpu.IsSRGB(f) {
			return f
		}
	}
	if len(formats) == 0 {
		return gputypes.TextureFormatUndefined
	}
	return formats[0]
}
