package surface

import (
	"github.com/gogpu/gputypes"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

func init() {
	Register("vulkan", 100, gputypes.BackendVulkan)
}
