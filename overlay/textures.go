package overlay

import "github.com/gogpu/trioverlay/internal/gpu"

// TextureID identifies a UI texture. It is the value handed to imgui as
// the font atlas texture id and found again in draw commands.
type TextureID = gpu.TextureID

// ImageDelta is a full RGBA8 image for one texture.
type ImageDelta = gpu.ImageDelta

// TextureSet is one pending texture upload.
type TextureSet struct {
	ID    TextureID
	Image ImageDelta
}

// TexturesDelta accumulates texture changes between uploads: images to
// (re)upload and textures to free once the frame using them is submitted.
type TexturesDelta struct {
	Set  []TextureSet
	Free []TextureID
}

// Append merges other into d. A later image for an id already in Set
// replaces the earlier one in place; frees accumulate.
func (d *TexturesDelta) Append(other TexturesDelta) {
	for _, s := range other.Set {
		replaced := false
		for i := range d.Set {
			if d.Set[i].ID == s.ID {
				d.Set[i].Image = s.Image
				replaced = true
				break
			}
		}
		if !replaced {
			d.Set = append(d.Set, s)
		}
	}
	d.Free = append(d.Free, other.Free...)
}

// Clear empties the accumulator.
func (d *TexturesDelta) Clear() {
	d.Set = d.Set[:0]
	d.Free = d.Free[:0]
}

// IsEmpty reports whether nothing is pending.
func (d *TexturesDelta) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Free) == 0
}
