package overlay

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/inkyblackness/imgui-go/v4"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/trioverlay"
	"github.com/gogpu/trioverlay/internal/gpu"
	"github.com/gogpu/trioverlay/window"
)

// Context errors.
var (
	// ErrVertexLayout is returned when imgui's vertex layout does not match
	// the overlay pipeline.
	ErrVertexLayout = errors.New("overlay: unexpected imgui vertex layout")

	// ErrAtlasTooLarge is returned when the font atlas exceeds the
	// device's maximum texture side.
	ErrAtlasTooLarge = errors.New("overlay: font atlas exceeds texture limit")
)

// baseFontSize is the UI font size in points.
const baseFontSize = 15

// Pseudo key indices for modifiers, after the window.Key range.
const (
	keyIndexShift = int(window.KeyCount) + iota
	keyIndexCtrl
	keyIndexAlt
	keyIndexSuper
)

// FullOutput is everything one UI frame produces.
type FullOutput struct {
	Shapes   []ClippedMesh
	Platform PlatformOutput
	Textures TexturesDelta
}

// UI is handed to the frame closure for requests that leave the UI.
type UI struct {
	openURL string
}

// OpenURL asks the platform to open url after the frame.
func (u *UI) OpenURL(url string) { u.openURL = url }

// clipboard bridges imgui's clipboard to the platform. Pasting reads
// through the frame's input; copied text is reported as platform output.
type clipboard struct {
	paste  func() string
	copied string
}

func (c *clipboard) Text() (string, error) {
	if c.paste == nil {
		return "", nil
	}
	return c.paste(), nil
}

func (c *clipboard) SetText(text string) { c.copied = text }

// Context is one Dear ImGui context with its font atlas.
type Context struct {
	ctx    *imgui.Context
	io     imgui.IO
	clip   *clipboard
	glyphs imgui.AllocatedGlyphRanges

	maxTextureSide uint32
	ppp            float32
	failedPPP      float32 // scale whose atlas did not fit; not retried
	fontTexture    TextureID
	lastTextureID  TextureID
	pending        TexturesDelta
	keysDown       [keyIndexSuper + 1]bool
}

// NewContext creates the imgui context and builds the font atlas for
// pixelsPerPoint. The atlas upload is reported by the first Run.
func NewContext(pixelsPerPoint float32, maxTextureSide uint32) (*Context, error) {
	size, posOff, uvOff, colOff := imgui.VertexBufferLayout()
	if size != gpu.OverlayVertexStride || posOff != 0 || uvOff != 8 || colOff != 16 {
		return nil, fmt.Errorf("%w: stride %d offsets %d/%d/%d", ErrVertexLayout, size, posOff, uvOff, colOff)
	}
	if imgui.IndexBufferLayout() != gpu.OverlayIndexSize {
		return nil, fmt.Errorf("%w: index size %d", ErrVertexLayout, imgui.IndexBufferLayout())
	}

	c := &Context{
		ctx:            imgui.CreateContext(nil),
		clip:           &clipboard{},
		maxTextureSide: maxTextureSide,
	}
	if err := c.ctx.SetCurrent(); err != nil {
		c.ctx.Destroy()
		return nil, fmt.Errorf("overlay: %w", err)
	}
	c.io = imgui.CurrentIO()
	c.io.SetIniFilename("")
	c.io.SetClipboard(c.clip)
	c.mapKeys()

	var builder imgui.GlyphRangesBuilder
	builder.AddExisting(c.io.Fonts().GlyphRangesDefault())
	builder.Add('♥', '♥') // heart
	c.glyphs = builder.Build()

	if pixelsPerPoint <= 0 {
		pixelsPerPoint = 1
	}
	if err := c.buildFonts(pixelsPerPoint); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

func (c *Context) mapKeys() {
	keys := map[int]window.Key{
		imgui.KeyTab:        window.KeyTab,
		imgui.KeyLeftArrow:  window.KeyLeft,
		imgui.KeyRightArrow: window.KeyRight,
		imgui.KeyUpArrow:    window.KeyUp,
		imgui.KeyDownArrow:  window.KeyDown,
		imgui.KeyPageUp:     window.KeyPageUp,
		imgui.KeyPageDown:   window.KeyPageDown,
		imgui.KeyHome:       window.KeyHome,
		imgui.KeyEnd:        window.KeyEnd,
		imgui.KeyInsert:     window.KeyInsert,
		imgui.KeyDelete:     window.KeyDelete,
		imgui.KeyBackspace:  window.KeyBackspace,
		imgui.KeySpace:      window.KeySpace,
		imgui.KeyEnter:      window.KeyEnter,
		imgui.KeyEscape:     window.KeyEscape,
		imgui.KeyA:          window.KeyA,
		imgui.KeyC:          window.KeyC,
		imgui.KeyV:          window.KeyV,
		imgui.KeyX:          window.KeyX,
		imgui.KeyY:          window.KeyY,
		imgui.KeyZ:          window.KeyZ,
	}
	for imguiKey, k := range keys {
		c.io.KeyMap(imguiKey, int(k))
	}
}

// rasterize replaces imgui's font atlas with the UI font at pixelsPerPoint.
func (c *Context) rasterize(pixelsPerPoint float32) *imgui.RGBA32Image {
	fonts := c.io.Fonts()
	fonts.Clear()
	fonts.AddFontFromMemoryTTFV(goregular.TTF, baseFontSize*pixelsPerPoint, imgui.DefaultFontConfig, c.glyphs.GlyphRanges)
	return fonts.TextureDataRGBA32()
}

// buildFonts rasterizes the UI font at pixelsPerPoint and queues the new
// atlas for upload, freeing the previous one. If the atlas does not fit,
// the atlas of the current scale is rebuilt under its existing texture id
// and pixelsPerPoint is remembered so it is not tried again.
func (c *Context) buildFonts(pixelsPerPoint float32) error {
	img := c.rasterize(pixelsPerPoint)

	if c.maxTextureSide > 0 && (uint32(img.Width) > c.maxTextureSide || uint32(img.Height) > c.maxTextureSide) { //nolint:gosec // atlas sides are positive
		c.failedPPP = pixelsPerPoint
		if c.ppp > 0 {
			c.rasterize(c.ppp)
			c.io.Fonts().SetTextureID(imgui.TextureID(c.fontTexture))
		}
		return fmt.Errorf("%w: %dx%d, limit %d", ErrAtlasTooLarge, img.Width, img.Height, c.maxTextureSide)
	}
	fonts := c.io.Fonts()

	n := img.Width * img.Height * 4
	pixels := make([]byte, n)
	copy(pixels, unsafe.Slice((*byte)(img.Pixels), n))

	c.lastTextureID++
	id := c.lastTextureID
	fonts.SetTextureID(imgui.TextureID(id))

	delta := TexturesDelta{Set: []TextureSet{{
		ID:    id,
		Image: ImageDelta{Width: img.Width, Height: img.Height, Pixels: pixels},
	}}}
	if c.fontTexture != 0 {
		delta.Free = append(delta.Free, c.fontTexture)
	}
	c.pending.Append(delta)
	c.fontTexture = id

	// Glyphs are rasterized in pixels; layout stays in points.
	c.io.SetFontGlobalScale(1 / pixelsPerPoint)
	c.ppp = pixelsPerPoint
	c.failedPPP = 0

	trioverlay.Logger().Debug("overlay: font atlas built",
		"texture", id, "width", img.Width, "height", img.Height, "ppp", pixelsPerPoint)
	return nil
}

// FontTexture returns the id of the current font atlas texture.
func (c *Context) FontTexture() TextureID { return c.fontTexture }

// Run feeds in to imgui, runs ui for one frame and collects the output.
func (c *Context) Run(in RawInput, ui func(*UI)) FullOutput {
	if err := c.ctx.SetCurrent(); err != nil {
		trioverlay.Logger().Warn("overlay: set current context", "error", err)
	}
	if in.PixelsPerPoint > 0 && in.PixelsPerPoint != c.ppp && in.PixelsPerPoint != c.failedPPP {
		if err := c.buildFonts(in.PixelsPerPoint); err != nil {
			trioverlay.Logger().Warn("overlay: rebuild fonts", "error", err)
		}
	}
	c.applyInput(in)

	imgui.NewFrame()
	frame := &UI{}
	ui(frame)
	imgui.Render()

	out := FullOutput{
		Shapes: copyDrawData(imgui.RenderedDrawData()),
		Platform: PlatformOutput{
			Cursor:     translateCursor(imgui.MouseCursor()),
			CopiedText: c.clip.copied,
			OpenURL:    frame.openURL,
		},
		Textures: c.pending,
	}
	c.clip.copied = ""
	c.pending = TexturesDelta{}
	return out
}

func (c *Context) applyInput(in RawInput) {
	c.io.SetDisplaySize(imgui.Vec2{X: in.ScreenSize[0], Y: in.ScreenSize[1]})
	c.io.SetDeltaTime(in.DeltaTime)

	if in.PointerValid {
		c.io.SetMousePosition(imgui.Vec2{X: in.Pointer[0], Y: in.Pointer[1]})
	} else {
		c.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}
	for i, down := range in.Buttons {
		c.io.SetMouseButtonDown(i, down)
	}
	if in.Wheel != [2]float32{} {
		c.io.AddMouseWheelDelta(in.Wheel[0], in.Wheel[1])
	}

	for _, k := range in.Keys {
		c.setKey(int(k.Key), k.Pressed)
	}
	c.setKey(keyIndexShift, in.Mods&window.ModShift != 0)
	c.setKey(keyIndexCtrl, in.Mods&window.ModCtrl != 0)
	c.setKey(keyIndexAlt, in.Mods&window.ModAlt != 0)
	c.setKey(keyIndexSuper, in.Mods&window.ModSuper != 0)
	c.io.KeyShift(keyIndexShift, keyIndexShift)
	c.io.KeyCtrl(keyIndexCtrl, keyIndexCtrl)
	c.io.KeyAlt(keyIndexAlt, keyIndexAlt)
	c.io.KeySuper(keyIndexSuper, keyIndexSuper)

	if in.Text != "" {
		c.io.AddInputCharacters(in.Text)
	}
	c.clip.paste = in.Clipboard
}

func (c *Context) setKey(index int, down bool) {
	if index < 0 || index >= len(c.keysDown) || c.keysDown[index] == down {
		return
	}
	c.keysDown[index] = down
	if down {
		c.io.KeyPress(index)
	} else {
		c.io.KeyRelease(index)
	}
}

// Destroy releases the imgui context.
func (c *Context) Destroy() {
	if c.ctx == nil {
		return
	}
	c.glyphs.Free()
	c.ctx.Destroy()
	c.ctx = nil
}

// copyDrawData copies imgui's draw lists out of C memory; they are
// invalidated by the next frame.
func copyDrawData(dd imgui.DrawData) []ClippedMesh {
	if !dd.Valid() {
		return nil
	}
	lists := dd.CommandLists()
	meshes := make([]ClippedMesh, 0, len(lists))
	for _, list := range lists {
		vp, vsize := list.VertexBuffer()
		ip, isize := list.IndexBuffer()
		mesh := ClippedMesh{
			Vertices: cloneC(vp, vsize),
			Indices:  cloneC(ip, isize),
		}
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				continue
			}
			r := cmd.ClipRect()
			mesh.Commands = append(mesh.Commands, MeshCommand{
				Clip:         [4]float32{r.X, r.Y, r.Z, r.W},
				Texture:      TextureID(cmd.TextureID()),
				ElementCount: cmd.ElementCount(),
			})
		}
		meshes = append(meshes, mesh)
	}
	return meshes
}

func cloneC(p unsafe.Pointer, size int) []byte {
	if p == nil || size <= 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(p), size))
	return out
}

func translateCursor(c imgui.MouseCursorID) window.Cursor {
	switch c {
	case imgui.MouseCursorNone:
		return window.CursorHidden
	case imgui.MouseCursorTextInput:
		return window.CursorText
	case imgui.MouseCursorHand:
		return window.CursorHand
	case imgui.MouseCursorResizeNS:
		return window.CursorResizeNS
	case imgui.MouseCursorResizeEW:
		return window.CursorResizeEW
	case imgui.MouseCursorResizeAll:
		return window.CursorCrosshair
	default:
		return window.CursorArrow
	}
}
