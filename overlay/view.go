package overlay

import (
	"github.com/inkyblackness/imgui-go/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AboutTitle is the title of the About window.
const AboutTitle = "Hello, trioverlay"

// Link is one labelled hyperlink row in the About window.
type Link struct {
	Label string
	URL   string
}

// AboutLinks are the rows shown under the separator.
var AboutLinks = []Link{
	{Label: "GLFW", URL: "https://www.glfw.org/docs/latest/"},
	{Label: "wgpu", URL: "https://github.com/gogpu/wgpu"},
	{Label: "Dear ImGui", URL: "https://github.com/ocornut/imgui"},
}

const (
	aboutDescription = "This is the most basic example of how to use GLFW, wgpu and Dear ImGui together."
	aboutHeart       = "Mandatory heart: ♥"
)

var (
	fpsColor  = imgui.Vec4{X: 1, Y: 0, Z: 0, W: 1}
	linkColor = imgui.Vec4{X: 0.35, Y: 0.6, Z: 1, W: 1}
)

// View describes the overlay UI. AboutOpen is the only state kept between
// frames.
type View struct {
	AboutOpen bool

	printer *message.Printer
}

// NewView returns a view with the About window open.
func NewView() *View {
	return &View{
		AboutOpen: true,
		printer:   message.NewPrinter(language.English),
	}
}

// FPSLabel formats the frame rate shown in the menu bar.
func (v *View) FPSLabel(fps float32) string {
	return v.printer.Sprintf("FPS: %.2f", fps)
}

// Draw emits one frame of UI for fps.
func (v *View) Draw(ui *UI, fps float32) {
	if imgui.BeginMainMenuBar() {
		imgui.PushStyleColor(imgui.StyleColorText, fpsColor)
		imgui.Text(v.FPSLabel(fps))
		imgui.PopStyleColor()

		if imgui.BeginMenu("File") {
			if imgui.MenuItem("About...") {
				v.AboutOpen = true
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	if !v.AboutOpen {
		return
	}
	imgui.SetNextWindowPosV(imgui.Vec2{X: 40, Y: 60}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	if imgui.BeginV(AboutTitle, &v.AboutOpen, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.Text(aboutDescription)
		imgui.Text(aboutHeart)
		imgui.Separator()
		for _, l := range AboutLinks {
			imgui.Text(l.Label)
			imgui.SameLine()
			hyperlink(ui, l.URL)
		}
	}
	imgui.End()
}

// hyperlink draws url as link-colored text that opens on click.
func hyperlink(ui *UI, url string) {
	imgui.PushStyleColor(imgui.StyleColorText, linkColor)
	imgui.Text(url)
	imgui.PopStyleColor()
	if imgui.IsItemHovered() {
		imgui.SetMouseCursor(imgui.MouseCursorHand)
		if imgui.IsMouseClicked(0) {
			ui.OpenURL(url)
		}
	}
}
