package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxStepsPerUpdate is the top of the steps-per-frame slider.
const MaxStepsPerUpdate = 10

// ControlsState is what the panel shows. Strategies are listed by name in
// button order.
type ControlsState struct {
	Strategies     []string
	Active         int // index into Strategies
	Paused         bool
	StepsPerUpdate int
}

// ControlsAction reports what the user clicked this frame.
type ControlsAction struct {
	Strategy       int // index into Strategies, -1 when unchanged
	TogglePause    bool
	Validate       bool
	ResetCamera    bool
	StepsPerUpdate int
}

// ControlsPanel renders the right-side panel with strategy buttons,
// simulation controls and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and returns the user's input.
func (c *ControlsPanel) Draw(state ControlsState, overlays *OverlayRegistry) ControlsAction {
	act := ControlsAction{Strategy: -1, StepsPerUpdate: state.StepsPerUpdate}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	buttonH := float32(24)
	inner := float32(c.width - padding*2)

	overlayRows := int32(0)
	for _, cat := range overlays.Categories() {
		overlayRows += int32(len(overlays.ByCategory(cat))) + 1
	}
	height := int32(len(state.Strategies)+3)*int32(buttonH+4) + 3*lineHeight + overlayRows*lineHeight + padding*4
	r.DrawPanel(c.x, c.y, c.width, height)

	x := float32(c.x + padding)
	y := r.DrawSectionHeader(int32(x), c.y+padding, "Strategy")

	for i, name := range state.Strategies {
		label := name
		if i == state.Active {
			label = "> " + name
		}
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: buttonH}, label) && i != state.Active {
			act.Strategy = i
		}
		y += int32(buttonH + 4)
	}

	y += 4
	half := (inner - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: buttonH}, toggleText(state.Paused, "Resume", "Pause")) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: float32(y), Width: half, Height: buttonH}, "Validate") {
		act.Validate = true
	}
	y += int32(buttonH + 4)
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: inner, Height: buttonH}, "Reset Camera") {
		act.ResetCamera = true
	}
	y += int32(buttonH + 8)

	rl.DrawText(fmt.Sprintf("Steps per frame: %d", state.StepsPerUpdate), int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
	y += lineHeight
	steps := gui.SliderBar(
		rl.Rectangle{X: x + 12, Y: float32(y), Width: inner - 36, Height: 16},
		"1", fmt.Sprint(MaxStepsPerUpdate),
		float32(state.StepsPerUpdate), 1, MaxStepsPerUpdate,
	)
	act.StepsPerUpdate = min(max(int(steps+0.5), 1), MaxStepsPerUpdate)
	y += lineHeight + padding

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(int32(x), y, desc, overlays.IsEnabled(desc.ID), int32(inner))
			y += lineHeight
		}
	}

	return act
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "scene":
		return "Scene"
	case "color":
		return "Coloring"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
