package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Population     int
	Strategy       string
	Neighborhood   string
	Tick           int64
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	Polarization   float64
	ValidationErr  float64 // last cross-check deviation, negative when none ran
	ValidationTol  float64
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Boids: %d | Strategy: %s | Grid: %s", data.Population, data.Strategy, data.Neighborhood),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Steps/frame: %d | FPS: %d | Polarization: %.2f",
			data.Tick, data.StepsPerUpdate, data.FPS, data.Polarization),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	if data.ValidationErr >= 0 {
		color := h.renderer.Theme.StatusOK
		if data.ValidationErr > data.ValidationTol {
			color = h.renderer.Theme.StatusBad
		}
		rl.DrawText(fmt.Sprintf("Max deviation vs brute force: %.2e", data.ValidationErr), 10, 95, 14, color)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-stage timing breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Stages that did not run this window
// are skipped.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding

	rows := int32(0)
	for _, phase := range telemetry.Phases {
		if _, ok := stats.PhaseAvg[phase]; ok {
			rows++
		}
	}
	height := (rows+2)*(r.Theme.LineHeight+2) + padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Stage Timings")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%s (%.0f/s)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond))

	for _, phase := range telemetry.Phases {
		pct, ok := stats.PhasePct[phase]
		if !ok {
			continue
		}
		fill := r.Theme.BarFill
		if pct > 50 {
			fill = r.Theme.BarHot
		} else if pct > 20 {
			fill = r.Theme.BarWarn
		}
		y = r.DrawBar(x, y, phase, pct, p.width-padding*2, fill)
	}
}
