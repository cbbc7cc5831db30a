package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayBounds         OverlayID = "bounds"
	OverlayOccupiedCells  OverlayID = "occupied_cells"
	OverlayVelocityColors OverlayID = "velocity_colors"
	OverlayCellColors     OverlayID = "cell_colors"
	OverlayPerf           OverlayID = "perf"
	OverlayControls       OverlayID = "controls"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID        OverlayID   // Unique identifier
	Name      string      // Display name
	Key       int32       // Keyboard key to toggle (0 = no key)
	KeyLabel  string      // Key label for display (e.g., "B")
	Category  string      // Grouping (e.g., "scene", "panels")
	Exclusive []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays. Bounds, velocity colors and the
// control panel start enabled.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID: OverlayBounds, Name: "Domain Bounds",
		Key: rl.KeyB, KeyLabel: "B", Category: "scene",
	})
	r.Register(OverlayDescriptor{
		ID: OverlayOccupiedCells, Name: "Occupied Cells",
		Key: rl.KeyG, KeyLabel: "G", Category: "scene",
	})
	r.Register(OverlayDescriptor{
		ID: OverlayVelocityColors, Name: "Velocity Colors",
		Key: rl.KeyV, KeyLabel: "V", Category: "color",
		Exclusive: []OverlayID{OverlayCellColors},
	})
	r.Register(OverlayDescriptor{
		ID: OverlayCellColors, Name: "Cell Colors",
		Key: rl.KeyC, KeyLabel: "C", Category: "color",
		Exclusive: []OverlayID{OverlayVelocityColors},
	})
	r.Register(OverlayDescriptor{
		ID: OverlayPerf, Name: "Stage Timings",
		Key: rl.KeyP, KeyLabel: "P", Category: "panels",
	})
	r.Register(OverlayDescriptor{
		ID: OverlayControls, Name: "Controls",
		Key: rl.KeyTab, KeyLabel: "Tab", Category: "panels",
	})

	r.SetEnabled(OverlayBounds, true)
	r.SetEnabled(OverlayVelocityColors, true)
	r.SetEnabled(OverlayControls, true)
}

// Register adds an overlay to the registry, initially disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// Keys returns every key bound to an overlay.
func (r *OverlayRegistry) Keys() []int32 {
	keys := make([]int32, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.Key != 0 {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}
