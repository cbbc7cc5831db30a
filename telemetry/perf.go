package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step, one per pipeline stage.
const (
	PhaseLabelCells       = "label_cells"
	PhaseSort             = "sort"
	PhaseResetBoundaries  = "reset_boundaries"
	PhaseLocateBoundaries = "locate_boundaries"
	PhaseReorder          = "reorder"
	PhaseEvaluateRules    = "evaluate_rules"
	PhaseRestore          = "restore"
	PhaseIntegrate        = "integrate"
	PhaseSwapBuffers      = "swap_buffers"
)

var phaseNames = [...]string{
	PhaseLabelCells, PhaseSort, PhaseResetBoundaries, PhaseLocateBoundaries,
	PhaseReorder, PhaseEvaluateRules, PhaseRestore, PhaseIntegrate, PhaseSwapBuffers,
}

// Phases lists every phase in pipeline order.
var Phases = phaseNames[:]

// phaseIndex maps a phase name to its slot in a sample.
var phaseIndex = func() map[string]int {
	m := make(map[string]int, len(Phases))
	for i, p := range Phases {
		m[p] = i
	}
	return m
}()

// PerfSample holds timing data for a single tick, one slot per entry in
// Phases. Slots for stages the strategy skipped stay zero.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [len(phaseNames)]time.Duration
	ran          [len(phaseNames)]bool
}

// PerfCollector tracks per-stage timings over a rolling window of ticks.
// It is driven from the stepping goroutine and is not safe for concurrent use.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	lastPhase  int // -1 outside a phase

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
		lastPhase:  -1,
	}
}

// Reset drops every recorded tick, e.g. after the strategy changes.
func (p *PerfCollector) Reset() {
	p.writeIndex = 0
	p.sampleCount = 0
	p.lastPhase = -1
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = PerfSample{}
	p.lastPhase = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
// Names outside Phases are timed as part of the tick but not broken out.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.endPhase(now)
	p.phaseStart = now
	p.lastPhase = -1
	if i, ok := phaseIndex[phase]; ok {
		p.lastPhase = i
	}
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.lastPhase < 0 {
		return
	}
	p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	p.current.ran[p.lastPhase] = true
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.endPhase(now)
	p.lastPhase = -1

	p.current.TickDuration = now.Sub(p.tickStart)
	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Frame timing is always available (independent of tick samples)
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var totalTick time.Duration
	var minTick, maxTick time.Duration
	var phaseSum [len(phaseNames)]time.Duration
	var phaseRan [len(phaseNames)]bool

	for i := 0; i < p.sampleCount; i++ {
		s := &p.samples[i]
		totalTick += s.TickDuration

		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		maxTick = max(maxTick, s.TickDuration)

		for j := range s.Phases {
			phaseSum[j] += s.Phases[j]
			phaseRan[j] = phaseRan[j] || s.ran[j]
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	// Only stages that ran this window appear in the maps
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for j, name := range Phases {
		if !phaseRan[j] {
			continue
		}
		phaseAvg[name] = phaseSum[j] / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[name] = float64(phaseAvg[name]) / float64(avgTick) * 100
		}
	}

	// Calculate throughput
	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd           int64   `csv:"window_end"`
	Strategy            string  `csv:"strategy"`
	AvgTickUS           int64   `csv:"avg_tick_us"`
	MinTickUS           int64   `csv:"min_tick_us"`
	MaxTickUS           int64   `csv:"max_tick_us"`
	TicksPerSec         float64 `csv:"ticks_per_sec"`
	FPS                 float64 `csv:"fps"`
	LabelCellsPct       float64 `csv:"label_cells_pct"`
	SortPct             float64 `csv:"sort_pct"`
	ResetBoundariesPct  float64 `csv:"reset_boundaries_pct"`
	LocateBoundariesPct float64 `csv:"locate_boundaries_pct"`
	ReorderPct          float64 `csv:"reorder_pct"`
	EvaluateRulesPct    float64 `csv:"evaluate_rules_pct"`
	RestorePct          float64 `csv:"restore_pct"`
	IntegratePct        float64 `csv:"integrate_pct"`
	SwapBuffersPct      float64 `csv:"swap_buffers_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64, strategy string) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:           windowEnd,
		Strategy:            strategy,
		AvgTickUS:           s.AvgTickDuration.Microseconds(),
		MinTickUS:           s.MinTickDuration.Microseconds(),
		MaxTickUS:           s.MaxTickDuration.Microseconds(),
		TicksPerSec:         s.TicksPerSecond,
		FPS:                 s.FPS,
		LabelCellsPct:       s.PhasePct[PhaseLabelCells],
		SortPct:             s.PhasePct[PhaseSort],
		ResetBoundariesPct:  s.PhasePct[PhaseResetBoundaries],
		LocateBoundariesPct: s.PhasePct[PhaseLocateBoundaries],
		ReorderPct:          s.PhasePct[PhaseReorder],
		EvaluateRulesPct:    s.PhasePct[PhaseEvaluateRules],
		RestorePct:          s.PhasePct[PhaseRestore],
		IntegratePct:        s.PhasePct[PhaseIntegrate],
		SwapBuffersPct:      s.PhasePct[PhaseSwapBuffers],
	}
}
