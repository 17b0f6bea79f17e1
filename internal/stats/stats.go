// Package stats collects per-tick activity counts and renders them as a
// time-series chart.
package stats

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/wcharczuk/go-chart/v2"

	"heart-ca/internal/core"
)

// Sample is one tick's worth of population counts.
type Sample struct {
	Tick       uint64
	Excited    int // visible action potentials: state > 0 and not refractory
	Refractory int
	Pacemakers int
}

// Collector accumulates samples. Record is called from the engine under
// its lock; the read side takes the collector's own mutex so charts can be
// rendered while the simulation keeps running.
type Collector struct {
	mu      sync.Mutex
	samples []Sample
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Record counts the grid's populations and appends a sample.
func (c *Collector) Record(tick uint64, g *core.Grid) {
	s := Sample{Tick: tick}
	for i := range g.Cells {
		cell := &g.Cells[i]
		switch cell.Type {
		case core.RestingTissue:
			s.Refractory++
		case core.Pacemaker:
			s.Pacemakers++
			if cell.State > 0 {
				s.Excited++
			}
		default:
			if cell.State > 0 {
				s.Excited++
			}
		}
	}
	c.mu.Lock()
	c.samples = append(c.samples, s)
	c.mu.Unlock()
}

// Samples returns a copy of the recorded series.
func (c *Collector) Samples() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sample(nil), c.samples...)
}

// Len reports how many ticks have been recorded.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// WriteChart renders the excited and refractory populations over time as a
// PNG. At least two samples are needed to draw a line.
func (c *Collector) WriteChart(w io.Writer) error {
	samples := c.Samples()
	if len(samples) < 2 {
		return fmt.Errorf("need at least 2 samples to chart, have %d", len(samples))
	}
	ticks := make([]float64, len(samples))
	excited := make([]float64, len(samples))
	refractory := make([]float64, len(samples))
	for i, s := range samples {
		ticks[i] = float64(s.Tick)
		excited[i] = float64(s.Excited)
		refractory[i] = float64(s.Refractory)
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{Name: "Tick"},
		YAxis: chart.YAxis{Name: "Cells"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Excited",
				XValues: ticks,
				YValues: excited,
				Style:   chart.Style{StrokeColor: chart.ColorRed},
			},
			chart.ContinuousSeries{
				Name:    "Refractory",
				XValues: ticks,
				YValues: refractory,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// SaveChart renders the chart into a file at path.
func (c *Collector) SaveChart(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	defer f.Close()
	if err := c.WriteChart(f); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
