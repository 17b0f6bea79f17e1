package app

import (
	"flag"

	"heart-ca/internal/core"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Width  int
	Height int

	Scale       int
	TPS         int
	Workers     int
	FrameTimeMS int

	SearchRadius int
	APDuration   int
	RestDuration int
	APThreshold  float64

	PatchRadius int
	Fibrosis    float64
	Seed        int64

	GridPath    string
	LoadPath    string
	RecordPath  string
	ChartPath   string
	MonitorAddr string

	Verbose bool
}

// NewConfig returns a Config populated with the standard defaults.
func NewConfig() *Config {
	base := core.DefaultConfig()
	return &Config{
		Width:        base.Width,
		Height:       base.Height,
		Scale:        1,
		TPS:          60,
		Workers:      base.Workers,
		FrameTimeMS:  base.FrameTimeMS,
		SearchRadius: base.Params.SearchRadius,
		APDuration:   int(base.Params.APDuration),
		RestDuration: int(base.Params.RestDuration),
		APThreshold:  base.Params.APThreshold,
		PatchRadius:  2,
		Seed:         42,
		GridPath:     "heart.grid",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "w", c.Width, "grid width")
	fs.IntVar(&c.Height, "h", c.Height, "grid height")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier for the window")
	fs.IntVar(&c.TPS, "tps", c.TPS, "render frames per second")
	fs.IntVar(&c.Workers, "workers", c.Workers, "update worker stripes per tick")
	fs.IntVar(&c.FrameTimeMS, "frame-time", c.FrameTimeMS, "minimum milliseconds per simulation tick")
	fs.IntVar(&c.SearchRadius, "radius", c.SearchRadius, "convolution kernel side length (even)")
	fs.IntVar(&c.APDuration, "ap-duration", c.APDuration, "action potential duration in ticks")
	fs.IntVar(&c.RestDuration, "rest-duration", c.RestDuration, "refractory duration in ticks")
	fs.Float64Var(&c.APThreshold, "ap-threshold", c.APThreshold, "neighbour excitation firing threshold")
	fs.IntVar(&c.PatchRadius, "patch", c.PatchRadius, "central pacemaker patch radius (-1 disables)")
	fs.Float64Var(&c.Fibrosis, "fibrosis", c.Fibrosis, "fraction of tissue seeded refractory at start")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for fibrosis scatter")
	fs.StringVar(&c.GridPath, "grid", c.GridPath, "path used by the in-app save/load keys")
	fs.StringVar(&c.LoadPath, "load", c.LoadPath, "grid dump to load at startup")
	fs.StringVar(&c.RecordPath, "record", c.RecordPath, "record an MJPEG AVI of the run to this path")
	fs.StringVar(&c.ChartPath, "chart", c.ChartPath, "write an activity chart PNG here on exit")
	fs.StringVar(&c.MonitorAddr, "monitor", c.MonitorAddr, "serve the websocket monitor on this address")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "log per-tick timing")
}

// CoreConfig converts the flag values into the engine configuration.
func (c *Config) CoreConfig() core.Config {
	return core.Config{
		Width:       c.Width,
		Height:      c.Height,
		Workers:     c.Workers,
		FrameTimeMS: c.FrameTimeMS,
		Params: core.Params{
			APDuration:   uint32(c.APDuration),
			RestDuration: uint32(c.RestDuration),
			APThreshold:  c.APThreshold,
			SearchRadius: c.SearchRadius,
		},
	}
}
