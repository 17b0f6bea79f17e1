//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"heart-ca/internal/app"
	"heart-ca/internal/codec"
	"heart-ca/internal/core"
	"heart-ca/internal/engine"
	"heart-ca/internal/record"
	"heart-ca/internal/remote"
	"heart-ca/internal/stats"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	var grid *core.Grid
	var err error
	if cfg.LoadPath != "" {
		grid, err = codec.LoadFile(cfg.LoadPath)
		if err != nil {
			log.Fatalf("load %s: %v", cfg.LoadPath, err)
		}
		cfg.Width = grid.Width
		cfg.Height = grid.Height
	} else {
		grid, err = core.NewGrid(cfg.Width, cfg.Height, []core.Orientation{{XDir: 1}})
		if err != nil {
			log.Fatalf("grid: %v", err)
		}
	}

	eng, err := engine.New(grid, cfg.CoreConfig())
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	eng.SetVerbose(cfg.Verbose)

	if cfg.LoadPath == "" {
		if cfg.PatchRadius >= 0 {
			eng.SeedPacemakerPatch(cfg.Width/2, cfg.Height/2, cfg.PatchRadius)
		}
		if cfg.Fibrosis > 0 {
			eng.SeedFibrosis(cfg.Fibrosis, cfg.Seed)
		}
	}

	var collector *stats.Collector
	if cfg.ChartPath != "" {
		collector = stats.NewCollector()
		eng.SetCollector(collector)
	}

	var rec *record.Recorder
	if cfg.RecordPath != "" {
		rec, err = record.NewRecorder(cfg.RecordPath, cfg.Width, cfg.Height, cfg.TPS)
		if err != nil {
			log.Fatalf("record: %v", err)
		}
	}

	if cfg.MonitorAddr != "" {
		srv := remote.NewServer(eng, 10)
		go func() {
			if err := srv.ListenAndServe(cfg.MonitorAddr); err != nil {
				log.Printf("monitor: %v", err)
			}
		}()
		log.Printf("monitor listening on %s", cfg.MonitorAddr)
	}

	go eng.Run()

	game := app.New(eng, cfg, rec)
	ebiten.SetWindowTitle("heart-ca")
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(cfg.Width*cfg.Scale, cfg.Height*cfg.Scale)

	runErr := ebiten.RunGame(game)
	eng.Quit()

	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("finalize recording: %v", err)
		}
	}
	if collector != nil && collector.Len() >= 2 {
		if err := collector.SaveChart(cfg.ChartPath); err != nil {
			log.Printf("chart: %v", err)
		} else {
			log.Printf("wrote activity chart to %s", cfg.ChartPath)
		}
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatal(runErr)
	}
}
