// simpreview loads a level PNG, steps the real GPU pipeline a configured
// number of frames, and writes out the resulting world snapshot as a PNG.
// With -live it instead opens a window and steps the pipeline once per
// rendered frame, drawing each material id as its table color.
//
// Usage: go run ./cmd/simpreview -level level.png -frames 120 -out out.png
package main

import (
	"flag"
	"fmt"
	"image/color"
	"net/http"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/gurbano/sandymarton/sim"
	"github.com/gurbano/sandymarton/sim/config"
	"github.com/gurbano/sandymarton/sim/emitter"
	"github.com/gurbano/sandymarton/sim/gpu"
	"github.com/gurbano/sandymarton/sim/inspect"
	"github.com/gurbano/sandymarton/sim/level"
	"github.com/gurbano/sandymarton/sim/material"
)

func main() {
	levelPath := flag.String("level", "", "Path to a level PNG (omitted: start from an empty world)")
	configPath := flag.String("config", "", "Path to a config YAML overlay (omitted: use embedded defaults)")
	outPath := flag.String("out", "simpreview_out.png", "Output PNG path (ignored with -live)")
	frames := flag.Int("frames", 120, "Number of frames to step before writing the snapshot")
	live := flag.Bool("live", false, "Open a window and preview the simulation interactively")
	debug := flag.Bool("debug", false, "Enable debug-level logging")
	notifyAddr := flag.String("notify-addr", "", "If set, serve a frame-notification websocket at this address (path /ws)")
	flag.Parse()

	logger := sim.NewDefaultLogger("simpreview", *debug)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simpreview: %v\n", err)
		os.Exit(1)
	}

	materials, err := material.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simpreview: loading material table: %v\n", err)
		os.Exit(1)
	}

	device, err := gpu.NewDevice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simpreview: acquiring GPU device: %v\n", err)
		os.Exit(1)
	}

	worldSize := uint32(cfg.WorldSize)
	manager, err := gpu.NewManager(device, worldSize, materials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simpreview: building GPU manager: %v\n", err)
		os.Exit(1)
	}
	defer manager.Release()

	mirror := gpu.NewMirror(int(worldSize), int(worldSize))
	if *levelPath != "" {
		cells, err := level.LoadFile(*levelPath, int(worldSize), int(worldSize))
		if err != nil {
			fmt.Fprintf(os.Stderr, "simpreview: loading level: %v\n", err)
			os.Exit(1)
		}
		mirror.LoadFull(cells)
	}

	emitters := emitter.NewTable()
	driver := gpu.NewDriver(manager, materials, emitters, cfg, mirror, 1, logger)

	profiler := gpu.NewProfiler()
	driver.Profiler = profiler

	if *notifyAddr != "" {
		broadcaster := inspect.NewBroadcaster(logger)
		defer broadcaster.Close()
		driver.OnFrameComplete = func(frame uint64) {
			fps := 0.0
			if driver.Clock.Dt > 0 {
				fps = 1.0 / driver.Clock.Dt
			}
			broadcaster.Publish(inspect.FrameSummary{Frame: frame, FPS: fps, AtUnix: time.Now().Unix()})
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", broadcaster)
		go func() {
			if err := http.ListenAndServe(*notifyAddr, mux); err != nil {
				logger.Warnf("frame-notification server stopped: %v", err)
			}
		}()
		logger.Infof("serving frame notifications on ws://%s/ws", *notifyAddr)
	}

	if *live {
		runLive(driver, mirror, materials, worldSize)
		return
	}

	for i := 0; i < *frames; i++ {
		driver.Tick()
	}

	cells := mirrorCells(mirror, int(worldSize))
	if err := level.SaveFile(*outPath, cells, int(worldSize), int(worldSize)); err != nil {
		fmt.Fprintf(os.Stderr, "simpreview: writing snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("simpreview: wrote %d frames to %s (%dx%d)\n", *frames, *outPath, worldSize, worldSize)

	if heatCells, err := driver.HeatSnapshot(); err != nil {
		logger.Warnf("reading back heat snapshot: %v", err)
	} else {
		fmt.Printf("simpreview: temperature range %.1fK\n", gpu.TemperatureRange(heatCells))
	}

	fmt.Print(profiler.Stats())
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.MustLoadDefault(), nil
	}
	return config.LoadFile(path)
}

func mirrorCells(m *gpu.Mirror, size int) []sim.Cell {
	cells := make([]sim.Cell, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			cells[y*size+x] = m.At(x, y)
		}
	}
	return cells
}

// runLive opens a window, steps the driver once per rendered frame, and
// blits each world cell as its material's table color into a texture sized
// to the world, then stretches that texture to fill the window.
func runLive(driver interface{ Tick() }, mirror *gpu.Mirror, materials *material.Table, worldSize uint32) {
	const winW, winH = 960, 960
	rl.InitWindow(winW, winH, "simpreview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	size := int32(worldSize)
	img := rl.GenImageColor(int(size), int(size), rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, worldSize*worldSize)
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(size), Height: float32(size)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: winW, Height: winH}

	for !rl.WindowShouldClose() {
		driver.Tick()

		for y := 0; y < int(worldSize); y++ {
			for x := 0; x < int(worldSize); x++ {
				cell := mirror.At(x, y)
				entry := materials.Entry(cell.Material)
				pixels[y*int(worldSize)+x] = color.RGBA{R: entry.ColorR, G: entry.ColorG, B: entry.ColorB, A: entry.ColorA}
			}
		}
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		rl.DrawTexturePro(texture, src, dst, rl.Vector2{X: 0, Y: 0}, 0, rl.White)
		rl.EndDrawing()
	}
}
