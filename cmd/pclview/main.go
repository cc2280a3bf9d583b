package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pcl5c/core/cmd/internal/meter"
	"github.com/pcl5c/core/pcl"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

func initSDL() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return func() {}, fmt.Errorf("initSDL: unable to init sdl: %s", err)
	}
	return sdl.Quit, nil
}

// buildDemoPage drives it through a small fixed script exercising color
// setup, pattern fills, and raster graphics, so pclview has something to
// show without a tokenizer for the real command stream (out of scope for
// this core, see pcl.Command's doc comment).
func buildDemoPage(it *pcl.Interpreter, width, height int) error {
	cidPayload := []byte{byte(pcl.DeviceRGB), byte(pcl.IndexedByPlane), 3, 1, 1, 1}
	if err := it.ConfigureImageData(cidPayload); err != nil {
		return fmt.Errorf("ConfigureImageData: %s", err)
	}

	if err := it.SetForegroundFromSlot(1); err != nil {
		return fmt.Errorf("SetForegroundFromSlot: %s", err)
	}
	if err := it.SelectPatternType(1); err != nil {
		return fmt.Errorf("SelectPatternType solid white: %s", err)
	}
	if err := it.ResolveAndFillPattern(pcl.Rect{X0: 0, Y0: 0, X1: float64(width), Y1: float64(height)}, pcl.Point{}); err != nil {
		return fmt.Errorf("clear page: %s", err)
	}

	if err := it.SelectPatternType(2); err != nil {
		return fmt.Errorf("SelectPatternType shading: %s", err)
	}
	if err := it.SetCurrentPatternID(40); err != nil {
		return fmt.Errorf("SetCurrentPatternID shading: %s", err)
	}
	if err := it.ResolveAndFillPattern(pcl.Rect{X0: 40, Y0: 40, X1: 260, Y1: 200}, pcl.Point{}); err != nil {
		return fmt.Errorf("FillRect shading: %s", err)
	}

	if err := it.SelectPatternType(3); err != nil {
		return fmt.Errorf("SelectPatternType crosshatch: %s", err)
	}
	if err := it.SetCurrentPatternID(3); err != nil {
		return fmt.Errorf("SetCurrentPatternID crosshatch: %s", err)
	}
	if err := it.ResolveAndFillPattern(pcl.Rect{X0: 300, Y0: 40, X1: 520, Y1: 200}, pcl.Point{}); err != nil {
		return fmt.Errorf("FillRect crosshatch: %s", err)
	}

	if err := it.SetRasterSourceWidth(200); err != nil {
		return fmt.Errorf("SetRasterSourceWidth: %s", err)
	}
	if err := it.SetRasterSourceHeight(60); err != nil {
		return fmt.Errorf("SetRasterSourceHeight: %s", err)
	}
	if err := it.SetCompressionMode(pcl.ModeUncompressed); err != nil {
		return fmt.Errorf("SetCompressionMode: %s", err)
	}

	params := pcl.GraphicsModeParams{
		Mode:        pcl.NoScaleLeftMargin,
		CurPoint:    pcl.Point{X: 40, Y: 260},
		LogicalClip: pcl.Rect{X0: 0, Y0: 0, X1: float64(width), Y1: float64(height)},
		ToRasterSpace: func(rot int, p pcl.Point) pcl.Point {
			return p
		},
	}
	if err := it.StartRasterGraphics(params); err != nil {
		return fmt.Errorf("StartRasterGraphics: %s", err)
	}
	row := make([]byte, (200+7)/8)
	for i := range row {
		if i%2 == 0 {
			row[i] = 0xAA
		} else {
			row[i] = 0x55
		}
	}

	rowMeter := meter.New(60)
	for y := 0; y < 60; y++ {
		start := time.Now()
		if err := it.TransferRow(row); err != nil {
			return fmt.Errorf("TransferRow: %s", err)
		}
		rowMeter.Record(time.Since(start))
	}
	if _, err := it.EndGraphicsFull(); err != nil {
		return fmt.Errorf("EndGraphicsFull: %s", err)
	}
	fmt.Fprintf(os.Stderr, "pclview: raster row throughput: %.3fms/row (%d rows/s)\n", rowMeter.Ms(), rowMeter.Tps())

	return nil
}

func run(width, height int, previewPath string) error {
	quitSDL, err := initSDL()
	if err != nil {
		return err
	}
	defer quitSDL()

	window, err := sdl.CreateWindow("pclview", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("pclview: unable to create window: %s", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("pclview: unable to create renderer: %s", err)
	}
	defer renderer.Destroy()

	page, err := NewPageRenderer(renderer, width, height)
	if err != nil {
		return err
	}
	defer page.Destroy()

	it := pcl.NewInterpreter(page)
	if err := buildDemoPage(it, width, height); err != nil {
		return fmt.Errorf("pclview: unable to build demo page: %s", err)
	}

	if previewPath != "" {
		buf, w, h := page.RGBA()
		if err := savePreview(previewPath, buf, w, h, 512); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "pclview: wrote preview to %s\n", previewPath)
	}

	dst := &sdl.Rect{W: int32(width), H: int32(height)}
	for {
		for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
			switch e := evt.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYUP && e.Keysym.Sym == sdl.K_ESCAPE {
					return nil
				}
			}
		}

		if err := renderer.SetDrawColor(0, 0, 0, 255); err != nil {
			return err
		}
		if err := renderer.Clear(); err != nil {
			return err
		}
		if err := page.Present(dst); err != nil {
			return err
		}
		renderer.Present()
	}
}

func main() {
	width := flag.Int("width", 640, "demo page width in pixels")
	height := flag.Int("height", 480, "demo page height in pixels")
	preview := flag.String("preview", "", "write a PNG preview of the demo page to this path")
	flag.Parse()

	if err := run(*width, *height, *preview); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
