//go:build ebitenui

package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/pcl5c/core/pcl"
)

const (
	cellSize = 28
	cellGap  = 2
	cols     = 16
)

var (
	colorFree   = color.RGBA{40, 40, 40, 255}
	colorCached = color.RGBA{60, 140, 220, 255}
	colorLocked = color.RGBA{220, 90, 60, 255}
)

// tileInspector visualizes a PatternCache's slot occupancy as a grid,
// one cell per slot, colored by free/cached/locked state.
type tileInspector struct {
	cache *pcl.PatternCache
	rows  int
}

func newTileInspector(cache *pcl.PatternCache, slotCount int) *tileInspector {
	rows := (slotCount + cols - 1) / cols
	if rows < 1 {
		rows = 1
	}
	return &tileInspector{cache: cache, rows: rows}
}

// Layout implements ebiten.Game. A fixed logical size keeps the grid
// legible regardless of window resizing.
func (t *tileInspector) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cols * (cellSize + cellGap), t.rows * (cellSize + cellGap)
}

// Update implements ebiten.Game; the cache is read-only from here, so
// there is nothing to step each tick.
func (t *tileInspector) Update() error {
	return nil
}

// Draw implements ebiten.Game, painting one cell per cache slot.
func (t *tileInspector) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{10, 10, 10, 255})

	snapshot := t.cache.Snapshot()
	for i, slot := range snapshot {
		x := (i % cols) * (cellSize + cellGap)
		y := (i / cols) * (cellSize + cellGap)

		c := colorFree
		switch {
		case slot.Valid && slot.Locked:
			c = colorLocked
		case slot.Valid:
			c = colorCached
		}

		vector.DrawFilledRect(screen, float32(x), float32(y), cellSize, cellSize, c, false)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("bits used: %d", t.cache.BitsUsed()), 4, t.rows*(cellSize+cellGap)+2)
}

func runTileInspector(cache *pcl.PatternCache, slotCount int) error {
	ebiten.SetWindowTitle("pclview: pattern cache inspector")
	game := newTileInspector(cache, slotCount)
	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}

func main() {
	slots := flag.Int("slots", 64, "number of slots in the demo pattern cache")
	flag.Parse()

	cache := pcl.NewPatternCache(*slots, 1<<20)
	var first *pcl.PatternTile
	for i := 0; i < *slots/2; i++ {
		bits, w, h, err := pcl.GenerateShading((i * 7) % 100)
		if err != nil {
			log.Fatal(err)
		}
		tile := &pcl.PatternTile{TBits: bits, Width: w, Height: h, IsSimple: true}
		inserted := cache.Insert(pcl.PatternTileKey{PatternID: pcl.PatternID(i)}, tile)
		if i == 0 {
			first = inserted
		}
	}
	if first != nil {
		if err := cache.SetLock(first.ID(), true); err != nil {
			log.Fatal(err)
		}
	}

	if err := runTileInspector(cache, *slots); err != nil {
		log.Fatal(err)
	}
}
