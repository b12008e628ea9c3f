// Package level imports and exports world snapshots as PNG images: the
// material_id in R, velocity in G/B and aux in A, exactly W's own
// texel layout, so a level file is byte-identical to a GPU readback of W.
package level

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/gurbano/sandymarton/sim"
)

// Load decodes a level PNG into a row-major slice of Cells sized to width x
// height. A source image whose dimensions don't match is nearest-neighbor
// resampled rather than rejected, so a level authored at one resolution can
// seed a world configured at another.
func Load(r io.Reader, width, height int) ([]sim.Cell, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("level: decoding png: %w", err)
	}

	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		resized := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(resized, resized.Bounds(), img, b, draw.Over, nil)
		img = resized
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	cells := make([]sim.Cell, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := rgba.PixOffset(x, y)
			cells[y*width+x] = sim.Cell{
				Material: sim.MaterialID(rgba.Pix[off+0]),
				VelX:     rgba.Pix[off+1],
				VelY:     rgba.Pix[off+2],
				Aux:      rgba.Pix[off+3],
			}
		}
	}
	return cells, nil
}

// LoadFile opens path and decodes it via Load.
func LoadFile(path string, width, height int) ([]sim.Cell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("level: opening %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, width, height)
}

// Save encodes width x height cells as a PNG, one texel per pixel in W's
// own channel layout, to w.
func Save(w io.Writer, cells []sim.Cell, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(c.Material), G: c.VelX, B: c.VelY, A: c.Aux})
		}
	}
	return png.Encode(w, img)
}

// SaveFile writes cells to path as a PNG via Save.
func SaveFile(path string, cells []sim.Cell, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("level: creating %s: %w", path, err)
	}
	defer f.Close()
	return Save(f, cells, width, height)
}

// SaveHeat encodes a heat/force snapshot as a PNG in H's own channel layout
// (temperature low/high byte in R/G, force in B/A).
func SaveHeat(w io.Writer, cells []sim.HeatCell, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: c.TempLo, G: c.TempHi, B: c.ForceX, A: c.ForceY})
		}
	}
	return png.Encode(w, img)
}

// SaveHeatFile writes a heat/force snapshot to path as a PNG.
func SaveHeatFile(path string, cells []sim.HeatCell, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("level: creating %s: %w", path, err)
	}
	defer f.Close()
	return SaveHeat(f, cells, width, height)
}
