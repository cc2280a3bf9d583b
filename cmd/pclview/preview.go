package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// savePreview scales the page buffer (RGBA8888, width x height) down to
// maxDim on its longest side and writes it as a PNG, so the accumulated
// page can be inspected without an SDL window.
func savePreview(path string, buf []byte, width, height, maxDim int) error {
	src := &image.RGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}

	dw, dh := width, height
	if dw > dh && dw > maxDim {
		dh = dh * maxDim / dw
		dw = maxDim
	} else if dh >= dw && dh > maxDim {
		dw = dw * maxDim / dh
		dh = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pclview: unable to create preview file: %s", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("pclview: unable to encode preview png: %s", err)
	}
	return nil
}
