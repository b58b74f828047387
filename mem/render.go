// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/fogleman/gg"
)

const (
	mapColumnWidth = 280
	mapMargin      = 20
	mapHeader      = 40
	mapBoxMin      = 36
	mapBoxMax      = 160
)

var mapColors = map[Content]string{
	Stack:       "#e4572e",
	Text:        "#17bebb",
	UnwindIndex: "#76b041",
	Storage:     "#ffc914",
	Apps:        "#a06cd5",
	Relocate:    "#2e86ab",
	Zero:        "#8d99ae",
	AppMemory:   "#f4a259",
}

type mapBox struct {
	label string
	addr  Range
	color string
}

// boxHeight scales a section on a logarithmic axis so that both a 16 byte
// placeholder and a multi-megabyte application memory remain legible.
func boxHeight(size uint64) float64 {
	h := mapBoxMin + 8*math.Log2(float64(size)+1)
	return math.Min(h, mapBoxMax)
}

// RenderMap draws the layout as a PNG memory map, one column per region,
// sections in ascending address order from the top.
func RenderMap(w io.Writer, l *Layout) error {
	regions := l.Board.Regions()
	columns := make([][]mapBox, len(regions))
	height := 0.0

	for i, r := range regions {
		for _, sec := range l.Sections {
			if sec.Region == r.Name {
				columns[i] = append(columns[i], mapBox{sec.Name, sec.Addr, mapColors[sec.Content]})
			}

			if sec.DualMapped() && sec.Load == r.Name {
				columns[i] = append(columns[i], mapBox{sec.Name + " (load)", sec.LoadRange(), mapColors[sec.Content]})
			}
		}

		sort.SliceStable(columns[i], func(a, b int) bool {
			return columns[i][a].addr.Start < columns[i][b].addr.Start
		})

		h := 0.0

		for _, box := range columns[i] {
			h += boxHeight(box.addr.Size())
		}

		height = math.Max(height, h)
	}

	width := float64(len(regions)*(mapColumnWidth+mapMargin) + mapMargin)
	dc := gg.NewContext(int(width), int(height+mapHeader+2*mapMargin))

	dc.SetHexColor("#ffffff")
	dc.Clear()

	for i, r := range regions {
		x := float64(mapMargin + i*(mapColumnWidth+mapMargin))
		y := float64(mapMargin + mapHeader)

		dc.SetHexColor("#000000")
		dc.DrawStringAnchored(fmt.Sprintf("%s (%s) %s", r.Name, r.Perm, Range{r.Origin, r.End()}), x, mapMargin, 0, 1)

		for _, box := range columns[i] {
			h := boxHeight(box.addr.Size())

			dc.SetHexColor(box.color)
			dc.DrawRectangle(x, y, mapColumnWidth, h)
			dc.Fill()

			dc.SetHexColor("#000000")
			dc.SetLineWidth(1)
			dc.DrawRectangle(x, y, mapColumnWidth, h)
			dc.Stroke()

			dc.DrawStringAnchored(box.label, x+6, y+h/2-7, 0, 0.5)
			dc.DrawStringAnchored(fmt.Sprintf("%s %d", box.addr, box.addr.Size()), x+6, y+h/2+7, 0, 0.5)

			y += h
		}
	}

	return dc.EncodePNG(w)
}
