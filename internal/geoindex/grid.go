// Package geoindex answers "are there profiles within this rectangle?" in
// time proportional to the rectangle's cell area, and offers a spiral
// iterator over occupied cells starting from a given cell (spec.md §4.C).
// Grounded on original_source/crates/server_data/src/index/coordinates.rs
// for the slippy-tile grid math; the occupancy bitmap and spiral iterator
// are this package's own synthesis of spec.md §4.C's description, since the
// original's cell-bitmap/iterator module was not part of the retrieval
// pack (see DESIGN.md).
package geoindex

import (
	"math"
)

// zoomLevel pairs an OpenStreetMap zoom level with its tile side length in
// kilometers, taken from the teacher's source data (GitHub Copilot-sourced
// table in coordinates.rs).
type zoomLevel struct {
	level      uint8
	tileKm     float64
}

var zoomLevels = []zoomLevel{
	{9, 305.0},
	{10, 153.0},
	{11, 76.5},
	{12, 38.2},
	{13, 19.1},
	{14, 9.55},
	{15, 4.77},
	{16, 2.39},
	{17, 1.19},
}

func nearestZoomLevel(squareKm float64) (uint8, float64) {
	best := zoomLevels[0]
	bestDist := math.Abs(squareKm - best.tileKm)
	for _, z := range zoomLevels[1:] {
		d := math.Abs(squareKm - z.tileKm)
		if d < bestDist {
			bestDist = d
			best = z
		}
	}
	return best.level, best.tileKm
}

func tileX(longitudeDeg float64, zoom uint8) int {
	n := math.Pow(2, float64(zoom))
	return int(n * ((longitudeDeg + 180.0) / 360.0))
}

func tileY(latitudeDeg float64, zoom uint8) int {
	n := math.Pow(2, float64(zoom))
	latRad := latitudeDeg * math.Pi / 180.0
	y := n * (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0
	return int(y)
}

// Corners is the world rectangle the grid tiles, per spec.md §4.C.
type Corners struct {
	LatTopLeft      float64
	LonTopLeft      float64
	LatBottomRight  float64
	LonBottomRight  float64
	CellSquareKm    float64
}

// Grid converts latitude/longitude into Cell coordinates on a tiled
// rectangle. The cell count is derived from Corners and CellSquareKm, never
// configured directly (spec.md §4.C).
type Grid struct {
	corners Corners
	zoom    uint8
	tileKm  float64

	width  int // includes the one-cell border on each edge
	height int

	xMaxTile int
	yMaxTile int
	xStart   int
	yStart   int
}

// NewGrid builds a Grid from the world rectangle and the nominal cell size.
// A one-cell border is reserved empty on every edge so the spiral iterator
// needs no bounds checks on neighbour probes (spec.md §4.C).
func NewGrid(c Corners) *Grid {
	zoom, tileKm := nearestZoomLevel(c.CellSquareKm)

	xMaxTile := tileX(c.LonBottomRight, zoom)
	yMaxTile := tileY(c.LatBottomRight, zoom)
	xStart := tileX(c.LonTopLeft, zoom)
	yStart := tileY(c.LatTopLeft, zoom)

	innerWidth := xMaxTile - xStart
	if innerWidth < 1 {
		innerWidth = 1
	}
	innerHeight := yMaxTile - yStart
	if innerHeight < 1 {
		innerHeight = 1
	}

	return &Grid{
		corners:  c,
		zoom:     zoom,
		tileKm:   tileKm,
		width:    innerWidth + 2,
		height:   innerHeight + 2,
		xMaxTile: xMaxTile,
		yMaxTile: yMaxTile,
		xStart:   xStart,
		yStart:   yStart,
	}
}

// Width is the grid's cell count along x, including the one-cell border on
// each side.
func (g *Grid) Width() int { return g.width }

// Height is the grid's cell count along y, including the one-cell border on
// each side.
func (g *Grid) Height() int { return g.height }

// ZoomLevel reports the slippy-tile zoom level nearest the configured cell
// size.
func (g *Grid) ZoomLevel() uint8 { return g.zoom }

// TileSideLengthKm reports the actual tile side length at ZoomLevel.
func (g *Grid) TileSideLengthKm() float64 { return g.tileKm }

// Cell identifies one grid cell. The zero value is not a valid cell inside
// the reserved border.
type Cell struct {
	X, Y int
}

// ToCell maps a latitude/longitude pair to its grid cell, clamped to the
// interior (the one-cell border is reserved, matching the teacher's own
// clamp-to-[1, last_index] discipline in IndexArea::new).
func (g *Grid) ToCell(latitude, longitude float64) Cell {
	latitude = clamp(latitude, g.corners.LatBottomRight, g.corners.LatTopLeft)
	longitude = clamp(longitude, g.corners.LonTopLeft, g.corners.LonBottomRight)

	xTile := tileX(longitude, g.zoom)
	yTile := tileY(latitude, g.zoom)

	x := g.xMaxTile - xTile
	y := g.yMaxTile - yTile

	x = clampInt(x, 0, g.width-1-2) // interior width excludes the two border cells
	y = clampInt(y, 0, g.height-1-2)

	// Shift past the reserved left/top border cell, then mirror as the
	// teacher's calculate_index_x_key/calculate_index_y_key do (x_max - x).
	innerXMax := g.width - 3
	innerYMax := g.height - 3
	return Cell{X: 1 + (innerXMax - x), Y: 1 + (innerYMax - y)}
}

// InBounds reports whether c lies within the grid, including its border.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// LastX is the last valid interior x index (width-2, the border excluded).
func (g *Grid) LastX() int { return g.width - 2 }

// LastY is the last valid interior y index (height-2, the border excluded).
func (g *Grid) LastY() int { return g.height - 2 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
