package geoindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCorners() Corners {
	return Corners{
		LatTopLeft:     10.0,
		LonTopLeft:     0.0,
		LatBottomRight: 0.0,
		LonBottomRight: 10.0,
		CellSquareKm:   255, // nearest to no exact zoom-table entry
	}
}

func TestGridReservesBorderOnEveryEdge(t *testing.T) {
	g := NewGrid(testCorners())
	assert.GreaterOrEqual(t, g.Width(), 3)
	assert.GreaterOrEqual(t, g.Height(), 3)
}

func TestToCellClampsOutOfRangeCoordinates(t *testing.T) {
	g := NewGrid(testCorners())

	topLeft := g.ToCell(10.0, 0.0)
	bottomRight := g.ToCell(0.0, 10.0)

	assert.True(t, g.InBounds(topLeft))
	assert.True(t, g.InBounds(bottomRight))

	// Coordinates far outside the rectangle must clamp into bounds rather
	// than producing a cell outside the grid.
	farAway := g.ToCell(89.0, 179.0)
	assert.True(t, g.InBounds(farAway))
}

func TestNearestZoomLevelPicksClosestTileLength(t *testing.T) {
	level, tileKm := nearestZoomLevel(305.0)
	assert.Equal(t, uint8(9), level)
	assert.InDelta(t, 305.0, tileKm, 0.01)
}
