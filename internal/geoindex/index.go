package geoindex

import (
	"sync"

	"github.com/afrodite-backend/corectl/internal/model"
)

// ProfileLink is the small payload the index stores per account per cell —
// enough to build a search result card without a profile-store round trip.
type ProfileLink struct {
	AccountID model.AccountId
	Age       int32
}

// cellProfiles holds every profile currently located in one cell.
type cellProfiles struct {
	byAccount map[model.AccountId]ProfileLink
}

// Index is the location index: a Grid for coordinate math, an
// occupancyBitmap for fast empty-cell skipping, and a profiles map guarded
// by a single coarse RWMutex (spec.md §4.C "Profiles map... guarded by a
// single coarse read-write lock").
type Index struct {
	grid *Grid
	bits *occupancyBitmap

	mu       sync.RWMutex
	profiles map[Cell]*cellProfiles
}

// New builds an Index over the given world rectangle.
func New(corners Corners) *Index {
	grid := NewGrid(corners)
	return &Index{
		grid:     grid,
		bits:     newOccupancyBitmap(grid.Width(), grid.Height()),
		profiles: make(map[Cell]*cellProfiles),
	}
}

// Grid exposes the coordinate-math grid backing this index.
func (idx *Index) Grid() *Grid { return idx.grid }

// CellFor maps a location to its grid cell.
func (idx *Index) CellFor(loc model.Location) Cell {
	return idx.grid.ToCell(loc.Latitude, loc.Longitude)
}

// Upsert inserts or moves a profile's link to newCell, removing it from
// oldCell first if oldCell is non-nil. Mutations hold the write lock only
// across the hash-map update; bitmap flips happen after releasing it
// (spec.md §4.C).
func (idx *Index) Upsert(oldCell *Cell, newCell Cell, link ProfileLink) {
	idx.mu.Lock()
	var clearOld bool
	if oldCell != nil {
		if cp, ok := idx.profiles[*oldCell]; ok {
			delete(cp.byAccount, link.AccountID)
			if len(cp.byAccount) == 0 {
				delete(idx.profiles, *oldCell)
				clearOld = true
			}
		}
	}

	cp, ok := idx.profiles[newCell]
	var flagNew bool
	if !ok {
		cp = &cellProfiles{byAccount: make(map[model.AccountId]ProfileLink)}
		idx.profiles[newCell] = cp
		flagNew = true
	}
	cp.byAccount[link.AccountID] = link
	idx.mu.Unlock()

	// Insert into the map happens-before Set (above); flag after releasing
	// the lock, per spec.md §4.C's publish order.
	if flagNew {
		idx.bits.Set(newCell)
	}
	if clearOld && oldCell != nil && *oldCell != newCell {
		idx.bits.Clear(*oldCell)
	}
}

// Remove deletes a profile's link from c.
func (idx *Index) Remove(c Cell, accountID model.AccountId) {
	idx.mu.Lock()
	cp, ok := idx.profiles[c]
	if !ok {
		idx.mu.Unlock()
		return
	}
	delete(cp.byAccount, accountID)
	empty := len(cp.byAccount) == 0
	if empty {
		delete(idx.profiles, c)
	}
	idx.mu.Unlock()

	if empty {
		idx.bits.Clear(c)
	}
}

// linksAt returns a snapshot of the profiles at c, or nil if c is (or looks)
// empty. Consults the occupancy bitmap first so a genuinely empty cell
// never touches the map under lock (spec.md §4.C).
func (idx *Index) linksAt(c Cell) []ProfileLink {
	if !idx.bits.IsSet(c) {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	cp, ok := idx.profiles[c]
	if !ok {
		return nil
	}
	out := make([]ProfileLink, 0, len(cp.byAccount))
	for _, l := range cp.byAccount {
		out = append(out, l)
	}
	return out
}
