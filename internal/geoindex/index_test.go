package geoindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrodite-backend/corectl/internal/model"
)

func TestUpsertThenRemoveClearsOccupancyBit(t *testing.T) {
	idx := New(testCorners())
	accountID := model.NewAccountId()
	cell := Cell{X: 2, Y: 2}

	idx.Upsert(nil, cell, ProfileLink{AccountID: accountID, Age: 25})
	assert.True(t, idx.bits.IsSet(cell))

	links := idx.linksAt(cell)
	require.Len(t, links, 1)
	assert.Equal(t, accountID, links[0].AccountID)

	idx.Remove(cell, accountID)
	assert.False(t, idx.bits.IsSet(cell))
	assert.Nil(t, idx.linksAt(cell))
}

func TestUpsertMovesBetweenCellsClearingOldWhenEmpty(t *testing.T) {
	idx := New(testCorners())
	accountID := model.NewAccountId()
	oldCell := Cell{X: 2, Y: 2}
	newCell := Cell{X: 3, Y: 3}

	idx.Upsert(nil, oldCell, ProfileLink{AccountID: accountID})
	idx.Upsert(&oldCell, newCell, ProfileLink{AccountID: accountID})

	assert.False(t, idx.bits.IsSet(oldCell))
	assert.True(t, idx.bits.IsSet(newCell))
}

func TestUpsertKeepsOldCellFlaggedWhenOtherProfileRemains(t *testing.T) {
	idx := New(testCorners())
	accountA := model.NewAccountId()
	accountB := model.NewAccountId()
	oldCell := Cell{X: 2, Y: 2}
	newCell := Cell{X: 3, Y: 3}

	idx.Upsert(nil, oldCell, ProfileLink{AccountID: accountA})
	idx.Upsert(nil, oldCell, ProfileLink{AccountID: accountB})

	idx.Upsert(&oldCell, newCell, ProfileLink{AccountID: accountA})

	assert.True(t, idx.bits.IsSet(oldCell), "accountB's link must keep the old cell flagged")
	assert.True(t, idx.bits.IsSet(newCell))
}

func TestIteratorSkipsEmptyCellsAndFindsOccupiedOne(t *testing.T) {
	idx := New(testCorners())
	accountID := model.NewAccountId()
	target := Cell{X: 4, Y: 4}
	idx.Upsert(nil, target, ProfileLink{AccountID: accountID})

	it := NewIterator(idx, NewIteratorState(1, 1))
	var found bool
	for i := 0; i < idx.Grid().Width()*idx.Grid().Height()*2 && !found; i++ {
		links, ok := it.Next()
		if !ok {
			break
		}
		for _, l := range links {
			if l.AccountID == accountID {
				found = true
			}
		}
	}
	assert.True(t, found, "spiral walk must eventually reach the occupied cell")
}

func TestIteratorResetRebuildsAtNewOrigin(t *testing.T) {
	idx := New(testCorners())
	it := NewIterator(idx, NewIteratorState(5, 5))
	it.Next()

	it.Reset(1, 1)
	s := it.State()
	assert.Equal(t, 1, s.X)
	assert.Equal(t, 1, s.Y)
	assert.Equal(t, 0, s.Ring)
}
