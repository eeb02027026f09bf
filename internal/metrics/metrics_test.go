package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotReflectsIncrements(t *testing.T) {
	r := New()
	r.PushSendsAttempted.Add(3)
	r.PushSendsSucceeded.Add(2)
	r.ModerationItemsEscalated.Add(1)

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap.PushSendsAttempted)
	assert.Equal(t, int64(2), snap.PushSendsSucceeded)
	assert.Equal(t, int64(1), snap.ModerationItemsEscalated)
	assert.Equal(t, int64(0), snap.ContentUploadsRejected)
}
