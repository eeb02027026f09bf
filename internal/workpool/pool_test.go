package workpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(2)
	var concurrent, maxSeen atomic.Int64
	release := make(chan struct{})

	for i := 0; i < 5; i++ {
		p.Submit(func() {
			n := concurrent.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			<-release
			concurrent.Add(-1)
		})
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	p.Wait()

	assert.LessOrEqual(t, maxSeen.Load(), int64(2))
}

func TestPoolHealthReportsSize(t *testing.T) {
	p := New(3)
	h := p.Health()
	assert.Equal(t, 3, h.Size)
	assert.Equal(t, int64(0), h.Active)
}
