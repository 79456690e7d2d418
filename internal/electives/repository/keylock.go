package repository

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/architect/elective-advisor/internal/electives/models"
)

const lockStripes = 64

// keyLock serializes work per attempt key within this process. Keys hash onto
// a fixed set of stripes, so unrelated keys may occasionally share a stripe.
type keyLock struct {
	stripes [lockStripes]sync.Mutex
}

var attemptLocks keyLock

// Lock blocks until key's stripe is held and returns its release func.
func (l *keyLock) Lock(key models.AttemptKey) func() {
	m := &l.stripes[stripe(key)]
	m.Lock()
	return m.Unlock
}

func stripe(key models.AttemptKey) uint32 {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%d\x00%s\x00%s", key.UserID, key.Elective, key.ActivityName)
	return h.Sum32() % lockStripes
}
