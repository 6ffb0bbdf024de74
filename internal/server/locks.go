package server

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLocks serialises requests per session id without tracking ids.
// Distinct sessions may share a stripe.
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLocks) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
