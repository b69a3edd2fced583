package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 256

// keyedMutex serializes work per visit key while letting distinct keys run in
// parallel. Striping keeps the lock table a fixed size; two keys hashing to
// the same stripe only cost an occasional needless wait, never a lost update.
type keyedMutex struct {
	stripes [lockStripes]sync.Mutex
}

func (m *keyedMutex) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	mu := &m.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu
}
