// Package archive persists elements drained from a queue into a
// pebble store. Each element gets a ksuid key, so iteration order is
// the drain order.
package archive

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/mmqueue/pkg/queue"
)

// Archive is a durable sink for queue elements.
type Archive struct {
	db *pebble.DB

	mu   sync.Mutex
	last ksuid.KSUID // most recent key issued by Put
}

// Open opens (creating if needed) the archive at dir.
func Open(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", dir, err)
	}
	return &Archive{db: db}, nil
}

// Put stores one element and returns its key. Keys issued by one
// Archive strictly increase, even within the same second.
func (a *Archive) Put(data []byte) (ksuid.KSUID, error) {
	a.mu.Lock()
	id := ksuid.New()
	if ksuid.Compare(id, a.last) <= 0 {
		id = a.last.Next()
	}
	a.last = id
	a.mu.Unlock()

	if err := a.db.Set(id.Bytes(), data, pebble.NoSync); err != nil {
		return ksuid.Nil, err
	}
	return id, nil
}

// Get returns the element stored under id.
func (a *Archive) Get(id ksuid.KSUID) ([]byte, error) {
	data, closer, err := a.db.Get(id.Bytes())
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Delete removes the element stored under id.
func (a *Archive) Delete(id ksuid.KSUID) error {
	return a.db.Delete(id.Bytes(), pebble.NoSync)
}

// Keys returns every stored key in insertion order.
func (a *Archive) Keys() ([]ksuid.KSUID, error) {
	iter, err := a.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("archive: malformed key: %w", err)
		}
		keys = append(keys, id)
	}
	return keys, iter.Error()
}

// Drain dequeues until the queue reports empty, storing every element.
// Returns the number of elements archived.
func (a *Archive) Drain(q *queue.Queue) (int, error) {
	archived := 0
	for {
		data, err := q.Dequeue()
		if errors.Is(err, queue.ErrEmpty) {
			return archived, nil
		}
		if err != nil {
			return archived, err
		}
		if _, err := a.Put(data); err != nil {
			return archived, err
		}
		archived++
	}
}

// Close flushes and closes the store.
func (a *Archive) Close() error {
	if err := a.db.Flush(); err != nil {
		a.db.Close()
		return err
	}
	return a.db.Close()
}
