// Package history persists rendered messages in a local PebbleDB store so
// a channel's scrollback can be shown before the server history arrives.
// It is a read cache only; nothing here queues outbound sends.
package history

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble/v2"

	"go-chat-cli/internal/api"
)

// Store keys messages as 4-byte big-endian channel id + 8-byte big-endian
// sequence number, so one iterator range covers one channel in insertion
// order.
type Store struct {
	db   *pebble.DB
	mu   sync.Mutex
	next map[int]uint64
}

// Open opens (or creates) the store under dir. An empty dir yields a nil
// Store; every method is nil-safe, so callers don't branch on it.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, next: make(map[int]uint64)}

	// Discover per-channel next sequence by scanning the last key of each
	// channel range.
	it, err := db.NewIter(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	defer func() { _ = it.Close() }()
	for it.First(); it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 12 {
			continue
		}
		ch := int(binary.BigEndian.Uint32(key[:4]))
		seq := binary.BigEndian.Uint64(key[4:])
		if seq >= s.next[ch] {
			s.next[ch] = seq + 1
		}
	}
	return s, nil
}

// Append records one message under its channel.
func (s *Store) Append(channelID int, m api.Message) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := makeKey(channelID, s.next[channelID])
	s.next[channelID]++
	val, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Set(key, val, pebble.Sync)
}

// Replace drops a channel's cached scrollback and stores msgs in order.
// Called when a fresh server history lands, so the cache tracks the
// authoritative list instead of accumulating duplicates.
func (s *Store) Replace(channelID int, msgs []api.Message) error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := channelBounds(channelID)
	if err := s.db.DeleteRange(lo, hi, pebble.Sync); err != nil {
		return err
	}
	s.next[channelID] = 0

	batch := s.db.NewBatch()
	for _, m := range msgs {
		val, err := json.Marshal(m)
		if err != nil {
			continue
		}
		if err := batch.Set(makeKey(channelID, s.next[channelID]), val, nil); err != nil {
			_ = batch.Close()
			return err
		}
		s.next[channelID]++
	}
	return batch.Commit(pebble.Sync)
}

// Recent loads the last limit messages cached for a channel, oldest first.
// limit <= 0 loads everything.
func (s *Store) Recent(channelID, limit int) ([]api.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	lo, hi := channelBounds(channelID)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	out := make([]api.Message, 0, 64)
	for it.First(); it.Valid(); it.Next() {
		var m api.Message
		if err := json.Unmarshal(it.Value(), &m); err == nil {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func makeKey(channelID int, seq uint64) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint32(key[:4], uint32(channelID))
	binary.BigEndian.PutUint64(key[4:], seq)
	return key
}

func channelBounds(channelID int) (lo, hi []byte) {
	lo = make([]byte, 4)
	hi = make([]byte, 4)
	binary.BigEndian.PutUint32(lo, uint32(channelID))
	binary.BigEndian.PutUint32(hi, uint32(channelID)+1)
	return lo, hi
}
