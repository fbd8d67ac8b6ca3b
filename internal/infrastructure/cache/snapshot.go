package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

//nolint:gochecknoglobals
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNoFingerprint = errors.New("decode entry: missing fingerprint")

// SnapshotStore keeps a copy of the cache entries in a Redis hash keyed by
// fingerprint, so a restarted process can warm up without refetching.
type SnapshotStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewSnapshotStore(client redis.Cmdable, key string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

// Save replaces the stored snapshot with entries.
func (s *SnapshotStore) Save(ctx context.Context, entries []Entry) error {
	values := make([]any, 0, len(entries)*2) //nolint:mnd
	for _, e := range entries {
		b, err := encodeEntry(e)
		if err != nil {
			return err
		}
		values = append(values, e.Fingerprint.String(), b)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values...)
			pipe.Expire(ctx, s.key, s.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis snapshot save: %w", err)
	}

	return nil
}

// Load returns the stored entries, oldest first. Undecodable fields are
// skipped.
func (s *SnapshotStore) Load(ctx context.Context) ([]Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis snapshot load: %w", err)
	}

	entries := make([]Entry, 0, len(fields))
	for _, raw := range fields {
		e, err := decodeEntry([]byte(raw))
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StoredAt.Before(entries[j].StoredAt)
	})

	return entries, nil
}

func encodeEntry(e Entry) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entry %s: %w", e.Fingerprint, err)
	}

	return b, nil
}

func decodeEntry(b []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}

	if e.Fingerprint == "" {
		return Entry{}, errNoFingerprint
	}

	return e, nil
}
