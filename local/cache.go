package local

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tailored-agentic-units/planner/core/protocol"
	"github.com/tailored-agentic-units/planner/observability"
)

// Local cache event types.
const (
	EventLoadFailed      observability.EventType = "local.load.failed"
	EventSaveFailed      observability.EventType = "local.save.failed"
	EventRecordMalformed observability.EventType = "local.record.malformed"
)

// Record namespaces. Each trip has one record in each.
const (
	NamespaceChat      = "chat"
	NamespaceItinerary = "itinerary"
)

// LogKey returns the store key of the serialized message log for tripID.
func LogKey(tripID string) string {
	return NamespaceChat + "/" + url.PathEscape(tripID) + ".json"
}

// SnapshotKey returns the store key of the serialized snapshot for tripID.
func SnapshotKey(tripID string) string {
	return NamespaceItinerary + "/" + url.PathEscape(tripID) + ".json"
}

// Option configures a Cache.
type Option func(*Cache)

// WithMemoTTL sets how long raw records stay in the read memo.
func WithMemoTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithObserver sets the observer that receives load and save failures.
func WithObserver(o observability.Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// Cache is the typed per-trip view of a Store. It keeps the message log and
// the itinerary snapshot as two independent records, each rewritten whole on
// every save. A record that cannot be read or decoded is reported as absent.
// All methods are safe for concurrent use.
type Cache struct {
	store    Store
	memo     *cache.Cache
	ttl      time.Duration
	observer observability.Observer
}

// NewCache creates a Cache over store.
func NewCache(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		ttl:      defaultMemoTTL,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.memo = cache.New(c.ttl, 2*c.ttl)
	return c
}

// New creates a Cache from configuration.
func New(cfg *Config, observer observability.Observer) *Cache {
	return NewCache(NewStore(cfg), WithMemoTTL(cfg.MemoTTL), WithObserver(observer))
}

// Log returns the stored message log for tripID.
func (c *Cache) Log(tripID string) ([]protocol.Message, bool) {
	key := LogKey(tripID)
	data, ok := c.load(key)
	if !ok {
		return nil, false
	}

	var log []protocol.Message
	if err := json.Unmarshal(data, &log); err != nil {
		c.malformed(key, err)
		return nil, false
	}
	if err := protocol.ValidateLog(log); err != nil {
		c.malformed(key, err)
		return nil, false
	}
	return log, true
}

// SetLog overwrites the stored message log for tripID.
func (c *Cache) SetLog(tripID string, log []protocol.Message) {
	data, err := json.Marshal(log)
	if err != nil {
		c.emit(EventSaveFailed, LogKey(tripID), err)
		return
	}
	c.save(LogKey(tripID), data)
}

// Snapshot returns the stored itinerary snapshot for tripID.
func (c *Cache) Snapshot(tripID string) (protocol.Snapshot, bool) {
	key := SnapshotKey(tripID)
	data, ok := c.load(key)
	if !ok {
		return protocol.Snapshot{}, false
	}

	var snap protocol.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.malformed(key, err)
		return protocol.Snapshot{}, false
	}
	if snap.Content == "" {
		return protocol.Snapshot{}, false
	}
	snap.TripID = tripID
	return snap, true
}

// SetSnapshot overwrites the stored snapshot for snap.TripID.
func (c *Cache) SetSnapshot(snap protocol.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.emit(EventSaveFailed, SnapshotKey(snap.TripID), err)
		return
	}
	c.save(SnapshotKey(snap.TripID), data)
}

func (c *Cache) load(key string) ([]byte, bool) {
	if val, ok := c.memo.Get(key); ok {
		if data, ok := val.([]byte); ok {
			return slices.Clone(data), true
		}
	}

	data, err := c.store.Load(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.emit(EventLoadFailed, key, err)
		}
		return nil, false
	}

	c.memo.Set(key, slices.Clone(data), cache.DefaultExpiration)
	return data, true
}

func (c *Cache) save(key string, data []byte) {
	if err := c.store.Save(key, data); err != nil {
		c.memo.Delete(key)
		c.emit(EventSaveFailed, key, err)
		return
	}
	c.memo.Set(key, slices.Clone(data), cache.DefaultExpiration)
}

func (c *Cache) malformed(key string, err error) {
	c.memo.Delete(key)
	c.emit(EventRecordMalformed, key, err)
}

func (c *Cache) emit(t observability.EventType, key string, err error) {
	level := observability.LevelWarning
	if t == EventRecordMalformed {
		level = observability.LevelInfo
	}
	c.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "local.Cache",
		Data: map[string]any{
			"key":   key,
			"error": err.Error(),
		},
	})
}
