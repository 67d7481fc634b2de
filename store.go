// Persistent store adapter.
//
// Store writes the envelope-encoded dataset to a single key of the
// host store and reads it back, enforcing hard limits against the
// uncompressed logical size before any write. Limits reflect
// user-visible scale (article count, highlight count, serialized
// bytes), not storage-engine tricks: uncontrolled growth of a
// client-side store risks exhausting the host quota, and a breach must
// be caught before the write, not discovered through a write failure.
//
// Every save is a complete, independent overwrite of the key. The
// adapter keeps no authority over the dataset: on any failure the
// in-memory copy remains the source of truth and the caller is told
// the save did not happen.
package shelf

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Default limits and policy values, applied by New for zero fields.
const (
	DefaultMaxArticles        = 50_000
	DefaultMaxHighlights      = 100_000
	DefaultMaxSerializedBytes = 50 * 1024 * 1024
	DefaultWarnFraction       = 0.80
	DefaultWarnWindow         = time.Hour
)

// Config holds store configuration options.
type Config struct {
	MaxArticles        int           // Hard cap on article count
	MaxHighlights      int           // Hard cap on total highlight count
	MaxSerializedBytes int           // Hard cap on uncompressed serialized size
	WarnFraction       float64       // Warn at this fraction of each cap
	WarnWindow         time.Duration // Minimum interval between warnings per cap
	DisableCompression bool          // Store payloads verbatim
	HashAlgorithm      int           // 1=xxHash3, 2=FNV1a, 3=Blake2b
	Logger             *slog.Logger  // Destination for warnings and migration outcomes
}

// Store persists one dataset under one key of a host key-value store.
type Store struct {
	kv     KV
	key    string
	config Config
	log    *slog.Logger

	mu       sync.Mutex
	lastFP   string
	lastMeta Metadata
	warn     map[string]*rate.Limiter

	migrating singleflight.Group
}

// New creates a store for the given key. Zero config fields get
// defaults.
func New(kv KV, key string, config Config) *Store {
	if config.MaxArticles == 0 {
		config.MaxArticles = DefaultMaxArticles
	}
	if config.MaxHighlights == 0 {
		config.MaxHighlights = DefaultMaxHighlights
	}
	if config.MaxSerializedBytes == 0 {
		config.MaxSerializedBytes = DefaultMaxSerializedBytes
	}
	if config.WarnFraction == 0 {
		config.WarnFraction = DefaultWarnFraction
	}
	if config.WarnWindow == 0 {
		config.WarnWindow = DefaultWarnWindow
	}
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Store{
		kv:     kv,
		key:    key,
		config: config,
		log:    config.Logger,
		warn:   make(map[string]*rate.Limiter),
	}
}

// Save encodes the dataset and replaces the stored value, returning
// the metadata for the storage-usage indicator. A breached hard limit
// or a rejected write fails the whole save; the stored value is left
// at its prior state either way. Saving a dataset whose serialization
// is unchanged since the last successful save skips the write.
func (s *Store) Save(ds *Dataset) (Metadata, error) {
	serialized, err := json.Marshal(ds)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: encode dataset: %w", ErrWriteFailed, err)
	}

	if err := s.checkLimits(ds, len(serialized)); err != nil {
		return Metadata{}, err
	}

	fp := fingerprint(serialized, s.config.HashAlgorithm)
	s.mu.Lock()
	if fp != "" && fp == s.lastFP {
		meta := s.lastMeta
		s.mu.Unlock()
		return meta, nil
	}
	s.mu.Unlock()

	value, meta, err := encodeValue(serialized, !s.config.DisableCompression)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: encode envelope: %w", ErrWriteFailed, err)
	}

	if err := s.kv.Set(s.key, value); err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	s.mu.Lock()
	s.lastFP = fp
	s.lastMeta = meta
	s.mu.Unlock()

	return meta, nil
}

// Load reads and decodes the stored value. A missing key yields
// (nil, nil, nil). Decode ambiguity never fails the load: unknown
// shapes come back as an empty dataset with legacy-raw metadata, and
// the stored value is left untouched. When the value is in the
// pre-envelope legacy format and compression is enabled, a background
// migration is scheduled; it does not block the load.
func (s *Store) Load() (*Dataset, *Metadata, error) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, nil
	}

	res := decodeValue(raw)

	switch res.Format {
	case FormatLegacyRaw:
		s.log.Warn("stored value matches no known format; returning empty dataset",
			"key", s.key,
			"bytes", len(raw),
		)
	case FormatLegacy:
		if !s.config.DisableCompression {
			go s.migrate()
		}
	}

	meta := res.Metadata
	return res.Dataset, &meta, nil
}

// Clear removes the stored value and forgets the last-save
// fingerprint.
func (s *Store) Clear() error {
	if err := s.kv.Delete(s.key); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastFP = ""
	s.lastMeta = Metadata{}
	s.mu.Unlock()
	return nil
}

// checkLimits enforces the three hard caps against the uncompressed
// logical size and emits rate-limited warnings near each cap.
func (s *Store) checkLimits(ds *Dataset, serializedBytes int) error {
	checks := []struct {
		kind    string
		current int
		max     int
	}{
		{LimitArticles, ds.Len(), s.config.MaxArticles},
		{LimitHighlights, ds.HighlightCount(), s.config.MaxHighlights},
		{LimitBytes, serializedBytes, s.config.MaxSerializedBytes},
	}

	for _, c := range checks {
		if c.current > c.max {
			return &LimitError{Kind: c.kind, Current: c.current, Max: c.max}
		}
		if float64(c.current) >= s.config.WarnFraction*float64(c.max) {
			s.warnNearLimit(c.kind, c.current, c.max)
		}
	}
	return nil
}

// warnNearLimit logs at most one warning per WarnWindow per limit
// kind. The warning is a side-channel notification, not a return
// value, so callers saving in a burst should not be spammed.
func (s *Store) warnNearLimit(kind string, current, max int) {
	s.mu.Lock()
	lim, ok := s.warn[kind]
	if !ok {
		lim = rate.NewLimiter(rate.Every(s.config.WarnWindow), 1)
		s.warn[kind] = lim
	}
	s.mu.Unlock()

	if lim.Allow() {
		s.log.Warn("dataset approaching limit",
			"key", s.key,
			"limit", kind,
			"current", current,
			"max", max,
		)
	}
}
