// One-time migration of legacy stored values.
//
// Load schedules migrate in the background when it finds a
// pre-envelope value and compression is enabled. The migration is
// detached from the caller's control flow, so it re-derives everything
// from the value present at execution time rather than trusting what
// Load saw: if the key has advanced past the legacy format by the time
// it runs (another save, or a concurrent migration) it is a no-op.
// Values in no known format (legacy-raw) are never rewritten; an
// overwrite would destroy data the store cannot interpret.
package shelf

import (
	json "github.com/goccy/go-json"
)

// migrate re-saves a legacy value through the compressed path.
// Deduplicated per key via singleflight; errors are logged, never
// propagated; migration is best-effort and the legacy value stays
// readable either way.
func (s *Store) migrate() {
	s.migrating.Do(s.key, func() (any, error) {
		raw, ok, err := s.kv.Get(s.key)
		if err != nil || !ok {
			return nil, nil
		}

		res := decodeValue(raw)
		if res.Format != FormatLegacy {
			return nil, nil
		}

		serialized, err := json.Marshal(res.Dataset)
		if err != nil {
			s.log.Warn("legacy migration skipped: dataset re-encode failed",
				"key", s.key,
				"error", err,
			)
			return nil, nil
		}

		value, meta, err := encodeValue(serialized, true)
		if err != nil {
			s.log.Warn("legacy migration skipped: envelope encode failed",
				"key", s.key,
				"error", err,
			)
			return nil, nil
		}

		if err := s.kv.Set(s.key, value); err != nil {
			s.log.Warn("legacy migration skipped: write rejected",
				"key", s.key,
				"error", err,
			)
			return nil, nil
		}

		s.mu.Lock()
		s.lastFP = fingerprint(serialized, s.config.HashAlgorithm)
		s.lastMeta = meta
		s.mu.Unlock()

		s.log.Info("migrated legacy dataset to compressed format",
			"key", s.key,
			"originalSizeBytes", meta.OriginalSizeBytes,
			"compressedSizeBytes", meta.CompressedSizeBytes,
			"ratioPercent", meta.RatioPercent,
		)
		return nil, nil
	})
}
