package shelf

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"testing"
)

// sampleDataset builds a small dataset with articles, tags and
// highlights covering every field.
func sampleDataset() *Dataset {
	ds := NewDataset()
	ds.ReplaceArticles([]Article{
		NewArticle("Go Proverbs", "https://go-proverbs.github.io", 1700000000, "golang, reading", StatusRead),
		NewArticle("The Morning Paper", "https://blog.acolyer.org", 1700000100, "papers, *", StatusUnread),
		NewArticle("SQLite Docs", "https://sqlite.org/docs.html", 1700000200, "databases, reading", StatusUnread),
	})
	ds.AddHighlight("https://go-proverbs.github.io", "Go Proverbs", "Clear is better than clever.", 1700000300)
	ds.AddHighlight("https://go-proverbs.github.io", "Go Proverbs", "Errors are values.", 1700000400)
	return ds
}

// datasetsEqual compares the persisted (exported) state of two
// datasets, ignoring the internal index bookkeeping.
func datasetsEqual(a, b *Dataset) bool {
	return reflect.DeepEqual(a.Articles, b.Articles) &&
		reflect.DeepEqual(a.Highlights, b.Highlights) &&
		a.SavedAt == b.SavedAt
}

// countingKV wraps a KV and counts writes, so tests can assert that an
// operation performed no write at all.
type countingKV struct {
	KV
	mu   sync.Mutex
	sets int
}

func (c *countingKV) Set(key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.KV.Set(key, value)
}

func (c *countingKV) setCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// captureHandler records log messages by level for assertions.
type captureHandler struct {
	mu       sync.Mutex
	warnings []string
	infos    []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch r.Level {
	case slog.LevelWarn:
		h.warnings = append(h.warnings, r.Message)
	case slog.LevelInfo:
		h.infos = append(h.infos, r.Message)
	}
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) warnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.warnings)
}

// quietLogger discards all output; tests that don't assert on logs use
// it to keep the store from writing to the default logger.
func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mustSave fails the test on a save error.
func mustSave(t *testing.T, s *Store, ds *Dataset) Metadata {
	t.Helper()
	meta, err := s.Save(ds)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return meta
}
