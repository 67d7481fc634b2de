// Visible-set computation for the article list.
//
// VisibleArticles applies the filter state's predicates conjunctively,
// then orders the survivors per the sort mode. Both this and the facet
// availability in facet.go are pure: neither mutates the dataset or
// the filter state, and identical inputs always produce identical
// output. Reads against an unmodified dataset are safe from any number
// of goroutines.
package shelf

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode orders the visible set.
type SortMode int

const (
	// SortDefault preserves input order. This is an explicit stable
	// pass-through, not "sort by nothing meaningful": callers rely on
	// the import order surviving.
	SortDefault SortMode = iota
	// SortNewest orders by AddedAt descending.
	SortNewest
	// SortOldest orders by AddedAt ascending.
	SortOldest
	// SortTitleAsc orders by locale-aware title comparison.
	SortTitleAsc
	// SortTitleDesc is SortTitleAsc reversed.
	SortTitleDesc
)

// FilterState is the active filter selection owned by the view layer.
// ReadOnly and UnreadOnly are mutually exclusive; the engine enforces
// this rather than assuming it from callers: when both are set,
// neither is applied.
type FilterState struct {
	SearchText     string
	SelectedTags   []string
	FavoritesOnly  bool
	HighlightsOnly bool
	ReadOnly       bool
	UnreadOnly     bool
	Sort           SortMode
}

// VisibleArticles returns the articles matching every active predicate,
// ordered per the sort mode. Ties keep their input order.
func VisibleArticles(ds *Dataset, fs FilterState) []Article {
	out := make([]Article, 0, len(ds.Articles))
	for _, a := range ds.Articles {
		if !matchesBase(ds, a, fs) {
			continue
		}
		if !hasAllTags(a, fs.SelectedTags) {
			continue
		}
		out = append(out, a)
	}
	sortArticles(out, fs.Sort)
	return out
}

// matchesBase applies every predicate except tag selection. The facet
// availability computation reuses it as phase one.
func matchesBase(ds *Dataset, a Article, fs FilterState) bool {
	if fs.FavoritesOnly && !a.IsFavorite {
		return false
	}
	if fs.HighlightsOnly && len(ds.HighlightsFor(a.URL)) == 0 {
		return false
	}

	readOnly, unreadOnly := fs.ReadOnly, fs.UnreadOnly
	if readOnly && unreadOnly {
		readOnly, unreadOnly = false, false
	}
	if readOnly && a.Status != StatusRead {
		return false
	}
	if unreadOnly && a.Status != StatusUnread {
		return false
	}

	return matchesSearch(ds, a, fs.SearchText)
}

// matchesSearch is a case-insensitive substring match over the title,
// the url, and any highlight quote belonging to the article.
func matchesSearch(ds *Dataset, a Article, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(a.URL), search) {
		return true
	}
	for _, h := range ds.HighlightsFor(a.URL) {
		if strings.Contains(strings.ToLower(h.Quote), search) {
			return true
		}
	}
	return false
}

// hasAllTags reports whether the article carries every selected tag
// (AND semantics, not OR).
func hasAllTags(a Article, selected []string) bool {
	for _, want := range selected {
		if !slices.Contains(a.Tags, want) {
			return false
		}
	}
	return true
}

// sortArticles orders the slice in place. Sorting is stable so records
// comparing equal retain their relative input order. A collator is
// built per call: collate.Collator is not safe for concurrent use, and
// construction is cheap next to sorting.
func sortArticles(articles []Article, mode SortMode) {
	switch mode {
	case SortNewest:
		slices.SortStableFunc(articles, func(a, b Article) int {
			return cmp.Compare(b.AddedAt, a.AddedAt)
		})
	case SortOldest:
		slices.SortStableFunc(articles, func(a, b Article) int {
			return cmp.Compare(a.AddedAt, b.AddedAt)
		})
	case SortTitleAsc, SortTitleDesc:
		c := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(articles, func(a, b Article) int {
			r := c.CompareString(a.Title, b.Title)
			if mode == SortTitleDesc {
				r = -r
			}
			return r
		})
	}
	// SortDefault: explicit pass-through.
}
