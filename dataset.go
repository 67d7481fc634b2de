// The canonical in-memory dataset.
//
// Dataset is the unit of persistence: the article list, the highlight
// groups, and the time of the last mutation. Mutations only touch
// memory; persisting the result is the caller's explicit second step
// (Store.Save), which decouples "what changed" from "when it is
// written" and lets the caller debounce rapid mutation bursts.
//
// A url→highlights index is maintained lazily behind a generation
// counter: any mutation bumps the generation, and the next lookup
// rebuilds the index. This keeps HighlightsFor O(1) amortized while
// concurrent readers of an unmodified dataset stay safe.
package shelf

import (
	"sync"
	"time"
)

// Dataset pairs the article collection with its highlight groups.
// The JSON field names match the legacy stored format.
type Dataset struct {
	Articles   []Article           `json:"articles"`
	Highlights []ArticleHighlights `json:"highlightData"`
	SavedAt    int64               `json:"timestamp"` // unix seconds

	mu      sync.Mutex
	gen     uint64
	idxGen  uint64
	hlIndex map[string]int // URL → index into Highlights
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// touch records a mutation: the highlight index is invalidated and the
// persistence timestamp advances.
func (d *Dataset) touch() {
	d.mu.Lock()
	d.gen++
	d.mu.Unlock()
	d.SavedAt = time.Now().Unix()
}

// highlightIndex returns the url→highlights lookup map, rebuilding it
// if a mutation has occurred since the last build.
func (d *Dataset) highlightIndex() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hlIndex == nil || d.idxGen != d.gen {
		idx := make(map[string]int, len(d.Highlights))
		for i, h := range d.Highlights {
			idx[h.URL] = i
		}
		d.hlIndex = idx
		d.idxGen = d.gen
	}
	return d.hlIndex
}

// Len returns the number of articles.
func (d *Dataset) Len() int {
	return len(d.Articles)
}

// HighlightCount returns the total number of highlights summed across
// all articles. This is the quantity the store's highlight limit is
// checked against.
func (d *Dataset) HighlightCount() int {
	total := 0
	for _, h := range d.Highlights {
		total += len(h.Highlights)
	}
	return total
}

// HighlightsFor returns the highlights recorded for the given URL, or
// nil if there are none.
func (d *Dataset) HighlightsFor(url string) []Highlight {
	idx := d.highlightIndex()
	i, ok := idx[url]
	if !ok {
		return nil
	}
	return d.Highlights[i].Highlights
}

// ReplaceArticles swaps in a new article list wholesale. Used by the
// import collaborators; existing highlights are kept since they may
// reference articles from either import.
func (d *Dataset) ReplaceArticles(articles []Article) {
	d.Articles = articles
	d.touch()
}

// ReplaceHighlights swaps in a new set of highlight groups wholesale.
func (d *Dataset) ReplaceHighlights(groups []ArticleHighlights) {
	d.Highlights = groups
	d.touch()
}

// AddArticle appends one article.
func (d *Dataset) AddArticle(a Article) {
	d.Articles = append(d.Articles, a)
	d.touch()
}

// SetTitle renames an article in place and refreshes the denormalized
// title on its highlight group, if one exists. Reports whether the URL
// was found.
func (d *Dataset) SetTitle(url, title string) bool {
	found := false
	for i := range d.Articles {
		if d.Articles[i].URL == url {
			d.Articles[i].Title = title
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := range d.Highlights {
		if d.Highlights[i].URL == url {
			d.Highlights[i].Title = title
			break
		}
	}
	d.touch()
	return true
}

// SetStatus marks an article read or unread. Reports whether the URL
// was found.
func (d *Dataset) SetStatus(url string, s Status) bool {
	for i := range d.Articles {
		if d.Articles[i].URL == url {
			d.Articles[i].Status = s
			d.touch()
			return true
		}
	}
	return false
}

// SetFavorite sets or clears the favorite flag. Reports whether the
// URL was found.
func (d *Dataset) SetFavorite(url string, favorite bool) bool {
	for i := range d.Articles {
		if d.Articles[i].URL == url {
			d.Articles[i].IsFavorite = favorite
			d.touch()
			return true
		}
	}
	return false
}

// AddHighlight records a new highlight for the given URL, creating the
// highlight group if this is the article's first. The title is the
// denormalized article title cached at creation time.
func (d *Dataset) AddHighlight(url, title, quote string, createdAt int64) {
	h := Highlight{Quote: quote, CreatedAt: createdAt}
	for i := range d.Highlights {
		if d.Highlights[i].URL == url {
			d.Highlights[i].Highlights = append(d.Highlights[i].Highlights, h)
			d.touch()
			return
		}
	}
	d.Highlights = append(d.Highlights, ArticleHighlights{
		URL:        url,
		Title:      title,
		Highlights: []Highlight{h},
	})
	d.touch()
}

// Reset empties the dataset. This is the only way records leave the
// collection. Individual deletion is not part of this core.
func (d *Dataset) Reset() {
	d.Articles = nil
	d.Highlights = nil
	d.touch()
}
