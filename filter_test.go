package shelf

import (
	"reflect"
	"testing"
)

// filterFixture builds a dataset exercising every predicate: statuses,
// favorites, tags, and a highlight to search in.
func filterFixture() *Dataset {
	ds := NewDataset()
	ds.ReplaceArticles([]Article{
		NewArticle("Alpha Waves", "https://alpha.example", 100, "science, sleep", StatusRead),
		NewArticle("beta testing", "https://beta.example", 300, "software, *", StatusUnread),
		NewArticle("Gamma Rays", "https://gamma.example", 200, "science", StatusUnread),
		NewArticle("delta blues", "https://delta.example", 300, "music", StatusRead),
	})
	ds.AddHighlight("https://gamma.example", "Gamma Rays", "Bursts outshine entire galaxies.", 400)
	return ds
}

func urls(articles []Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.URL
	}
	return out
}

func TestVisibleArticlesNoFilter(t *testing.T) {
	ds := filterFixture()
	got := VisibleArticles(ds, FilterState{})

	want := []string{"https://alpha.example", "https://beta.example", "https://gamma.example", "https://delta.example"}
	if !reflect.DeepEqual(urls(got), want) {
		t.Errorf("urls = %v, want input order %v", urls(got), want)
	}
}

func TestVisibleArticlesPredicates(t *testing.T) {
	ds := filterFixture()

	tests := []struct {
		name string
		fs   FilterState
		want []string
	}{
		{
			"search title case-insensitive",
			FilterState{SearchText: "ALPHA"},
			[]string{"https://alpha.example"},
		},
		{
			"search url",
			FilterState{SearchText: "delta.example"},
			[]string{"https://delta.example"},
		},
		{
			"search highlight quote",
			FilterState{SearchText: "galaxies"},
			[]string{"https://gamma.example"},
		},
		{
			"search no match",
			FilterState{SearchText: "zzz-not-present"},
			[]string{},
		},
		{
			"single tag",
			FilterState{SelectedTags: []string{"science"}},
			[]string{"https://alpha.example", "https://gamma.example"},
		},
		{
			"tags are AND not OR",
			FilterState{SelectedTags: []string{"science", "sleep"}},
			[]string{"https://alpha.example"},
		},
		{
			"favorites only",
			FilterState{FavoritesOnly: true},
			[]string{"https://beta.example"},
		},
		{
			"highlights only",
			FilterState{HighlightsOnly: true},
			[]string{"https://gamma.example"},
		},
		{
			"read only",
			FilterState{ReadOnly: true},
			[]string{"https://alpha.example", "https://delta.example"},
		},
		{
			"unread only",
			FilterState{UnreadOnly: true},
			[]string{"https://beta.example", "https://gamma.example"},
		},
		{
			"read and unread both set applies neither",
			FilterState{ReadOnly: true, UnreadOnly: true},
			[]string{"https://alpha.example", "https://beta.example", "https://gamma.example", "https://delta.example"},
		},
		{
			"conjunction of predicates",
			FilterState{SelectedTags: []string{"science"}, UnreadOnly: true},
			[]string{"https://gamma.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urls(VisibleArticles(ds, tt.fs))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("urls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortModes(t *testing.T) {
	ds := filterFixture()

	tests := []struct {
		name string
		mode SortMode
		want []string
	}{
		{
			"default preserves input order",
			SortDefault,
			[]string{"https://alpha.example", "https://beta.example", "https://gamma.example", "https://delta.example"},
		},
		{
			// beta and delta share AddedAt 300: stable sort keeps beta
			// (earlier input) first.
			"newest with stable ties",
			SortNewest,
			[]string{"https://beta.example", "https://delta.example", "https://gamma.example", "https://alpha.example"},
		},
		{
			"oldest with stable ties",
			SortOldest,
			[]string{"https://alpha.example", "https://gamma.example", "https://beta.example", "https://delta.example"},
		},
		{
			// Locale-aware comparison ignores case: "beta" and "delta"
			// sort among the capitalised titles, not after them.
			"title ascending",
			SortTitleAsc,
			[]string{"https://alpha.example", "https://beta.example", "https://delta.example", "https://gamma.example"},
		},
		{
			"title descending",
			SortTitleDesc,
			[]string{"https://gamma.example", "https://delta.example", "https://beta.example", "https://alpha.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urls(VisibleArticles(ds, FilterState{Sort: tt.mode}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("urls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleArticlesDoesNotMutateInputs(t *testing.T) {
	ds := filterFixture()
	before := urls(ds.Articles)

	fs := FilterState{SelectedTags: []string{"science"}, Sort: SortNewest}
	_ = VisibleArticles(ds, fs)

	if !reflect.DeepEqual(urls(ds.Articles), before) {
		t.Error("VisibleArticles reordered the dataset")
	}
	if !reflect.DeepEqual(fs.SelectedTags, []string{"science"}) {
		t.Error("VisibleArticles mutated the filter state")
	}
}

func TestVisibleArticlesDeterministic(t *testing.T) {
	ds := filterFixture()
	fs := FilterState{SearchText: "a", Sort: SortTitleAsc}

	first := urls(VisibleArticles(ds, fs))
	for i := 0; i < 5; i++ {
		if got := urls(VisibleArticles(ds, fs)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v, want %v", i, got, first)
		}
	}
}
