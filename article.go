// Article and highlight types.
//
// Articles carry their tags twice: TagsRaw is the string exactly as it
// appeared in the import file, Tags is the derived ordered set. The two
// favorite markers ("*" and "***") are folded into IsFavorite during
// derivation and never appear in Tags. Field names in the JSON tags are
// fixed by the legacy stored format and must not change.
package shelf

import "strings"

// Status marks an article as read or unread.
type Status string

const (
	StatusRead   Status = "read"
	StatusUnread Status = "unread"
)

// Favorite markers recognised in raw tag strings.
const (
	markFavorite    = "*"
	markFavoriteAlt = "***"
)

// Article is one reading-list entry. URL is the unique key.
type Article struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	AddedAt    int64    `json:"addedAt"` // unix seconds
	TagsRaw    string   `json:"tagsRaw"`
	Status     Status   `json:"status"`
	IsFavorite bool     `json:"isFavorite"`
	Tags       []string `json:"tags"`
}

// Highlight is a quoted passage saved from an article.
type Highlight struct {
	Quote     string `json:"quote"`
	CreatedAt int64  `json:"createdAt"` // unix seconds
}

// ArticleHighlights groups the highlights belonging to one article.
// URL is a foreign key into the article list but is not required to
// resolve; highlights can outlive their article. Title is a
// denormalized copy of the article title at creation time.
type ArticleHighlights struct {
	URL        string      `json:"url"`
	Title      string      `json:"title"`
	Highlights []Highlight `json:"highlights"`
}

// NewArticle builds an Article with tags and the favorite flag derived
// from the raw tag string.
func NewArticle(title, url string, addedAt int64, tagsRaw string, status Status) Article {
	tags, favorite := parseTags(tagsRaw)
	return Article{
		Title:      title,
		URL:        url,
		AddedAt:    addedAt,
		TagsRaw:    tagsRaw,
		Status:     status,
		IsFavorite: favorite,
		Tags:       tags,
	}
}

// parseTags splits a raw comma-separated tag string into an ordered,
// deduplicated tag set. The favorite markers set the returned flag and
// are excluded from the set.
func parseTags(raw string) (tags []string, favorite bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if tag == markFavorite || tag == markFavoriteAlt {
			favorite = true
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, favorite
}
