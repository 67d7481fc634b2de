// Tag availability for the facet picker.
//
// A tag is "available" only if adding it to the current selection is
// guaranteed not to empty the result set. The computation is two-phase:
// first the base set (every predicate except tag selection), then, if
// tags are already selected, the base set narrowed to articles
// carrying all of them. The available set is the tag union over
// whichever set applies, so the picker never offers a tag whose
// selection would contradict an already-active filter.
package shelf

import "slices"

// AvailableTags returns the set of tags that can be added to the
// current selection without producing an empty result, sorted for
// deterministic presentation.
func AvailableTags(ds *Dataset, fs FilterState) []string {
	set := make(map[string]bool)

	for _, a := range ds.Articles {
		if !matchesBase(ds, a, fs) {
			continue
		}
		if !hasAllTags(a, fs.SelectedTags) {
			continue
		}
		for _, t := range a.Tags {
			set[t] = true
		}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
