package story

import "storyview/internal/model"

// Group is one author's stories in the order they were fetched.
type Group struct {
	AuthorID string        `json:"authorId"`
	Stories  []model.Story `json:"stories"`
}

// GroupByAuthor partitions stories into per-author groups. Groups are ordered
// by the first appearance of each author in the input; every story is kept
// exactly once. The result never aliases a previous grouping.
func GroupByAuthor(stories []model.Story) []Group {
	groups := make([]Group, 0)
	byAuthor := make(map[string]int)
	for _, s := range stories {
		idx, ok := byAuthor[s.AuthorID]
		if !ok {
			idx = len(groups)
			byAuthor[s.AuthorID] = idx
			groups = append(groups, Group{AuthorID: s.AuthorID})
		}
		groups[idx].Stories = append(groups[idx].Stories, s)
	}
	return groups
}

// storyAt returns the story at pos, if pos is in range.
func storyAt(groups []Group, pos Position) (model.Story, bool) {
	if !inRange(groups, pos) {
		return model.Story{}, false
	}
	return groups[pos.Group].Stories[pos.Story], true
}

func inRange(groups []Group, pos Position) bool {
	if pos.Group < 0 || pos.Group >= len(groups) {
		return false
	}
	return pos.Story >= 0 && pos.Story < len(groups[pos.Group].Stories)
}
