package story

import (
	"errors"
	"strings"
)

var ErrStoryNotFound = errors.New("story not found")

// Position addresses one story inside the current groups.
// Progress lives on Playback; it resets whenever Position changes.
type Position struct {
	Group int `json:"group"`
	Story int `json:"story"`
}

// Resolve maps a deep-link target to its position. An empty target starts at
// the first story. A target that matches nothing returns ErrStoryNotFound.
//
// Ids are expected to be unique; if they are not, the last match wins.
func Resolve(groups []Group, targetID string) (Position, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return Position{}, nil
	}

	found := false
	var pos Position
	for gi, g := range groups {
		for si, s := range g.Stories {
			if s.ID == targetID {
				pos = Position{Group: gi, Story: si}
				found = true
			}
		}
	}
	if !found {
		return Position{}, ErrStoryNotFound
	}
	return pos, nil
}
