package model

import "time"

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
	MediaKindText  MediaKind = "text"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindImage, MediaKindVideo, MediaKindText:
		return true
	default:
		return false
	}
}

// Media references the asset shown full screen for a story.
// Body is only used by text stories (markdown).
type Media struct {
	Kind MediaKind `json:"kind" yaml:"kind"`
	URL  string    `json:"url,omitempty" yaml:"url,omitempty"`
	Body string    `json:"body,omitempty" yaml:"body,omitempty"`
}

type OverlayKind string

const (
	OverlayKindText    OverlayKind = "text"
	OverlayKindSticker OverlayKind = "sticker"
)

// Overlay is a text or sticker annotation placed over the media.
// X and Y are percentages (0-100) of the media area.
type Overlay struct {
	Kind  OverlayKind `json:"kind" yaml:"kind"`
	Text  string      `json:"text" yaml:"text"`
	X     float64     `json:"x" yaml:"x"`
	Y     float64     `json:"y" yaml:"y"`
	Color string      `json:"color,omitempty" yaml:"color,omitempty"`
	Bold  bool        `json:"bold,omitempty" yaml:"bold,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Viewer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar,omitempty"`
	ViewedAt time.Time `json:"viewedAt"`
}

type Story struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    User      `json:"author"`
	Media     Media     `json:"media"`
	Overlays  []Overlay `json:"overlays"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Views     int       `json:"views"`

	// Viewers is nil until known. The collaborator only fills it for stories
	// owned by the current user.
	Viewers []Viewer `json:"viewers,omitempty"`
}

// IsOwnedBy reports whether userID authored the story.
func (s Story) IsOwnedBy(userID string) bool {
	return userID != "" && s.AuthorID == userID
}

func (s Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Reply struct {
	ID        string    `json:"id"`
	StoryID   string    `json:"storyId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
