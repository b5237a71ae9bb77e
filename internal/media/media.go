package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"storyview/internal/model"
)

// Resource is the media element owned by the story on screen. It is
// acquired when the story becomes active and closed when it stops being
// active; it is never handed to another story.
type Resource interface {
	Render(width, height int) string
	Close() error
}

// Opener acquires a Resource for a story's media.
type Opener interface {
	Open(ctx context.Context, m model.Media) (Resource, error)
}

var ErrClosed = errors.New("media: resource closed")

const defaultMaxBytes = 32 << 20

// Loader opens media from local paths or http(s) URLs.
type Loader struct {
	// BaseDir resolves relative paths.
	BaseDir  string
	Client   *http.Client
	MaxBytes int64
}

var _ Opener = Loader{}

func (l Loader) Open(ctx context.Context, m model.Media) (Resource, error) {
	switch m.Kind {
	case model.MediaKindText:
		return newTextResource(m.Body), nil
	case model.MediaKindVideo:
		return newVideoResource(m.URL), nil
	case model.MediaKindImage:
		b, err := l.fetch(ctx, m.URL)
		if err != nil {
			return nil, err
		}
		return decodeImage(b)
	default:
		return nil, fmt.Errorf("media: unsupported kind %q", m.Kind)
	}
}

func (l Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("media: empty url")
	}
	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	var r io.ReadCloser
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		client := l.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("media: get %s: %w", ref, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("media: get %s: %s", ref, resp.Status)
		}
		r = resp.Body
	} else {
		path := strings.TrimPrefix(ref, "file://")
		if !filepath.IsAbs(path) && l.BaseDir != "" {
			path = filepath.Join(l.BaseDir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("media: %w", err)
		}
		r = f
	}
	defer r.Close()

	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("media: %s is larger than %d bytes", ref, limit)
	}
	return b, nil
}
