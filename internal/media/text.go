package media

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// textResource renders a markdown story body.
type textResource struct {
	mu     sync.Mutex
	body   string
	cache  map[[2]int]string
	closed bool
}

func newTextResource(body string) *textResource {
	return &textResource{body: body, cache: map[[2]int]string{}}
}

func (r *textResource) Render(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || width <= 0 || height <= 0 {
		return ""
	}
	key := [2]int{width, height}
	if s, ok := r.cache[key]; ok {
		return s
	}
	s := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, renderMarkdown(r.body, width))
	r.cache[key] = s
	return s
}

func (r *textResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.cache = nil
	return nil
}

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width; building a renderer is not cheap.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	wrap := width - 4
	if wrap < 10 {
		wrap = 10
	}
	style := styles.LightStyle
	if lipgloss.HasDarkBackground() {
		style = styles.DarkStyle
	}
	key := style + ":" + strconv.Itoa(wrap)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		// Avoid WithAutoStyle(): it can block waiting on terminal queries.
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// videoResource stands in for a video player; decoding is out of scope.
type videoResource struct {
	mu     sync.Mutex
	url    string
	closed bool
}

func newVideoResource(url string) *videoResource {
	return &videoResource{url: url}
}

func (r *videoResource) Render(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || width <= 0 || height <= 0 {
		return ""
	}
	name := r.url
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	label := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Render("▶ video"),
		lipgloss.NewStyle().Faint(true).Render(name),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, label)
}

func (r *videoResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	return nil
}
