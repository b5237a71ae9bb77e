package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// imageResource draws a decoded image with upper half blocks: each terminal
// cell shows two vertically stacked pixels (foreground on top).
type imageResource struct {
	mu     sync.Mutex
	img    image.Image
	cache  map[[2]int]string
	closed bool
}

func decodeImage(b []byte) (*imageResource, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("media: decode: %w", err)
	}
	return &imageResource{img: img, cache: map[[2]int]string{}}, nil
}

func (r *imageResource) Render(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || width <= 0 || height <= 0 {
		return ""
	}
	key := [2]int{width, height}
	if s, ok := r.cache[key]; ok {
		return s
	}
	s := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, halfBlocks(r.img, width, height*2))
	r.cache[key] = s
	return s
}

func (r *imageResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.img = nil
	r.cache = nil
	return nil
}

// fitSize scales (w, h) to fit inside (maxW, maxH) keeping the aspect ratio.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	tw, th := maxW, h*maxW/w
	if th > maxH {
		tw, th = w*maxH/h, maxH
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

func halfBlocks(src image.Image, cols, pixelRows int) string {
	b := src.Bounds()
	tw, th := fitSize(b.Dx(), b.Dy(), cols, pixelRows)
	if tw == 0 {
		return ""
	}
	if th%2 == 1 {
		th++
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var sb strings.Builder
	for y := 0; y < th; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < tw; x++ {
			st := lipgloss.NewStyle().
				Foreground(hexColor(dst.At(x, y))).
				Background(hexColor(dst.At(x, y+1)))
			sb.WriteString(st.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
