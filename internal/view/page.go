// Package view holds the display targets a rating summary is written into.
package view

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Clark-Hu/photo-ratings/internal/ratingclient"
)

// ErrTargetMissing is returned when text is written to an element that was
// never registered.
var ErrTargetMissing = errors.New("view: target element missing")

// Page is an in-memory tree of text elements keyed by id.
type Page struct {
	mu       sync.RWMutex
	elements map[string]string
	order    []string
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{elements: make(map[string]string)}
}

// AverageID is the element id holding the average rating of a photo.
func AverageID(photoID string) string {
	return "rating-avg-" + photoID
}

// CountID is the element id holding the rating count of a photo.
func CountID(photoID string) string {
	return "rating-count-" + photoID
}

// Register creates empty elements for ids that do not exist yet.
func (p *Page) Register(ids ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range ids {
		if _, ok := p.elements[id]; ok {
			continue
		}
		p.elements[id] = ""
		p.order = append(p.order, id)
	}
}

// RegisterPhoto creates the average and count elements for a photo.
func (p *Page) RegisterPhoto(photoID string) {
	p.Register(AverageID(photoID), CountID(photoID))
}

// SetText replaces the text of an existing element.
func (p *Page) SetText(id, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.elements[id]; !ok {
		return fmt.Errorf("%w: #%s", ErrTargetMissing, id)
	}
	p.elements[id] = text
	return nil
}

// Text returns the text of an element and whether it exists.
func (p *Page) Text(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	text, ok := p.elements[id]
	return text, ok
}

// WriteTo prints every element as "#id: text", in registration order.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var total int64
	for _, id := range p.order {
		n, err := fmt.Fprintf(w, "#%s: %s\n", id, p.elements[id])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// PageRenderer writes rating summaries into a Page.
type PageRenderer struct {
	page *Page
}

var _ ratingclient.Renderer = (*PageRenderer)(nil)

// NewPageRenderer binds a renderer to page.
func NewPageRenderer(page *Page) *PageRenderer {
	return &PageRenderer{page: page}
}

// RenderSummary writes the formatted average and count. A missing element is
// skipped and reported; the other element is still written.
func (r *PageRenderer) RenderSummary(photoID string, summary ratingclient.Summary) error {
	avgErr := r.page.SetText(AverageID(photoID), ratingclient.FormatAverage(summary.Average))
	countErr := r.page.SetText(CountID(photoID), ratingclient.FormatCount(summary.Count))
	return errors.Join(avgErr, countErr)
}
