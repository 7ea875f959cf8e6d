package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/Clark-Hu/photo-ratings/internal/ratingclient"
)

// WriterNotifier prints user notifications to a writer, one per line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ratingclient.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, message)
}
