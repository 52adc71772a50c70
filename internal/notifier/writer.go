package notifier

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sync"
)

var htmlTag = regexp.MustCompile(`</?[a-z]+>`)

// WriterNotifier prints reports to an io.Writer with HTML tags stripped.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.w, html.UnescapeString(htmlTag.ReplaceAllString(text, "")))
	return err
}
