package ui

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// ConsoleNotifier prints pipeline outcomes
// Writes are serialised so concurrent pipelines do not interleave lines
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func NewConsoleNotifier(out, errOut io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, err: errOut}
}

func (n *ConsoleNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, FormatSuccess(msg))
}

func (n *ConsoleNotifier) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.err, FormatError(FailureMessage(err)))
}

// FailureMessage turns a pipeline error into a short user-facing line
func FailureMessage(err error) string {
	switch {
	case err == nil:
		return "Paste failed"
	case errors.Is(err, domain.ErrNoDocument):
		return "No note is open to paste into"
	case errors.Is(err, domain.ErrDecode):
		return fmt.Sprintf("Could not read the pasted image: %v", err)
	case errors.Is(err, domain.ErrEncode):
		return fmt.Sprintf("Could not convert the image to WebP: %v", err)
	case errors.Is(err, domain.ErrPathResolution):
		return fmt.Sprintf("Could not choose a location for the image: %v", err)
	case errors.Is(err, domain.ErrPersist):
		return fmt.Sprintf("Could not save the image: %v", err)
	case errors.Is(err, domain.ErrLink):
		return fmt.Sprintf("Image saved but the link could not be inserted: %v", err)
	default:
		return fmt.Sprintf("Paste failed: %v", err)
	}
}
