// Package clip writes decoded payloads to the system clipboard.
package clip

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported reports a platform without a usable clipboard tool.
var ErrUnsupported = errors.New("clipboard unsupported on this system")

// Writer copies text to a clipboard.
type Writer interface {
	WriteText(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

func (f WriterFunc) WriteText(text string) error { return f(text) }

// System is the OS clipboard.
type System struct{}

// WriteText implements Writer.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
