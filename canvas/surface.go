// Package canvas defines the drawing surface a drawing tool exposes and a
// raster implementation of it.
package canvas

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized   = errors.New("canvas not initialized")
	ErrExportInProgress = errors.New("canvas export already in progress")
	ErrTooLarge         = errors.New("canvas size exceeds limit")
)

type State int

const (
	StateReady State = iota
	StateExporting
)

func (s State) String() string {
	if s == StateExporting {
		return "exporting"
	}
	return "ready"
}

// Surface is the command set a drawing tool offers to its host.
type Surface interface {
	// Export returns the current picture as a data:image/png;base64 URI.
	Export() (string, error)
	// Clear discards all strokes and history. It cannot be undone.
	Clear()
	Undo()
	Redo()
	// SetEraseMode applies to strokes started after the call.
	SetEraseMode(on bool)
	// Reset returns the surface to its initial configuration.
	Reset()
}

type ExportResult struct {
	ImageURL string
	Err      error
}

// ExportAsync runs s.Export on its own goroutine. The channel receives
// exactly one result and is then closed. There is no way to cancel.
// A panic inside Export is delivered as the result's error.
func ExportAsync(s Surface) <-chan ExportResult {
	ch := make(chan ExportResult, 1)
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				ch <- ExportResult{Err: fmt.Errorf("export panicked: %v", r)}
			}
		}()
		url, err := s.Export()
		ch <- ExportResult{ImageURL: url, Err: err}
	}()
	return ch
}
