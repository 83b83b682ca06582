package analysis

import "fmt"

// ProgressStatus is the state of one file within a batch.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressCached   ProgressStatus = "cached"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted for every file of a batch. Index is the position
// of the file in the batch input; Total is the batch size.
type ProgressEvent struct {
	Path    string
	Index   int
	Total   int
	Status  ProgressStatus
	Message string
}

// Done reports whether the event closes the file's work.
func (e ProgressEvent) Done() bool {
	return e.Status != ProgressWorking
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of
// size buffer (64 when buffer <= 0).
func NewProgressReporter(buffer int) *ProgressReporter {
	if buffer <= 0 {
		buffer = 64
	}
	return &ProgressReporter{ch: make(chan ProgressEvent, buffer)}
}

// Emit sends a progress event without blocking. If the channel is full, the
// event is dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	prefix := fmt.Sprintf("[%d/%d]", event.Index+1, event.Total)
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("%s ● %s...", prefix, event.Path)
	case ProgressComplete:
		return fmt.Sprintf("%s ✓ %s", prefix, event.Path)
	case ProgressCached:
		return fmt.Sprintf("%s ✓ %s (cached)", prefix, event.Path)
	case ProgressFailed:
		return fmt.Sprintf("%s ✗ %s failed: %s", prefix, event.Path, event.Message)
	default:
		return fmt.Sprintf("%s ? %s (unknown status)", prefix, event.Path)
	}
}
