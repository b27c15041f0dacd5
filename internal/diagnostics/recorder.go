// Package diagnostics collects the non-fatal failures absorbed at the
// collaborator boundary so they stay observable after being degraded into
// empty results.
package diagnostics

import (
	"sync"
	"time"

	"findway/internal/apperr"

	"github.com/rs/zerolog"
)

const defaultCapacity = 64

// Diagnostic is one absorbed failure.
type Diagnostic struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Op      string    `json:"op"`
	Message string    `json:"message"`
}

// Recorder logs diagnostics and keeps the most recent ones in a ring buffer.
// It is safe for concurrent use. A nil *Recorder only discards.
type Recorder struct {
	mu     sync.Mutex
	log    zerolog.Logger
	buf    []Diagnostic
	next   int
	full   bool
	counts map[apperr.Kind]int
	now    func() time.Time
}

// NewRecorder creates a recorder holding up to capacity entries.
func NewRecorder(logger zerolog.Logger, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Recorder{
		log:    logger.With().Str("component", "diagnostics").Logger(),
		buf:    make([]Diagnostic, capacity),
		counts: make(map[apperr.Kind]int),
		now:    time.Now,
	}
}

// Report records err under op. Nil errors are ignored.
func (r *Recorder) Report(op string, err error) {
	if r == nil || err == nil {
		return
	}
	kind := apperr.GetKind(err)

	evt := r.log.Warn()
	if kind == apperr.KindNotFound || kind == apperr.KindPermissionDenied {
		evt = r.log.Info()
	}
	evt.Str("op", op).Str("kind", kind.String()).Err(err).Msg("degraded to empty result")

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = Diagnostic{
		At:      r.now(),
		Kind:    kind.String(),
		Op:      op,
		Message: err.Error(),
	}
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.counts[kind]++
}

// Recent returns the recorded diagnostics, oldest first.
func (r *Recorder) Recent() []Diagnostic {
	if r == nil {
		return []Diagnostic{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Diagnostic, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]Diagnostic, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Count returns how many diagnostics of kind were reported in total.
func (r *Recorder) Count(kind apperr.Kind) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}
