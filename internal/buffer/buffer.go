// Package buffer holds the three editable sources of a playground session.
//
// Every edit replaces a buffer wholesale and notifies subscribers with a
// snapshot of all three sources. Buffers are never validated or parsed.
package buffer

import (
	"sync"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

// Listener receives the full source snapshot after every change.
type Listener func(doc models.SourceDocument)

// Set is a Source Buffer Set. It is safe for concurrent use; listeners are
// called synchronously, outside the lock, in subscription order.
type Set struct {
	mu        sync.Mutex
	doc       models.SourceDocument
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64
}

// New returns a Set holding the default editor content.
func New() *Set {
	return NewWith(models.DefaultSource())
}

// NewWith returns a Set holding doc.
func NewWith(doc models.SourceDocument) *Set {
	return &Set{
		doc:       doc,
		listeners: make(map[uint64]Listener),
	}
}

// SetMarkup replaces the markup buffer.
func (s *Set) SetMarkup(text string) {
	s.update(func(doc *models.SourceDocument) { doc.Markup = text })
}

// SetStyle replaces the style buffer.
func (s *Set) SetStyle(text string) {
	s.update(func(doc *models.SourceDocument) { doc.Style = text })
}

// SetScript replaces the script buffer.
func (s *Set) SetScript(text string) {
	s.update(func(doc *models.SourceDocument) { doc.Script = text })
}

// Load replaces all three buffers at once, notifying a single time.
func (s *Set) Load(doc models.SourceDocument) {
	s.update(func(current *models.SourceDocument) { *current = doc })
}

// Reset restores the default editor content.
func (s *Set) Reset() {
	s.Load(models.DefaultSource())
}

// Snapshot returns the current sources.
func (s *Set) Snapshot() models.SourceDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Subscribe registers fn for change notifications and returns a function
// that removes it. Cancelling twice is harmless.
func (s *Set) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Set) update(apply func(*models.SourceDocument)) {
	s.mu.Lock()
	apply(&s.doc)
	snapshot := s.doc
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
