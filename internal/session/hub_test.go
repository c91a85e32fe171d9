package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	t.Run("publish reaches every subscriber", func(t *testing.T) {
		hub := NewHub(nil)

		var first, second []Event
		hub.Subscribe(func(e Event) { first = append(first, e) })
		hub.Subscribe(func(e Event) { second = append(second, e) })

		hub.Publish(Event{Type: EventSignedIn, UserID: "u1"})

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, EventSignedIn, first[0].Type)
		assert.Equal(t, "u1", first[0].UserID)
		assert.False(t, first[0].At.IsZero(), "publish stamps the event")
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		hub := NewHub(nil)

		calls := 0
		unsubscribe := hub.Subscribe(func(Event) { calls++ })
		hub.Publish(Event{Type: EventSignedUp})
		unsubscribe()
		unsubscribe()
		hub.Publish(Event{Type: EventSignedOut})

		assert.Equal(t, 1, calls)
		assert.Zero(t, hub.Len())
	})

	t.Run("panicking subscriber is isolated", func(t *testing.T) {
		hub := NewHub(nil)

		delivered := false
		hub.Subscribe(func(Event) { panic("broken subscriber") })
		hub.Subscribe(func(Event) { delivered = true })

		assert.NotPanics(t, func() { hub.Publish(Event{Type: EventProfileUpdated}) })
		assert.True(t, delivered)
	})

	t.Run("close drops subscribers", func(t *testing.T) {
		hub := NewHub(nil)

		calls := 0
		hub.Subscribe(func(Event) { calls++ })
		hub.Close()
		hub.Subscribe(func(Event) { calls++ })
		hub.Publish(Event{Type: EventSignedIn})

		assert.Zero(t, calls)
		assert.Zero(t, hub.Len())
	})

	t.Run("concurrent publish and subscribe", func(t *testing.T) {
		hub := NewHub(nil)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				unsubscribe := hub.Subscribe(func(Event) {})
				defer unsubscribe()
			}()
			go func() {
				defer wg.Done()
				hub.Publish(Event{Type: EventSignedIn})
			}()
		}
		wg.Wait()

		assert.Zero(t, hub.Len())
	})
}
