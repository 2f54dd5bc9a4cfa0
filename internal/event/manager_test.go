package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DeliversInOrderToMatchingListeners(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	received := make([]int, 0)
	done := make(chan struct{})
	m.AddEventListener(MetadataChunkLoadedEvent, func(msg interface{}) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg.(int))
		if len(received) == 100 {
			close(done)
		}
	})
	m.AddEventListener(GalleryUpdatedEvent, func(msg interface{}) {
		t.Errorf("unexpected event %v", msg)
	})

	for i := 0; i < 100; i++ {
		m.EmitEvent(MetadataChunkLoadedEvent, i)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range received {
		require.Equal(t, i, v)
	}
}

func TestManager_RemoveEventListener(t *testing.T) {
	m := NewManager()

	calls := make(chan interface{}, 10)
	l := m.AddEventListener(MetadataFailedEvent, func(msg interface{}) { calls <- msg })
	m.RemoveEventListener(l)
	m.RemoveEventListener(l)

	m.EmitEvent(MetadataFailedEvent, "ignored")

	select {
	case msg := <-calls:
		t.Fatalf("removed listener received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, m.listeners)
}
