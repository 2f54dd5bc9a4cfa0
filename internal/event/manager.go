package event

import (
	"sync"

	"go.uber.org/zap"
)

const listenerBuffer = 64

type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
}

// Listener receives the events of one type in emission order.
type Listener struct {
	eventType Type
	channel   chan interface{}
	done      chan struct{}
	once      sync.Once
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType Type, callback func(msg interface{})) *Listener {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := &Listener{
		eventType: eventType,
		channel:   make(chan interface{}, listenerBuffer),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, listener)
	m.mu.Unlock()

	go func() {
		for {
			select {
			case msg := <-listener.channel:
				callback(msg)
			case <-listener.done:
				return
			}
		}
	}()

	return listener
}

func (m *Manager) RemoveEventListener(listener *Listener) {
	m.mu.Lock()
	for idx, l := range m.listeners {
		if l == listener {
			m.listeners = append(m.listeners[:idx], m.listeners[idx+1:]...)
			break
		}
	}
	m.mu.Unlock()

	listener.once.Do(func() { close(listener.done) })
}

func (m *Manager) EmitEvent(eventType Type, msg interface{}) {
	m.mu.RLock()
	listeners := make([]*Listener, 0, len(m.listeners))
	for _, listener := range m.listeners {
		if listener.eventType == eventType {
			listeners = append(listeners, listener)
		}
	}
	m.mu.RUnlock()

	if len(listeners) == 0 {
		zap.L().With(zap.String("type", string(eventType))).Debug("No event listeners available")
		return
	}

	for _, listener := range listeners {
		select {
		case listener.channel <- msg:
		case <-listener.done:
		}
	}
}
