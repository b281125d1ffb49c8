package offline

import (
	"sync"
	"time"
)

// Event is a connectivity transition.
type Event struct {
	Online bool
	At     time.Time
}

// Monitor tracks the host's reachability state and publishes its transitions.
// It never checks the network itself; the host reports changes through SetOnline.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]*subscription
}

func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online: online,
		subs:   make(map[int]*subscription),
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records the host's reachability. Subscribers are notified only when the state changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online
	ev := Event{Online: online, At: time.Now()}
	for _, sub := range m.subs {
		sub.push(ev)
	}
}

// Subscribe returns a channel of transitions, delivered in order and never dropped, and a function
// that ends the subscription and closes the channel. The function may be called more than once.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	sub := &subscription{
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = sub
	m.mu.Unlock()

	go sub.pump()

	unsubscribe := func() {
		sub.once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.out, unsubscribe
}

type subscription struct {
	mu      sync.Mutex
	pending []Event

	out  chan Event
	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *subscription) push(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscription) pop() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Event{}, false
	}
	ev := s.pending[0]
	s.pending = s.pending[1:]
	return ev, true
}

// pump forwards pending events to out until the subscription ends.
func (s *subscription) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for ev, ok := s.pop(); ok; ev, ok = s.pop() {
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}
	}
}
