package gateway

import "sync"

// Event is one broadcast payload on a session topic: command output or an
// error description, never both.
type Event struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this loses events.
const subscriberBuffer = 16

// Broker fans events out to the subscribers of a session topic. Delivery
// is at-most-once, best-effort: with no subscriber the event is dropped,
// and Publish never blocks the caller.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber on the topic. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[chan Event]struct{})
		b.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.topics[topic]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.topics, topic)
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of the topic,
// dropping it for any subscriber whose buffer is full.
func (b *Broker) Publish(topic string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.topics[topic] {
		select {
		case ch <- ev:
		default:
		}
	}
}
