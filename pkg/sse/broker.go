package sse

import "sync"

// Event is one message published to a topic.
type Event struct {
	Name string
	Data any
}

// Broker fans events out to the subscribers of a topic. Slow subscribers
// lose events rather than block the publisher.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[chan Event]struct{}
	buffer int
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 16
	}
	return &Broker{topics: make(map[string]map[chan Event]struct{}), buffer: buffer}
}

// Subscribe returns a channel receiving the topic's events and a cancel
// func that unsubscribes and closes it.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[chan Event]struct{})
		b.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.topics[topic], ch)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every current subscriber of topic and returns how
// many received it.
func (b *Broker) Publish(topic string, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for ch := range b.topics[topic] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers counts the open subscriptions on topic.
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
