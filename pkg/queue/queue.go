package queue

import (
	"sync"
	"time"
)

// Message is a pending notification delivery. RetryAt delays redelivery after
// a failed send.
type Message struct {
	Text       string
	RetryAt    time.Time
	RetryCount int
	MaxRetries int
}

type Queue struct {
	items []*Message
	mu    sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		items: make([]*Message, 0),
	}
}

func (q *Queue) Enqueue(msg *Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, msg)
}

// Dequeue removes and returns the first message whose retry time has passed,
// or nil when nothing is due.
func (q *Queue) Dequeue() *Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for i, msg := range q.items {
		if msg.RetryAt.Before(now) || msg.RetryAt.Equal(now) {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return msg
		}
	}
	return nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
