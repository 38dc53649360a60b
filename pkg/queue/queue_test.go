package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueDequeue(t *testing.T) {
	q := NewQueue()
	q.Enqueue(&Message{Text: "first", RetryAt: time.Now()})
	q.Enqueue(&Message{Text: "second", RetryAt: time.Now()})

	assert.Equal(t, 2, q.Size())

	msg := q.Dequeue()
	assert.NotNil(t, msg)
	assert.Equal(t, "first", msg.Text)
	assert.Equal(t, 1, q.Size())
}

func TestDequeueSkipsNotDue(t *testing.T) {
	q := NewQueue()
	q.Enqueue(&Message{Text: "later", RetryAt: time.Now().Add(time.Hour)})
	q.Enqueue(&Message{Text: "now", RetryAt: time.Now()})

	msg := q.Dequeue()
	assert.NotNil(t, msg)
	assert.Equal(t, "now", msg.Text)

	assert.Nil(t, q.Dequeue())
	assert.Equal(t, 1, q.Size())
}

func TestDequeueEmpty(t *testing.T) {
	q := NewQueue()
	assert.Nil(t, q.Dequeue())
}
