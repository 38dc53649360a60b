package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"library-borrowing/pkg/queue"
)

func TestNotifyDelivers(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "42", server.URL)
	tg.Notify("hello from the library")

	assert.True(t, tg.processOne())
	assert.Equal(t, "42", received["chat_id"])
	assert.Equal(t, "hello from the library", received["text"])
	assert.Equal(t, 0, tg.queue.Size())
}

func TestNotifyRetriesOnFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "42", server.URL)
	tg.Notify("will fail")

	assert.True(t, tg.processOne())
	assert.Equal(t, 1, calls)
	// The message went back on the queue with a retry delay.
	assert.Equal(t, 1, tg.queue.Size())
	// Nothing is due yet.
	assert.False(t, tg.processOne())
}

func TestNotifyDropsAfterMaxRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tg := NewTelegram("test-token", "42", server.URL)
	tg.queue.Enqueue(&queue.Message{
		Text:       "doomed",
		RetryAt:    time.Now(),
		RetryCount: maxRetries - 1,
		MaxRetries: maxRetries,
	})

	assert.True(t, tg.processOne())
	assert.Equal(t, 0, tg.queue.Size())
}

func TestDisabledNotifierIsNoOp(t *testing.T) {
	tg := NewTelegram("", "", "https://api.telegram.org")

	tg.Notify("nobody will hear this")

	assert.Equal(t, 0, tg.queue.Size())
	assert.False(t, tg.processOne())
}
