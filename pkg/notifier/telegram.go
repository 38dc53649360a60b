package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"library-borrowing/pkg/circuitbreaker"
	"library-borrowing/pkg/queue"
)

const (
	maxRetries    = 5
	retryBackoff  = 2 * time.Second
	pollInterval  = 500 * time.Millisecond
	clientTimeout = 10 * time.Second
)

// Telegram delivers borrowing notifications to a single preconfigured chat.
// Delivery is detached: Notify only enqueues, a background worker drains the
// queue through a circuit breaker, and messages that exhaust their retries are
// logged and dropped. Without a token and chat id the notifier is an explicit
// no-op, decided at startup rather than on first send.
type Telegram struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
	queue    *queue.Queue
	breaker  *circuitbreaker.CircuitBreaker
	enabled  bool
	stop     chan struct{}
}

func NewTelegram(botToken, chatID, apiURL string) *Telegram {
	enabled := botToken != "" && chatID != ""
	if !enabled {
		log.Warn().Msg("telegram notifier disabled: BOT_TOKEN or CHAT_ID not set")
	}
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: clientTimeout},
		queue:    queue.NewQueue(),
		breaker:  circuitbreaker.NewCircuitBreaker(3, 30*time.Second),
		enabled:  enabled,
		stop:     make(chan struct{}),
	}
}

// Notify enqueues a message for background delivery. Never blocks, never fails.
func (t *Telegram) Notify(text string) {
	if !t.enabled {
		return
	}
	t.queue.Enqueue(&queue.Message{
		Text:       text,
		RetryAt:    time.Now(),
		MaxRetries: maxRetries,
	})
}

// Start launches the delivery worker.
func (t *Telegram) Start() {
	if !t.enabled {
		return
	}
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				for t.processOne() {
				}
			}
		}
	}()
}

func (t *Telegram) Stop() {
	close(t.stop)
}

// processOne attempts a single due delivery. Returns false when the queue has
// nothing due.
func (t *Telegram) processOne() bool {
	msg := t.queue.Dequeue()
	if msg == nil {
		return false
	}

	err := t.breaker.Execute(func() error {
		return t.send(msg.Text)
	})
	if err == nil {
		return true
	}

	msg.RetryCount++
	if msg.RetryCount >= msg.MaxRetries {
		log.Error().Err(err).Int("retries", msg.RetryCount).
			Msg("dropping telegram notification")
		return true
	}

	msg.RetryAt = time.Now().Add(retryBackoff * time.Duration(msg.RetryCount))
	t.queue.Enqueue(msg)
	log.Warn().Err(err).Int("attempt", msg.RetryCount).
		Msg("telegram delivery failed, will retry")
	return true
}

func (t *Telegram) send(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)
	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
