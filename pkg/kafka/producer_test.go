package kafka

import (
	"testing"
	"time"
)

func TestNewProducer(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		if _, err := NewProducer(nil); err == nil {
			t.Fatal("expected an error for a nil config")
		}
	})

	t.Run("requires brokers", func(t *testing.T) {
		if _, err := NewProducer(&ProducerConfig{}); err == nil {
			t.Fatal("expected an error for empty brokers")
		}
	})

	t.Run("maps retry settings onto the backoff config", func(t *testing.T) {
		p, err := NewProducer(&ProducerConfig{
			Brokers:       []string{"localhost:9092"},
			MaxRetries:    7,
			RetryInterval: 250 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		if p.retryCfg.MaxRetries != 7 {
			t.Errorf("expected 7 retries, got %d", p.retryCfg.MaxRetries)
		}
		if p.retryCfg.InitialInterval != 250*time.Millisecond {
			t.Errorf("expected a 250ms initial interval, got %s", p.retryCfg.InitialInterval)
		}
	})

	t.Run("defaults retry settings", func(t *testing.T) {
		p, err := NewProducer(&ProducerConfig{Brokers: []string{"localhost:9092"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer p.Close()

		if p.retryCfg.MaxRetries != 3 {
			t.Errorf("expected 3 retries by default, got %d", p.retryCfg.MaxRetries)
		}
		if p.retryCfg.InitialInterval != 500*time.Millisecond {
			t.Errorf("expected a 500ms initial interval by default, got %s", p.retryCfg.InitialInterval)
		}
	})
}
