package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kristofaser/eagle-golf-app-sub006/internal/domain"
)

// MockGateway implements PaymentGateway for testing and local development
type MockGateway struct {
	config  *MockGatewayConfig
	intents sync.Map
}

type mockIntent struct {
	BookingID string
	Amount    domain.Money
	Currency  string
	Refunded  domain.Money
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate is the probability that CreateIntent succeeds (0.0 to 1.0)
	SuccessRate float64

	// DelayMs is the simulated provider latency in milliseconds
	DelayMs int
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		SuccessRate: 1.0,
		DelayMs:     0,
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	if config.SuccessRate < 0 {
		config.SuccessRate = 0
	}
	if config.SuccessRate > 1 {
		config.SuccessRate = 1
	}
	return &MockGateway{config: config}
}

// CreateIntent registers a fake intent and returns generated identifiers
func (g *MockGateway) CreateIntent(ctx context.Context, req *CreateIntentRequest) (*CreateIntentResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("create intent request is required")
	}

	if err := g.delay(ctx); err != nil {
		return nil, err
	}

	if rand.Float64() >= g.config.SuccessRate {
		return nil, fmt.Errorf("mock gateway: provider unavailable")
	}

	intentID := "pi_mock_" + uuid.New().String()
	g.intents.Store(intentID, &mockIntent{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})

	return &CreateIntentResponse{
		IntentID:     intentID,
		ClientSecret: intentID + "_secret_" + uuid.New().String(),
		Status:       "requires_payment_method",
	}, nil
}

// Refund records a refund against a previously created intent
func (g *MockGateway) Refund(ctx context.Context, intentID string, amount domain.Money) error {
	if intentID == "" {
		return fmt.Errorf("intent ID is required")
	}
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	if err := g.delay(ctx); err != nil {
		return err
	}

	value, ok := g.intents.Load(intentID)
	if !ok {
		return fmt.Errorf("mock gateway: unknown intent %s", intentID)
	}
	intent := value.(*mockIntent)
	if intent.Refunded+amount > intent.Amount {
		return fmt.Errorf("mock gateway: refund exceeds charged amount")
	}
	intent.Refunded += amount
	return nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

func (g *MockGateway) delay(ctx context.Context) error {
	if g.config.DelayMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		return nil
	}
}
