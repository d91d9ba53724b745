// Package paymentsvc simulates a payment gateway. Nothing is persisted; a
// transaction id is fabricated per request and the status endpoint reports
// any id as completed.
package paymentsvc

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDeclined is returned when the failure simulation is armed.
var ErrDeclined = errors.New("payment declined")

const (
	// Gateway latency is simulated between these bounds.
	minGatewayLatency = 50 * time.Millisecond
	maxGatewayLatency = 100 * time.Millisecond

	slowExtraDelay = 2 * time.Second
)

// Result is a completed charge.
type Result struct {
	TransactionID  string  `json:"transactionId"`
	ProcessingTime int64   `json:"processingTime"`
	PaymentRef     string  `json:"paymentRef"`
	Amount         float64 `json:"amount"`
	PaymentMethod  string  `json:"paymentMethod"`
	Timestamp      string  `json:"timestamp"`
}

// Service carries only the fault toggles.
type Service struct {
	mu              sync.Mutex
	simulateFailure bool
	simulateSlow    bool

	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a payment Service.
func New() *Service {
	return &Service{
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Process simulates charging the given amount. orderID may be empty for
// pre-authorization checks.
func (s *Service) Process(ctx context.Context, orderID string, amount float64, paymentMethod string) (*Result, error) {
	s.mu.Lock()
	declined := s.simulateFailure
	slow := s.simulateSlow
	s.simulateFailure = false
	s.simulateSlow = false
	s.mu.Unlock()

	start := s.now()

	delay := minGatewayLatency + time.Duration(rand.Int63n(int64(maxGatewayLatency-minGatewayLatency)))
	if slow {
		delay += slowExtraDelay
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.after(delay):
	}

	if declined {
		return nil, ErrDeclined
	}

	paymentRef := orderID
	if paymentRef == "" {
		paymentRef = "pre-auth-" + strconv.FormatInt(start.UnixMilli(), 10)
	}

	return &Result{
		TransactionID:  s.transactionID(start),
		ProcessingTime: s.now().Sub(start).Milliseconds(),
		PaymentRef:     paymentRef,
		Amount:         amount,
		PaymentMethod:  paymentMethod,
		Timestamp:      s.now().UTC().Format(time.RFC3339),
	}, nil
}

// SimulateFailure arms a one-shot decline.
func (s *Service) SimulateFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = true
}

// SimulateSlow arms a one-shot extra delay.
func (s *Service) SimulateSlow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateSlow = true
}

// ResetSimulations clears every armed fault.
func (s *Service) ResetSimulations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = false
	s.simulateSlow = false
}

func (s *Service) transactionID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "txn_" + strconv.FormatInt(at.UnixMilli(), 36) + "_" + suffix
}

func (s *Service) after(d time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.sleep(d)
		close(done)
	}()
	return done
}
