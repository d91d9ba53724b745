// Package notificationsvc renders order confirmations. Nothing is delivered
// anywhere; the point of the service is to exercise machine-to-machine auth
// and downstream-latency behavior.
package notificationsvc

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	defaultRenderTime = 50 * time.Millisecond
	slowRenderTime    = 3 * time.Second
)

// Item is an order line included in the confirmation.
type Item struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Payload is what shop-api sends after a checkout commits.
type Payload struct {
	OrderID   string  `json:"orderId"`
	UserID    string  `json:"userId"`
	UserEmail string  `json:"userEmail"`
	UserName  string  `json:"userName"`
	Total     float64 `json:"total"`
	Items     []Item  `json:"items"`
	Timestamp string  `json:"timestamp"`
}

// Notification is a rendered confirmation.
type Notification struct {
	ID         string `json:"notificationId"`
	Template   string `json:"template"`
	RenderTime int64  `json:"renderTime"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// Service renders confirmations and tracks the fault toggles.
type Service struct {
	mu              sync.Mutex
	simulateTimeout bool
	slowUsers       map[string]struct{}
	sent            int64

	start time.Time
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a notification Service.
func New() *Service {
	return &Service{
		slowUsers: make(map[string]struct{}),
		start:     time.Now(),
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Send renders the confirmation for an order. Users on the slow-template list
// pay the slow render time.
func (s *Service) Send(ctx context.Context, p Payload) (*Notification, error) {
	s.mu.Lock()
	_, slow := s.slowUsers[p.UserID]
	s.mu.Unlock()

	renderTime := defaultRenderTime
	template := "order-confirmation"
	if slow {
		renderTime = slowRenderTime
		template = "order-confirmation-slow"
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.after(renderTime):
	}

	s.mu.Lock()
	s.sent++
	s.mu.Unlock()

	now := s.now()

	return &Notification{
		ID:         "notif-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + p.OrderID,
		Template:   template,
		RenderTime: renderTime.Milliseconds(),
		Message:    fmt.Sprintf("Order %s confirmed, receipt sent to %s", p.OrderID, p.UserEmail),
		Timestamp:  now.UTC().Format(time.RFC3339),
	}, nil
}

// ConsumeTimeout reports and clears the one-shot timeout toggle.
func (s *Service) ConsumeTimeout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	armed := s.simulateTimeout
	s.simulateTimeout = false
	return armed
}

// SimulateTimeout makes the next order notification hang without answering.
func (s *Service) SimulateTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateTimeout = true
}

// SetSlowTemplateUsers replaces the set of users whose confirmations render
// slowly.
func (s *Service) SetSlowTemplateUsers(userIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowUsers = make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		s.slowUsers[id] = struct{}{}
	}
}

// ResetSimulations clears the timeout toggle and the slow-user set.
func (s *Service) ResetSimulations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateTimeout = false
	s.slowUsers = make(map[string]struct{})
}

// Stats reports uptime and delivery counters.
func (s *Service) Stats() (uptime time.Duration, sent int64, slowUsers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.start), s.sent, len(s.slowUsers)
}

func (s *Service) after(d time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.sleep(d)
		close(done)
	}()
	return done
}
