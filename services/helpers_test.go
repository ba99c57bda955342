package services_test

import (
	"sync"

	"github.com/stripe/stripe-go/v80"
)

// --- Mock SessionCreator ---

type mockSessionCreator struct {
	calls  int
	params []*stripe.CheckoutSessionParams
	sess   *stripe.CheckoutSession
	err    error
}

func (m *mockSessionCreator) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.calls++
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	if m.sess != nil {
		return m.sess, nil
	}
	return &stripe.CheckoutSession{ID: "cs_test_123"}, nil
}

// --- Recording metrics ---

type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: make(map[string]int)}
}

func (m *recordingMetrics) Count(name string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[name]++
}

func (m *recordingMetrics) get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}
