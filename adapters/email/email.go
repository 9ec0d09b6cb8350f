// Package email provides AlertSink implementations. The current
// deployment only simulates delivery: the console sink renders the
// digest to the log, mirroring what a real SMTP/Slack sink would send.
package email

import (
	"context"
	"sync"

	"github.com/operatorhq/creditwatch/ports"
	"github.com/rs/zerolog"
)

// ConsoleSink writes rendered digests to the log.
type ConsoleSink struct {
	logger zerolog.Logger
}

// NewConsoleSink creates a console alert sink.
func NewConsoleSink(logger zerolog.Logger) *ConsoleSink {
	return &ConsoleSink{logger: logger.With().Str("component", "alertsink").Logger()}
}

// Deliver renders the digest to the log.
func (s *ConsoleSink) Deliver(ctx context.Context, digest ports.AlertDigest) error {
	s.logger.Warn().
		Str("subject", digest.Subject).
		Int("critical_alerts", len(digest.Alerts)).
		Msg("simulated critical alert email:\n" + digest.Body)
	return nil
}

// NoopSink discards digests. Used when notifications are disabled.
type NoopSink struct{}

// Deliver discards the digest.
func (NoopSink) Deliver(ctx context.Context, digest ports.AlertDigest) error {
	return nil
}

// MockSink captures digests for testing.
type MockSink struct {
	mu      sync.Mutex
	digests []ports.AlertDigest
}

// NewMockSink creates a mock alert sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Deliver captures the digest.
func (s *MockSink) Deliver(ctx context.Context, digest ports.AlertDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = append(s.digests, digest)
	return nil
}

// Count returns the number of delivered digests.
func (s *MockSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.digests)
}

// Last returns the most recent digest.
func (s *MockSink) Last() (ports.AlertDigest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.digests) == 0 {
		return ports.AlertDigest{}, false
	}
	return s.digests[len(s.digests)-1], true
}

// Ensure interface compliance.
var (
	_ ports.AlertSink = (*ConsoleSink)(nil)
	_ ports.AlertSink = NoopSink{}
	_ ports.AlertSink = (*MockSink)(nil)
)
