package app

import (
	"context"
	"time"

	"github.com/operatorhq/creditwatch/domain/credit"
	"github.com/operatorhq/creditwatch/domain/spend"
	"github.com/operatorhq/creditwatch/ports"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeToolStore struct {
	tools []credit.ToolState
	err   error

	gotSince time.Time
}

func (s *fakeToolStore) ListUpdatedSince(_ context.Context, since time.Time) ([]credit.ToolState, error) {
	s.gotSince = since
	if s.err != nil {
		return nil, s.err
	}
	out := make([]credit.ToolState, len(s.tools))
	copy(out, s.tools)
	return out, nil
}

func (s *fakeToolStore) Upsert(_ context.Context, state credit.ToolState) error {
	s.tools = append(s.tools, state)
	return nil
}

type fakeCreditSource struct {
	tool   string
	result credit.FetchResult
	calls  int
}

func (s *fakeCreditSource) Tool() string { return s.tool }

func (s *fakeCreditSource) FetchRemaining(context.Context) credit.FetchResult {
	s.calls++
	return s.result
}

type fakeSpendSource struct {
	infra   spend.Infrastructure
	gotDays int
}

func (s *fakeSpendSource) FetchSpend(_ context.Context, days int) spend.Infrastructure {
	s.gotDays = days
	s.infra.WindowDays = days
	return s.infra
}

type fakeEventCounter struct {
	counts map[string]int
}

func (c *fakeEventCounter) Count(_ context.Context, event string, _ int) int {
	return c.counts[event]
}

type fakeSpendStore struct {
	err error

	gotDate     time.Time
	gotServices []spend.Service
	calls       int
}

func (s *fakeSpendStore) RecordSnapshot(_ context.Context, date time.Time, services []spend.Service) error {
	s.calls++
	s.gotDate = date
	s.gotServices = services
	return s.err
}

func (s *fakeSpendStore) ListByDate(context.Context, time.Time) ([]spend.Service, error) {
	return s.gotServices, nil
}

type fakeHistoryStore struct {
	records []ports.UsageRecord
	err     error
}

func (s *fakeHistoryStore) Append(_ context.Context, rec ports.UsageRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

type fakeSink struct {
	digests []ports.AlertDigest
	err     error
}

func (s *fakeSink) Deliver(_ context.Context, digest ports.AlertDigest) error {
	s.digests = append(s.digests, digest)
	return s.err
}
