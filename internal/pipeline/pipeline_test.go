package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	"github.com/couchcryptid/storm-surge-prep/internal/observability"
	"github.com/couchcryptid/storm-surge-prep/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- mocks ---

type mockExtractor struct {
	requests []domain.RawRequest
	index    atomic.Int64
}

func (m *mockExtractor) Extract(ctx context.Context) (domain.RawRequest, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.requests) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return domain.RawRequest{}, ctx.Err()
	}
	return m.requests[i], nil
}

type mockPreparer struct {
	err error
}

func (m *mockPreparer) Prepare(_ context.Context, raw domain.RawRequest) (domain.OutputMessage, error) {
	if m.err != nil {
		return domain.OutputMessage{}, m.err
	}
	return domain.OutputMessage{Key: raw.Key, Value: raw.Value}, nil
}

type mockPublisher struct {
	published []domain.OutputMessage
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, msg domain.OutputMessage) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func makeRawRequest(key string) domain.RawRequest {
	return domain.RawRequest{
		Key:   []byte(key),
		Value: []byte(`{"full_dir":"runs/full","sub_dir":"runs/sub","shape":"circle"}`),
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawRequest("run-1")

	ext := &mockExtractor{requests: []domain.RawRequest{raw}}
	prep := &mockPreparer{}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, prep, pub, slog.Default(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, raw.Value, pub.published[0].Value)
	assert.True(t, p.Ready())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no requests, Extract blocks until cancelled
	prep := &mockPreparer{}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, prep, pub, slog.Default(), metrics)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_PrepareErrorSkipsAndCommits(t *testing.T) {
	commits := 0

	raw := makeRawRequest("run-2")
	raw.Topic = "run-prep-requests"
	raw.Commit = func(_ context.Context) error {
		commits++
		return nil
	}

	ext := &mockExtractor{requests: []domain.RawRequest{raw}}
	prep := &mockPreparer{err: errors.New("bad request")}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, prep, pub, slog.Default(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub.published)
	assert.False(t, p.Ready())
	assert.Equal(t, 1, commits)
}

func TestPipeline_Run_PublishErrorLeavesOffsetUncommitted(t *testing.T) {
	commits := 0

	raw := makeRawRequest("run-3")
	raw.Commit = func(_ context.Context) error {
		commits++
		return nil
	}

	ext := &mockExtractor{requests: []domain.RawRequest{raw}}
	prep := &mockPreparer{}
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	metrics := newTestMetrics()

	p := pipeline.New(ext, prep, pub, slog.Default(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.False(t, p.Ready())
	assert.Zero(t, commits)
}

func TestPipeline_Run_CommitsAfterPublish(t *testing.T) {
	commitCalled := false

	raw := makeRawRequest("run-4")
	raw.Topic = "run-prep-requests"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{requests: []domain.RawRequest{raw}}
	prep := &mockPreparer{}
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, prep, pub, slog.Default(), metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, commitCalled)
}
