package notion

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/crestline-research/finmap/internal/resilience"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *MockClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *MockClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var _ Client = (*MockClient)(nil)
}

func TestNewClientReturnsClient(t *testing.T) {
	c := NewClient("test-token")
	assert.NotNil(t, c)
	var _ Client = c //nolint:staticcheck // interface compliance check
}

func TestWithRateLimit_Disable(t *testing.T) {
	c := NewClient("test-token", WithRateLimit(0))
	nc, ok := c.(*notionClient)
	assert.True(t, ok)
	assert.Nil(t, nc.limiter)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("rate limited is transient", func(t *testing.T) {
		t.Parallel()
		err := classify(&notionapi.Error{Status: 429, Code: "rate_limited", Message: "slow down"})
		assert.True(t, resilience.IsTransient(err))
	})

	t.Run("server error is transient", func(t *testing.T) {
		t.Parallel()
		err := classify(&notionapi.Error{Status: 503, Code: "service_unavailable"})
		assert.True(t, resilience.IsTransient(err))
	})

	t.Run("unauthorized fails fast", func(t *testing.T) {
		t.Parallel()
		err := classify(&notionapi.Error{Status: 401, Code: "unauthorized", Message: "token revoked"})
		assert.False(t, resilience.IsTransient(err))
	})

	t.Run("non api error passes through", func(t *testing.T) {
		t.Parallel()
		orig := errors.New("marshal payload")
		assert.Equal(t, orig, classify(orig))
	})
}
