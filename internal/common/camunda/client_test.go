package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func newTestClient() *Client {
	return &Client{config: &ClientConfig{
		RequestTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := newTestClient()
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		if calls < 2 {
			return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	}, "create-instance")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestExecuteWithRetry_DoesNotRetryPermanentError(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("rpc error: code = NotFound desc = process 'claim-intake-completed' not found")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, code)
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	c := newTestClient()
	calls := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("context deadline exceeded")
	}, "create-instance")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	code, _ := errors.CodeOf(err)
	assert.Equal(t, errors.ErrCodeTimeout, code)
}

func TestExecuteWithRetry_StopsOnCancelledContext(t *testing.T) {
	c := newTestClient()
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("unavailable")
	}, "create-instance")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want errors.ErrorCode
	}{
		{"connection refused", errors.ErrCodeExternalService},
		{"deadline exceeded", errors.ErrCodeTimeout},
		{"process not found", errors.ErrCodeNotFound},
		{"instance already exists", errors.ErrCodeBusinessRule},
		{"rpc error: code = Unauthenticated", errors.ErrCodeAuthentication},
	}
	for _, tt := range tests {
		code, ok := errors.CodeOf(mapZeebeError(stderrors.New(tt.msg), "op", 0))
		require.True(t, ok, tt.msg)
		assert.Equal(t, tt.want, code, tt.msg)
	}
}

type recordingHandler struct{ calls int }

func (h *recordingHandler) Handle(worker.JobClient, entities.Job) { h.calls++ }

type validatorFunc func(map[string]interface{}) error

func (f validatorFunc) ValidateInput(v map[string]interface{}) error { return f(v) }

func TestWithInputValidation_PassesValidJobs(t *testing.T) {
	next := &recordingHandler{}
	var seen map[string]interface{}
	h := WithInputValidation(next, validatorFunc(func(v map[string]interface{}) error {
		seen = v
		return nil
	}), logger.NewNoOpLogger())

	job := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Variables: `{"sessionId":"s-1"}`}}
	h.Handle(nil, job)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "s-1", seen["sessionId"])
}

type fakeGateway struct {
	pb.GatewayClient
	err   error
	calls int
}

func (g *fakeGateway) Topology(context.Context, *pb.TopologyRequest, ...grpc.CallOption) (*pb.TopologyResponse, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &pb.TopologyResponse{}, nil
}

type fakeZeebe struct {
	zbc.Client
	gateway *fakeGateway
}

func (z *fakeZeebe) NewTopologyCommand() *commands.TopologyCommand {
	return commands.NewTopologyCommand(z.gateway, func(context.Context, error) bool { return false })
}

func TestPing_UsesGatewayTopology(t *testing.T) {
	gw := &fakeGateway{}
	c := &Client{client: &fakeZeebe{gateway: gw}, config: &ClientConfig{ConnectionTimeout: time.Second}}

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 1, gw.calls)

	gw.err = stderrors.New("connection refused")
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zeebe health check failed")
	assert.Equal(t, 2, gw.calls)
}
