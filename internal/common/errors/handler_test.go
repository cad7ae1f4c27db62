package errors

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// recordingGateway captures the fail and throw requests the handler sends.
type recordingGateway struct {
	pb.GatewayClient

	mu     sync.Mutex
	fails  []*pb.FailJobRequest
	throws []*pb.ThrowErrorRequest
}

func (g *recordingGateway) FailJob(_ context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fails = append(g.fails, in)
	return &pb.FailJobResponse{}, nil
}

func (g *recordingGateway) ThrowError(_ context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.throws = append(g.throws, in)
	return &pb.ThrowErrorResponse{}, nil
}

func noRetry(context.Context, error) bool { return false }

type gatewayJobClient struct {
	gw *recordingGateway
}

func (c gatewayJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gw, noRetry)
}

func (c gatewayJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gw, noRetry)
}

func (c gatewayJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gw, noRetry)
}

type nopLogger struct{}

func (nopLogger) Error(string, map[string]interface{}) {}

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "analyze-sales", Retries: retries}}
}

// ==== Retry accounting ====

func TestHandleJobError_RetriesCountDownToIncident(t *testing.T) {
	gw := &recordingGateway{}
	client := gatewayJobClient{gw: gw}
	h := NewErrorHandler(nopLogger{})

	retries := int32(3)
	var sent []int32
	for attempt := 0; attempt < 5 && len(gw.throws) == 0; attempt++ {
		before := len(gw.fails)
		h.HandleJobError(context.Background(), client, jobWithRetries(retries), NewCollectionFailedError("analyze_sales: boom"))
		if len(gw.fails) > before {
			retries = gw.fails[len(gw.fails)-1].Retries
			sent = append(sent, retries)
		}
	}

	assert.Equal(t, []int32{2, 1, 0}, sent)
	require.Len(t, gw.throws, 1)
	assert.Equal(t, "COLLECTION_FAILED", gw.throws[0].ErrorCode)
	assert.Equal(t, int64(42), gw.throws[0].JobKey)
}

func TestHandleJobError_RetriesCappedByCodeBudget(t *testing.T) {
	gw := &recordingGateway{}
	h := NewErrorHandler(nopLogger{})

	h.HandleJobError(context.Background(), gatewayJobClient{gw: gw}, jobWithRetries(10), NewCollectionFailedError("boom"))

	require.Len(t, gw.fails, 1)
	assert.Equal(t, int32(3), gw.fails[0].Retries)
	assert.Contains(t, gw.fails[0].Variables, "COLLECTION_FAILED")
	assert.Empty(t, gw.throws)
}

func TestHandleJobError_NonRetryableThrows(t *testing.T) {
	gw := &recordingGateway{}
	h := NewErrorHandler(nopLogger{})

	h.HandleJobError(context.Background(), gatewayJobClient{gw: gw}, jobWithRetries(3), fmt.Errorf("unexpected nil result"))

	assert.Empty(t, gw.fails)
	require.Len(t, gw.throws, 1)
	assert.Equal(t, "INTERNAL_ERROR", gw.throws[0].ErrorCode)
}
