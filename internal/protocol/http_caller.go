package protocol

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	commonhttp "business-assistant/internal/common/http"
)

// HTTPCaller sends JSON-RPC requests to a remote dispatcher's /rpc endpoint.
type HTTPCaller struct {
	endpoint string
	client   *commonhttp.Client
	nextID   atomic.Int64
}

// NewHTTPCaller accepts either a base URL or the full /rpc endpoint.
func NewHTTPCaller(baseURL string, timeout time.Duration) *HTTPCaller {
	endpoint := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(endpoint, "/rpc") {
		endpoint += "/rpc"
	}
	return &HTTPCaller{
		endpoint: endpoint,
		client:   commonhttp.NewClient(timeout),
	}
}

func (h *HTTPCaller) Call(ctx context.Context, method string, params Params) (Envelope, error) {
	req := Request{
		JSONRPC: JSONRPCVersion,
		ID:      json.RawMessage(strconv.FormatInt(h.nextID.Add(1), 10)),
		Method:  method,
		Params:  params,
	}
	var env Envelope
	if err := h.client.PostJSON(ctx, h.endpoint, req, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
