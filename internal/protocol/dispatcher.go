package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/common/observability"
	"business-assistant/internal/gateway"
)

const ProtocolVersion = "2024-11-05"

type Dispatcher struct {
	catalog  *catalog.Catalog
	handlers map[string]ToolHandler
	logger   logger.Logger
	metrics  *metrics.Metrics
	obs      *observability.Observability
	info     ServerInfo
}

type DispatcherOption func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithObservability(o *observability.Observability) DispatcherOption {
	return func(d *Dispatcher) { d.obs = o }
}

func WithServerInfo(name, version string) DispatcherOption {
	return func(d *Dispatcher) { d.info = ServerInfo{Name: name, Version: version} }
}

// WithHandler replaces the handler bound to a tool. The tool must exist in
// the catalog for calls to reach it.
func WithHandler(tool string, h ToolHandler) DispatcherOption {
	return func(d *Dispatcher) { d.handlers[tool] = h }
}

// NewDispatcher binds every catalog tool to the matching read on reader.
func NewDispatcher(cat *catalog.Catalog, reader DataReader, log logger.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		catalog:  cat,
		handlers: make(map[string]ToolHandler),
		logger:   logger.Component(log, "dispatcher"),
		metrics:  metrics.NewNop(),
		info:     ServerInfo{Name: "business-data", Version: "1.0.0"},
	}
	if reader != nil {
		d.handlers = GatewayHandlers(reader)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle answers one call. It never returns an envelope carrying both a
// result and an error, and it never panics.
func (d *Dispatcher) Handle(ctx context.Context, method string, params Params) (env Envelope) {
	requestID := uuid.New().String()
	start := time.Now()

	ctx, span := d.obs.StartSpan(ctx, "protocol."+method,
		attribute.String("rpc.method", method),
		attribute.String("request.id", requestID),
		attribute.String("tool.name", params.Name),
	)
	defer span.End()

	log := d.logger.With(map[string]interface{}{
		"request_id": requestID,
		"method":     method,
	})

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			env = Failure(CodeInternalError, fmt.Sprintf("Internal error: %v", r))
		}

		outcome := "ok"
		if env.IsError() {
			outcome = "error"
			span.SetStatus(codes.Error, env.Err().Message)
			log.Warn("Request failed", map[string]interface{}{
				"code":  env.Err().Code,
				"error": env.Err().Message,
			})
		} else {
			log.Debug("Request handled", map[string]interface{}{
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}
		d.metrics.RPCRequests.WithLabelValues(method, outcome).Inc()
		d.metrics.RPCDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		d.obs.RecordCall(ctx, "rpc:"+method, outcome, time.Since(start))
	}()

	switch method {
	case MethodInitialize:
		return Success(InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      d.info,
			Capabilities: map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
		})
	case MethodToolsList:
		return Success(ToolsListResult{Tools: d.catalog.Tools()})
	case MethodResourcesList:
		return Success(ResourcesListResult{Resources: d.catalog.Resources()})
	case MethodToolsCall:
		return d.callTool(ctx, params.Name, params.Arguments)
	case MethodResourcesRead:
		return d.readResource(ctx, params.URI)
	default:
		return Failure(CodeMethodNotFound, "Method not found: "+method)
	}
}

func (d *Dispatcher) callTool(ctx context.Context, name string, args map[string]interface{}) Envelope {
	handler, ok := d.handlers[name]
	if _, known := d.catalog.Tool(name); !known || !ok {
		return Failure(CodeInvalidParams, "Unknown tool: "+name)
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if err := d.catalog.Validate(name, args); err != nil {
		return invalidArguments(name, err)
	}

	result, err := handler(ctx, d.catalog.WithDefaults(name, args))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidQuery) {
			return invalidArguments(name, err)
		}
		return Failure(CodeInternalError, "Internal error: "+err.Error())
	}
	return Success(result)
}

func invalidArguments(name string, err error) Envelope {
	return Failure(CodeInvalidParams, fmt.Sprintf("Invalid arguments for %s: %v", name, err))
}

func (d *Dispatcher) readResource(ctx context.Context, uri string) Envelope {
	res, ok := d.catalog.Resource(uri)
	if !ok {
		return Failure(CodeInvalidParams, "Unknown resource: "+uri)
	}

	env := d.callTool(ctx, res.Tool, res.Arguments)
	if env.IsError() {
		return env
	}

	text, err := json.Marshal(env.Result())
	if err != nil {
		return Failure(CodeInternalError, "Internal error: "+err.Error())
	}
	return Success(ReadResourceResult{
		Contents: []ResourceContent{{
			URI:      res.URI,
			MimeType: res.MimeType,
			Text:     string(text),
		}},
	})
}

// Call lets the dispatcher serve as an in-process Caller.
func (d *Dispatcher) Call(ctx context.Context, method string, params Params) (Envelope, error) {
	return d.Handle(ctx, method, params), nil
}

// ServeJSON decodes one wire request and renders its response. The boolean is
// false for notifications, which get no response.
func (d *Dispatcher) ServeJSON(ctx context.Context, raw []byte) ([]byte, bool) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		d.metrics.RPCRequests.WithLabelValues("malformed", "error").Inc()
		d.logger.Warn("Malformed request", map[string]interface{}{"error": err.Error()})
		out, _ := EncodeResponse(nil, Failure(CodeInvalidParams, "Invalid request: "+err.Error()))
		return out, true
	}
	if req.IsNotification() {
		d.logger.Debug("Notification received", map[string]interface{}{"method": req.Method})
		return nil, false
	}

	env := d.Handle(ctx, req.Method, req.Params)
	out, err := EncodeResponse(req.ID, env)
	if err != nil {
		out, _ = EncodeResponse(req.ID, Failure(CodeInternalError, "Internal error: "+err.Error()))
	}
	return out, true
}
