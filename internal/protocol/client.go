package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"business-assistant/internal/catalog"
	"business-assistant/internal/models"
)

// Caller delivers one call to a dispatcher, in process or remote. A non-nil
// error means the call never produced an envelope.
type Caller interface {
	Call(ctx context.Context, method string, params Params) (Envelope, error)
}

// Client unwraps envelopes: a success yields the result, an error envelope
// yields *Error and no result.
type Client struct {
	caller Caller
}

func NewClient(caller Caller) *Client {
	return &Client{caller: caller}
}

func (c *Client) call(ctx context.Context, method string, params Params) (interface{}, error) {
	env, err := c.caller.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if env.IsError() {
		return nil, env.Err()
	}
	return env.Result(), nil
}

func (c *Client) InvokeTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	return c.call(ctx, MethodToolsCall, Params{Name: name, Arguments: args})
}

// CallTool invokes a data tool and decodes its result as a DataAnswer.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]interface{}) (models.DataAnswer, error) {
	raw, err := c.InvokeTool(ctx, name, args)
	if err != nil {
		return models.DataAnswer{}, err
	}
	return decodeResult[models.DataAnswer](raw)
}

func (c *Client) ReadResource(ctx context.Context, uri string) (ReadResourceResult, error) {
	raw, err := c.call(ctx, MethodResourcesRead, Params{URI: uri})
	if err != nil {
		return ReadResourceResult{}, err
	}
	return decodeResult[ReadResourceResult](raw)
}

func (c *Client) ListTools(ctx context.Context) ([]catalog.ToolDescriptor, error) {
	raw, err := c.call(ctx, MethodToolsList, Params{})
	if err != nil {
		return nil, err
	}
	res, err := decodeResult[ToolsListResult](raw)
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}

func (c *Client) ListResources(ctx context.Context) ([]catalog.ResourceDescriptor, error) {
	raw, err := c.call(ctx, MethodResourcesList, Params{})
	if err != nil {
		return nil, err
	}
	res, err := decodeResult[ResourcesListResult](raw)
	if err != nil {
		return nil, err
	}
	return res.Resources, nil
}

// decodeResult accepts the typed value an in-process dispatcher returns, or
// the generic JSON tree a remote one yields.
func decodeResult[T any](raw interface{}) (T, error) {
	var out T
	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("encode result: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode result as %T: %w", out, err)
	}
	return out, nil
}
