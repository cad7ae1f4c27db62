package protocol

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"business-assistant/internal/catalog"
	"business-assistant/internal/gateway"
	"business-assistant/internal/models"
)

// DataReader is the gateway surface the tool handlers call.
type DataReader interface {
	Customers(ctx context.Context, q gateway.CustomerQuery) (models.DataAnswer, error)
	Products(ctx context.Context, q gateway.ProductQuery) (models.DataAnswer, error)
	Sales(ctx context.Context, q gateway.SalesQuery) (models.DataAnswer, error)
	FinancialReport(ctx context.Context, q gateway.FinancialQuery) (models.DataAnswer, error)
	Overview(ctx context.Context, q gateway.OverviewQuery) (models.DataAnswer, error)
}

var _ DataReader = (*gateway.Gateway)(nil)

// ToolHandler receives arguments that already passed schema validation and
// carry their defaults.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

func decodeArgs(args map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrInvalidQuery, err)
	}
	return nil
}

func handlerFor[Q any](read func(context.Context, Q) (models.DataAnswer, error)) ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		var q Q
		if err := decodeArgs(args, &q); err != nil {
			return nil, err
		}
		return read(ctx, q)
	}
}

// GatewayHandlers binds every catalog tool to its gateway read.
func GatewayHandlers(r DataReader) map[string]ToolHandler {
	return map[string]ToolHandler{
		catalog.ToolQueryCustomers:          handlerFor(r.Customers),
		catalog.ToolQueryProducts:           handlerFor(r.Products),
		catalog.ToolAnalyzeSales:            handlerFor(r.Sales),
		catalog.ToolGenerateFinancialReport: handlerFor(r.FinancialReport),
		catalog.ToolGetBusinessOverview:     handlerFor(r.Overview),
	}
}
