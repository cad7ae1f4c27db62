// Package search implements store.PrimaryStore on Elasticsearch indices
// named <prefix>customers, <prefix>products, <prefix>sales and
// <prefix>expenses. Documents use the JSON shape of the models package.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

var (
	ErrSearchQueryFailed = stderrors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = stderrors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound     = stderrors.New("INDEX_NOT_FOUND")
)

// maxRangeHits bounds date-range reads, which are not paginated.
const maxRangeHits = 10000

type Store struct {
	client      *elasticsearch.Client
	indexPrefix string
	logger      logger.Logger
}

func New(client *elasticsearch.Client, indexPrefix string, log logger.Logger) *Store {
	return &Store{
		client:      client,
		indexPrefix: indexPrefix,
		logger:      logger.Component(log, "search-store"),
	}
}

var _ store.PrimaryStore = (*Store)(nil)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
}

type countResponse struct {
	Count int `json:"count"`
}

func (s *Store) index(entity models.Entity) string {
	return s.indexPrefix + string(entity)
}

func (s *Store) FindCustomers(ctx context.Context, filter store.CustomerFilter, limit int) ([]models.Customer, error) {
	body := map[string]interface{}{
		"query": customerQuery(filter),
		"size":  limit,
		"sort":  []map[string]interface{}{{"createdAt": "desc"}},
	}
	var out []models.Customer
	if _, err := s.search(ctx, models.EntityCustomers, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountCustomers(ctx context.Context, filter store.CustomerFilter) (int, error) {
	return s.count(ctx, models.EntityCustomers, customerQuery(filter))
}

func (s *Store) FindProducts(ctx context.Context, filter store.ProductFilter, limit int) ([]models.Product, error) {
	body := map[string]interface{}{
		"query": productQuery(filter),
		"size":  limit,
		"sort":  []map[string]interface{}{{"name": "asc"}},
	}
	var out []models.Product
	if _, err := s.search(ctx, models.EntityProducts, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountProducts(ctx context.Context, filter store.ProductFilter) (int, error) {
	return s.count(ctx, models.EntityProducts, productQuery(filter))
}

func (s *Store) FindSales(ctx context.Context, r store.DateRange) ([]models.Sale, error) {
	body := map[string]interface{}{
		"query": rangeQuery("date", r),
		"size":  maxRangeHits,
		"sort":  []map[string]interface{}{{"date": "asc"}},
	}
	var out []models.Sale
	if _, err := s.search(ctx, models.EntitySales, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) FindExpenses(ctx context.Context, r store.DateRange) ([]models.Expense, error) {
	body := map[string]interface{}{
		"query": rangeQuery("date", r),
		"size":  maxRangeHits,
		"sort":  []map[string]interface{}{{"date": "asc"}},
	}
	var out []models.Expense
	if _, err := s.search(ctx, models.EntityExpenses, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type categoryAggregation struct {
	ByCategory struct {
		Buckets []struct {
			Key      string `json:"key"`
			DocCount int    `json:"doc_count"`
			Amount   struct {
				Value float64 `json:"value"`
			} `json:"total_amount"`
		} `json:"buckets"`
	} `json:"by_category"`
}

func (s *Store) AggregateExpenses(ctx context.Context, r store.DateRange) ([]models.CategoryTotal, error) {
	body := map[string]interface{}{
		"query": rangeQuery("date", r),
		"size":  0,
		"aggs": map[string]interface{}{
			"by_category": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "category",
					"size":  100,
					"order": map[string]interface{}{"total_amount": "desc"},
				},
				"aggs": map[string]interface{}{
					"total_amount": map[string]interface{}{
						"sum": map[string]interface{}{"field": "amount"},
					},
				},
			},
		},
	}

	res, err := s.search(ctx, models.EntityExpenses, body, nil)
	if err != nil {
		return nil, err
	}

	var agg categoryAggregation
	if len(res.Aggregations) > 0 {
		if err := json.Unmarshal(res.Aggregations, &agg); err != nil {
			return nil, s.queryFailed(models.EntityExpenses, "decode aggregation", err)
		}
	}

	out := make([]models.CategoryTotal, 0, len(agg.ByCategory.Buckets))
	for _, b := range agg.ByCategory.Buckets {
		out = append(out, models.CategoryTotal{Category: b.Key, Total: b.Amount.Value, Count: b.DocCount})
	}
	return out, nil
}

// search runs body against the entity index and decodes hits into dest when
// dest is non-nil.
func (s *Store) search(ctx context.Context, entity models.Entity, body map[string]interface{}, dest interface{}) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, s.queryFailed(entity, "encode query", err)
	}

	req := esapi.SearchRequest{
		Index:          []string{s.index(entity)},
		Body:           bytes.NewReader(payload),
		TrackTotalHits: true,
	}

	start := time.Now()
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, s.wrap(ctx, entity, err)
	}
	defer res.Body.Close()

	if err := responseError(res, s.index(entity)); err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, s.queryFailed(entity, "decode response", err)
	}

	if dest != nil {
		docs := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
		for _, h := range parsed.Hits.Hits {
			docs = append(docs, h.Source)
		}
		raw, _ := json.Marshal(docs)
		if err := json.Unmarshal(raw, dest); err != nil {
			return nil, s.queryFailed(entity, "decode documents", err)
		}
	}

	s.logger.Debug("search completed", map[string]interface{}{
		"index": s.index(entity),
		"hits":  len(parsed.Hits.Hits),
		"took":  time.Since(start).Milliseconds(),
	})
	return &parsed, nil
}

func (s *Store) count(ctx context.Context, entity models.Entity, query map[string]interface{}) (int, error) {
	payload, err := json.Marshal(map[string]interface{}{"query": query})
	if err != nil {
		return 0, s.queryFailed(entity, "encode query", err)
	}

	req := esapi.CountRequest{
		Index: []string{s.index(entity)},
		Body:  bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return 0, s.wrap(ctx, entity, err)
	}
	defer res.Body.Close()

	if err := responseError(res, s.index(entity)); err != nil {
		return 0, err
	}

	var parsed countResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, s.queryFailed(entity, "decode count", err)
	}
	return parsed.Count, nil
}

func responseError(res *esapi.Response, index string) error {
	if !res.IsError() {
		return nil
	}
	if res.StatusCode == http.StatusNotFound {
		return errors.NewIndexNotFoundError(index, fmt.Errorf("%w: %s", ErrIndexNotFound, index))
	}
	return errors.NewSearchQueryFailedError(index, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.String()))
}

func (s *Store) queryFailed(entity models.Entity, step string, err error) error {
	return errors.NewSearchQueryFailedError(s.index(entity), fmt.Errorf("%w: %s: %v", ErrSearchQueryFailed, step, err))
}

// wrap classifies a transport error. Anything but a deadline means the
// cluster could not be reached.
func (s *Store) wrap(ctx context.Context, entity models.Entity, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(string(entity), fmt.Errorf("%w: %s", ErrSearchTimeout, entity))
	}
	return errors.NewPrimaryStoreUnavailableError(string(entity), fmt.Errorf("%w: %s: %v", ErrSearchQueryFailed, entity, err))
}
