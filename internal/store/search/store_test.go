package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/store"
)

type recordedRequest struct {
	path string
	body map[string]interface{}
}

// newTestStore serves canned responses keyed by request path.
func newTestStore(t *testing.T, responses map[string]string) (*Store, *[]recordedRequest) {
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(raw, &body)
		seen = append(seen, recordedRequest{path: r.URL.Path, body: body})

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		resp, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
			return
		}
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return New(client, "biz-", logger.NewTestLogger(t)), &seen
}

func TestFindCustomers_WildcardFilters(t *testing.T) {
	s, seen := newTestStore(t, map[string]string{
		"/biz-customers/_search": `{"hits":{"total":{"value":1},"hits":[
			{"_source":{"id":"c-1","name":"Ana Ruiz","email":"ana@acme.io","company":"Acme","createdAt":"2024-05-01T09:00:00Z"}}
		]}}`,
	})

	got, err := s.FindCustomers(context.Background(), store.CustomerFilter{Company: "acme"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana Ruiz", got[0].Name)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), got[0].CreatedAt.UTC())

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, float64(5), req.body["size"])
	encoded, _ := json.Marshal(req.body["query"])
	assert.Contains(t, string(encoded), `"*acme*"`)
	assert.Contains(t, string(encoded), `"case_insensitive":true`)
}

func TestCountProducts_LowStockScript(t *testing.T) {
	s, seen := newTestStore(t, map[string]string{
		"/biz-products/_count": `{"count":7}`,
	})

	n, err := s.CountProducts(context.Background(), store.ProductFilter{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	encoded, _ := json.Marshal((*seen)[0].body)
	assert.Contains(t, string(encoded), "minStock")
	assert.Contains(t, string(encoded), `"defaultMinStock":10`)
}

func TestFindSales_RangeQuery(t *testing.T) {
	s, seen := newTestStore(t, map[string]string{
		"/biz-sales/_search": `{"hits":{"total":{"value":2},"hits":[
			{"_source":{"id":"s-1","total":10.5,"paymentMethod":"cash","quantity":1,"date":"2024-04-02T10:00:00Z"}},
			{"_source":{"id":"s-2","total":20,"paymentMethod":"card","quantity":2,"date":"2024-04-03T10:00:00Z"}}
		]}}`,
	})

	r := store.DateRange{
		Start: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	}
	got, err := s.FindSales(context.Background(), r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "card", got[1].PaymentMethod)

	encoded, _ := json.Marshal((*seen)[0].body["query"])
	assert.Contains(t, string(encoded), `"gte":"2024-04-01T00:00:00Z"`)
	assert.Contains(t, string(encoded), `"lte":"2024-06-30T23:59:59Z"`)
}

func TestAggregateExpenses_TermsWithSum(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"/biz-expenses/_search": `{"hits":{"total":{"value":5},"hits":[]},
			"aggregations":{"by_category":{"buckets":[
				{"key":"rent","doc_count":1,"total_amount":{"value":1200}},
				{"key":"supplies","doc_count":4,"total_amount":{"value":300.5}}
			]}}}`,
	})

	got, err := s.AggregateExpenses(context.Background(), store.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "rent", got[0].Category)
	assert.Equal(t, 300.5, got[1].Total)
	assert.Equal(t, 4, got[1].Count)
}

func TestSearch_MissingIndex(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{})

	_, err := s.FindExpenses(context.Background(), store.DateRange{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexNotFound)

	stdErr, ok := errs.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodeIndexNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.True(t, strings.Contains(stdErr.Details, "biz-expenses"))
}

func TestSearch_MalformedResponseIsQueryFailure(t *testing.T) {
	s, _ := newTestStore(t, map[string]string{
		"/biz-sales/_search": `{"hits":`,
	})

	_, err := s.FindSales(context.Background(), store.DateRange{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchQueryFailed)

	stdErr, ok := errs.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodeSearchQueryFailed, stdErr.Code)
	assert.Equal(t, "SEARCH", errs.GetErrorCategory(stdErr.Code))
	assert.Contains(t, stdErr.Details, "biz-sales")
}

func TestSearch_UnreachableClusterIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{addr}, DisableRetry: true})
	require.NoError(t, err)
	s := New(client, "biz-", logger.NewTestLogger(t))

	_, err = s.CountCustomers(context.Background(), store.CustomerFilter{})
	require.Error(t, err)

	stdErr, ok := errs.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errs.ErrCodePrimaryStoreUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
