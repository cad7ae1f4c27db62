package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/gateway"
	"business-assistant/internal/protocol"
	"business-assistant/internal/store/snapshot"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newDispatcher(t *testing.T) *protocol.Dispatcher {
	t.Helper()
	log := logger.NewTestLogger(t)
	return protocol.NewDispatcher(catalog.New(), gateway.New(nil, snapshot.Empty(), log), log)
}

func decodeLines(t *testing.T, out string) []map[string]json.RawMessage {
	t.Helper()
	var lines []map[string]json.RawMessage
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestServe_AnswersInOrder(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"query_customers","arguments":{"limit":5}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"bogus"}`,
	}, "\n")
	var out bytes.Buffer

	err := New(newDispatcher(t), &out, logger.NewTestLogger(t)).Serve(context.Background(), strings.NewReader(in))
	require.NoError(t, err)

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 4, "notifications and blank lines get no response")
	for i, id := range []string{"1", "2", "3", "4"} {
		assert.JSONEq(t, id, string(lines[i]["id"]))
	}
	assert.Contains(t, lines[2], "result")
	assert.JSONEq(t, `{"code":-32601,"message":"Method not found: bogus"}`, string(lines[3]["error"]))
}

func TestServe_MalformedLineKeepsServing(t *testing.T) {
	in := "{oops\n" + `{"jsonrpc":"2.0","id":9,"method":"resources/list"}` + "\n"
	var out bytes.Buffer

	require.NoError(t, New(newDispatcher(t), &out, logger.NewTestLogger(t)).Serve(context.Background(), strings.NewReader(in)))

	lines := decodeLines(t, out.String())
	require.Len(t, lines, 2)
	assert.JSONEq(t, `null`, string(lines[0]["id"]))
	assert.Contains(t, string(lines[0]["error"]), "-32602")
	assert.JSONEq(t, `9`, string(lines[1]["id"]))
}

func TestServe_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- New(newDispatcher(t), io.Discard, logger.NewNoOpLogger()).Serve(ctx, pr)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	// unblock the scanner goroutine
	_ = pw.Close()
	_ = pr.Close()
}
