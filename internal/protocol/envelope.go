// Package protocol implements the business-data tool protocol: a dispatcher
// that answers (method, params) calls with an Envelope, and a client that
// unwraps envelopes into values or *Error.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes are a closed set.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// Envelope holds either a result or an error, never both. The zero value is a
// success with a nil result.
type Envelope struct {
	result interface{}
	err    *Error
}

func Success(result interface{}) Envelope {
	return Envelope{result: result}
}

func Failure(code int, message string) Envelope {
	return Envelope{err: &Error{Code: code, Message: message}}
}

func (e Envelope) IsError() bool { return e.err != nil }

func (e Envelope) Result() interface{} { return e.result }

// Err returns the error payload, or nil for a success.
func (e Envelope) Err() *Error { return e.err }

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.err != nil {
		return json.Marshal(struct {
			Error *Error `json:"error"`
		}{e.err})
	}
	return json.Marshal(struct {
		Result interface{} `json:"result"`
	}{e.result})
}

var errEnvelopeShape = errors.New("envelope must carry exactly one of result or error")

// UnmarshalJSON accepts objects with exactly one of "result" or "error";
// other members such as jsonrpc and id are ignored.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	rawResult, hasResult := fields["result"]
	rawErr, hasErr := fields["error"]
	if hasErr && bytes.Equal(bytes.TrimSpace(rawErr), []byte("null")) {
		hasErr = false
	}
	if hasResult == hasErr {
		return errEnvelopeShape
	}

	if hasErr {
		var pe Error
		if err := json.Unmarshal(rawErr, &pe); err != nil {
			return err
		}
		*e = Envelope{err: &pe}
		return nil
	}

	var result interface{}
	if err := json.Unmarshal(rawResult, &result); err != nil {
		return err
	}
	*e = Envelope{result: result}
	return nil
}
