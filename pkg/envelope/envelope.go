// Package envelope models the {code, msg, data} wrapper every endpoint answers with.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// StatusCode is the application-level status carried in an envelope.
type StatusCode int

const (
	StatusOK          StatusCode = 200
	StatusClientError StatusCode = 400
	StatusTimeout     StatusCode = 408
	StatusServerError StatusCode = 500
)

// Known reports whether the code is one of the recognized statuses.
func (c StatusCode) Known() bool {
	switch c {
	case StatusOK, StatusClientError, StatusTimeout, StatusServerError:
		return true
	}
	return false
}

func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusClientError:
		return "client_error"
	case StatusTimeout:
		return "timeout"
	case StatusServerError:
		return "server_error"
	default:
		return fmt.Sprintf("status(%d)", int(c))
	}
}

// ErrNotEnvelope is returned when a body does not carry a numeric code.
var ErrNotEnvelope = errors.New("response body is not an envelope")

// Envelope is the uniform response wrapper.
type Envelope[T any] struct {
	Status  StatusCode `json:"code"`
	Message string     `json:"msg"`
	Payload T          `json:"data"`
}

// OK reports whether the envelope carries the success status. Every other
// code, recognized or not, is a warning outcome.
func (e Envelope[T]) OK() bool { return e.Status == StatusOK }

// Header is the part of an envelope readable without decoding the payload.
type Header struct {
	Status  StatusCode
	Message string
}

// Peek reads code and msg from body. The code must be an integral number;
// 200.0 reads as 200.
func Peek(body []byte) (Header, error) {
	if !gjson.ValidBytes(body) {
		return Header{}, ErrNotEnvelope
	}
	code := gjson.GetBytes(body, "code")
	if code.Type != gjson.Number || code.Num != math.Trunc(code.Num) {
		return Header{}, ErrNotEnvelope
	}
	return Header{
		Status:  StatusCode(code.Num),
		Message: gjson.GetBytes(body, "msg").String(),
	}, nil
}

// Decode parses body into an envelope whose payload has type T. Status and
// message come from Peek. For non-ok codes a data value that does not fit T
// is dropped and the envelope is still returned with a zero payload; ok
// envelopes are decoded strictly.
func Decode[T any](body []byte) (Envelope[T], error) {
	hdr, err := Peek(body)
	if err != nil {
		return Envelope[T]{}, err
	}
	env := Envelope[T]{Status: hdr.Status, Message: hdr.Message}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return env, nil
	}
	if err := json.Unmarshal([]byte(data.Raw), &env.Payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !env.OK() && errors.As(err, &typeErr) {
			var zero T
			env.Payload = zero
			return env, nil
		}
		return Envelope[T]{}, fmt.Errorf("decode envelope data: %w", err)
	}
	return env, nil
}
