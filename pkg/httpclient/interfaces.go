package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Request describes one outgoing call. Only one body is sent: Multipart wins
// over Form, and Form wins over JSONBody.
type Request struct {
	Method    string
	URL       string
	Query     url.Values
	Form      url.Values
	JSONBody  any
	Multipart *MultipartForm
	Headers   map[string]string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
