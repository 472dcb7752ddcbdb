package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

var _ Client = (*RestyClient)(nil)

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Do executes req. Transport failures are returned as-is; non-2xx answers
// come back as *StatusError.
func (r *RestyClient) Do(ctx context.Context, req Request) (Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParamsFromValues(req.Query)
	}

	switch {
	case req.Multipart != nil:
		rr.SetMultipartFields(multipartFields(req.Multipart)...)
	case req.Form != nil:
		rr.SetFormDataFromValues(req.Form)
	case req.JSONBody != nil:
		rr.SetHeader("Content-Type", "application/json")
		rr.SetBody(req.JSONBody)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &StatusError{
			StatusCode: resp.StatusCode(),
			Header:     resp.Header(),
			Body:       resp.Body(),
		}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func multipartFields(form *MultipartForm) []*resty.MultipartField {
	fields := make([]*resty.MultipartField, 0, form.Len())
	values := form.Values()
	for _, key := range form.Keys() {
		for _, v := range values[key] {
			fields = append(fields, &resty.MultipartField{
				Param:  key,
				Reader: bytes.NewReader([]byte(v)),
			})
		}
	}
	for _, f := range form.Files() {
		fields = append(fields, &resty.MultipartField{
			Param:       f.Field,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Content),
		})
	}
	return fields
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
