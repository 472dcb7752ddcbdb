package errhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/samvad-http-facade/pkg/envelope"
	"github.com/samvad-hq/samvad-http-facade/pkg/httpclient"
)

// Class groups transport failures for diagnostics. Every class is handled
// the same way.
type Class string

const (
	ClassCancelled  Class = "cancelled"
	ClassTimeout    Class = "timeout"
	ClassHTTPStatus Class = "http_status"
	ClassDecode     Class = "decode"
	ClassNetwork    Class = "network"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Failure is the diagnostic view of a transport error.
type Failure struct {
	Class      Class  `json:"class"`
	StatusCode int    `json:"status_code,omitempty"`
	Method     string `json:"method,omitempty"`
	URL        string `json:"url,omitempty"`
	Detail     string `json:"detail"`
}

// requestInfo is implemented by errors that know which request failed.
type requestInfo interface {
	RequestMethod() string
	RequestURL() string
}

// Describe classifies err.
func Describe(err error) Failure {
	f := Failure{Class: ClassNetwork}
	if err == nil {
		return f
	}
	f.Detail = err.Error()

	var info requestInfo
	if errors.As(err, &info) {
		f.Method = info.RequestMethod()
		f.URL = info.RequestURL()
	}

	var statusErr *httpclient.StatusError
	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, context.Canceled):
		f.Class = ClassCancelled
	case errors.Is(err, context.DeadlineExceeded):
		f.Class = ClassTimeout
	case errors.As(err, &statusErr):
		f.Class = ClassHTTPStatus
		f.StatusCode = statusErr.StatusCode
		f.Detail = summarizeBody(statusErr.Header, statusErr.Body)
		if f.Detail == "" {
			f.Detail = http.StatusText(statusErr.StatusCode)
		}
	case errors.Is(err, envelope.ErrNotEnvelope), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		f.Class = ClassDecode
	case errors.As(err, &netErr) && netErr.Timeout():
		f.Class = ClassTimeout
	}
	return f
}

// Reason is the short phrase shown to the user.
func (f Failure) Reason() string {
	switch f.Class {
	case ClassTimeout:
		return "request timed out"
	case ClassHTTPStatus:
		if f.Detail != "" {
			return f.Detail
		}
		return "server error"
	case ClassDecode:
		return "unexpected response"
	case ClassCancelled:
		return "cancelled"
	default:
		return "network unavailable"
	}
}

// summarizeBody turns an error page into one line. HTML pages are reduced to
// their title or first heading.
func summarizeBody(header http.Header, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if isHTML(header, body) {
		if len(body) > maxHTMLBodyBytes {
			body = body[:maxHTMLBodyBytes]
		}
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	if hdr, err := envelope.Peek(body); err == nil && hdr.Message != "" {
		return hdr.Message
	}
	return httpclient.Snippet(body)
}

func isHTML(header http.Header, body []byte) bool {
	if ct := header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			return mt == "text/html"
		}
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 64)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return firstNonEmpty(
		doc.Find("title").First().Text(),
		doc.Find("h1").First().Text(),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
