package httpclient

import (
	"fmt"
	"net/http"
	"strings"
)

const maxSnippetBytes = 512

// StatusError is returned by Do when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http response status %d: %s", e.StatusCode, Snippet(e.Body))
}

// Snippet trims a response body for log lines.
func Snippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
