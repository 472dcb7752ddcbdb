package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestRestyClientDoSendsQueryWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("a"); got != "1" {
			t.Errorf("query a = %q", got)
		}
		if _, ok := r.URL.Query()["empty"]; !ok {
			t.Errorf("empty query value was dropped: %s", r.URL.RawQuery)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("expected no body, got %q", body)
		}
		w.Write([]byte(`{"code":200}`))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Query:  url.Values{"a": {"1"}, "empty": {""}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
}

func TestRestyClientDoEncodesBodies(t *testing.T) {
	var contentType string
	var form url.Values
	var decoded map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		switch r.URL.Path {
		case "/form":
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
			}
			form = r.PostForm
		case "/multipart":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
			}
			form = url.Values(r.MultipartForm.Value)
			if files := r.MultipartForm.File["doc"]; len(files) != 1 || files[0].Filename != "a.txt" {
				t.Errorf("unexpected file parts %#v", r.MultipartForm.File)
			}
		case "/json":
			if err := json.NewDecoder(r.Body).Decode(&decoded); err != nil {
				t.Errorf("decode json: %v", err)
			}
		}
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	ctx := context.Background()

	if _, err := client.Do(ctx, Request{Method: http.MethodPost, URL: srv.URL + "/form", Form: url.Values{"x": {"1"}}}); err != nil {
		t.Fatalf("form Do: %v", err)
	}
	if contentType != "application/x-www-form-urlencoded" || form.Get("x") != "1" {
		t.Fatalf("form body not urlencoded: %s %v", contentType, form)
	}

	mf := NewMultipartForm()
	mf.Append("x", "1")
	mf.AppendFile("doc", "a.txt", "text/plain", []byte("hello"))
	if _, err := client.Do(ctx, Request{Method: http.MethodPost, URL: srv.URL + "/multipart", Multipart: mf}); err != nil {
		t.Fatalf("multipart Do: %v", err)
	}
	if form.Get("x") != "1" {
		t.Fatalf("multipart field missing: %v", form)
	}

	if _, err := client.Do(ctx, Request{Method: http.MethodPut, URL: srv.URL + "/json", JSONBody: map[string]any{"x": "1"}}); err != nil {
		t.Fatalf("json Do: %v", err)
	}
	if contentType != "application/json" || decoded["x"] != "1" {
		t.Fatalf("json body not sent verbatim: %s %v", contentType, decoded)
	}
}

func TestRestyClientDoReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRestyClient(time.Second).Do(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || Snippet(statusErr.Body) != "nope" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestMultipartFormKeepsInsertionOrder(t *testing.T) {
	mf := NewMultipartForm()
	mf.Append("b", "1")
	mf.Append("a", "2")
	mf.Append("b", "3")

	keys := mf.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("unexpected key order %v", keys)
	}
	if mf.Len() != 3 {
		t.Fatalf("expected 3 parts, got %d", mf.Len())
	}
}
