package facade

import (
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/samvad-hq/samvad-http-facade/pkg/httpclient"
)

// EncodingMode selects how Post serializes its parameters.
type EncodingMode int

const (
	// EncodingDefault sends a URL-encoded key/value body.
	EncodingDefault EncodingMode = iota
	// EncodingJSON sends the params value verbatim as a JSON body.
	EncodingJSON
	// EncodingMultipart sends a multipart form.
	EncodingMultipart
)

func (m EncodingMode) String() string {
	switch m {
	case EncodingDefault:
		return "default"
	case EncodingJSON:
		return "json"
	case EncodingMultipart:
		return "multipart"
	default:
		return fmt.Sprintf("encoding(%d)", int(m))
	}
}

// ParseEncodingMode maps a mode name to its EncodingMode.
func ParseEncodingMode(s string) (EncodingMode, error) {
	switch s {
	case "", "default", "form":
		return EncodingDefault, nil
	case "json":
		return EncodingJSON, nil
	case "multipart", "formdata":
		return EncodingMultipart, nil
	default:
		return EncodingDefault, fmt.Errorf("unknown encoding mode %q", s)
	}
}

// Params is a key/value parameter mapping. Values are rendered with
// fmt.Sprint; []string values repeat the key.
type Params map[string]any

// ErrUnsupportedParams is returned when params cannot be read as key/value pairs.
var ErrUnsupportedParams = errors.New("params are not a key/value mapping")

// MultipartForm is re-exported for callers building binary bodies.
type MultipartForm = httpclient.MultipartForm

// NewMultipartForm returns an empty multipart form.
func NewMultipartForm() *MultipartForm { return httpclient.NewMultipartForm() }

// toValues renders params as URL key/value pairs. Empty values are kept.
func toValues(params any) (url.Values, error) {
	out := url.Values{}
	switch p := params.(type) {
	case nil:
	case url.Values:
		for k, vs := range p {
			out[k] = append([]string(nil), vs...)
		}
	case map[string]string:
		for k, v := range p {
			out.Set(k, v)
		}
	case Params:
		addAll(out, p)
	case map[string]any:
		addAll(out, p)
	case *httpclient.MultipartForm:
		return p.Values(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedParams, params)
	}
	return out, nil
}

func addAll(out url.Values, m map[string]any) {
	for k, v := range m {
		switch vv := v.(type) {
		case nil:
			out.Add(k, "")
		case string:
			out.Add(k, vv)
		case []string:
			for _, s := range vv {
				out.Add(k, s)
			}
		default:
			out.Add(k, fmt.Sprint(vv))
		}
	}
}

// toMultipart returns params as a multipart form. An existing form is passed
// through untouched; maps are copied key by key.
func toMultipart(params any) (*httpclient.MultipartForm, error) {
	switch p := params.(type) {
	case *httpclient.MultipartForm:
		if p == nil {
			return httpclient.NewMultipartForm(), nil
		}
		return p, nil
	case Params:
		return multipartFromMap(p), nil
	case map[string]any:
		return multipartFromMap(p), nil
	}

	values, err := toValues(params)
	if err != nil {
		return nil, err
	}
	form := httpclient.NewMultipartForm()
	for _, k := range sortedKeys(values) {
		for _, v := range values[k] {
			form.Append(k, v)
		}
	}
	return form, nil
}

func multipartFromMap(m map[string]any) *httpclient.MultipartForm {
	form := httpclient.NewMultipartForm()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case httpclient.MultipartFile:
			field := v.Field
			if field == "" {
				field = k
			}
			form.AppendFile(field, v.FileName, v.ContentType, v.Content)
		case []byte:
			form.AppendFile(k, k, "application/octet-stream", v)
		default:
			single := url.Values{}
			addAll(single, map[string]any{k: v})
			for _, s := range single[k] {
				form.Append(k, s)
			}
		}
	}
	return form
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flatten turns url.Values into a JSON-friendly map: single values become
// strings, repeated ones stay lists.
func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}
