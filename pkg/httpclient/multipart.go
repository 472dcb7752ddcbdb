package httpclient

import "net/url"

// MultipartFile is a binary part of a MultipartForm.
type MultipartFile struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// MultipartForm is an ordered, binary-capable form body.
type MultipartForm struct {
	keys   []string
	fields url.Values
	files  []MultipartFile
}

// NewMultipartForm returns an empty form.
func NewMultipartForm() *MultipartForm {
	return &MultipartForm{fields: url.Values{}}
}

// Append adds a text field. Repeated keys keep every value.
func (f *MultipartForm) Append(key, value string) {
	if f.fields == nil {
		f.fields = url.Values{}
	}
	if _, ok := f.fields[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.fields.Add(key, value)
}

// AppendFile adds a file part.
func (f *MultipartForm) AppendFile(field, fileName, contentType string, content []byte) {
	f.files = append(f.files, MultipartFile{
		Field:       field,
		FileName:    fileName,
		ContentType: contentType,
		Content:     append([]byte(nil), content...),
	})
}

// Get returns the first value stored for key.
func (f *MultipartForm) Get(key string) string {
	if f == nil {
		return ""
	}
	return f.fields.Get(key)
}

// Keys returns field names in insertion order.
func (f *MultipartForm) Keys() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.keys...)
}

// Values returns a copy of the text fields.
func (f *MultipartForm) Values() url.Values {
	out := url.Values{}
	if f == nil {
		return out
	}
	for k, vs := range f.fields {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Files returns the file parts.
func (f *MultipartForm) Files() []MultipartFile {
	if f == nil {
		return nil
	}
	return append([]MultipartFile(nil), f.files...)
}

// Len reports the number of parts.
func (f *MultipartForm) Len() int {
	if f == nil {
		return 0
	}
	n := len(f.files)
	for _, vs := range f.fields {
		n += len(vs)
	}
	return n
}
