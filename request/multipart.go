package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// Multipart is a replayable multipart/form-data body. Each Open encodes the
// form again, re-reading files from disk.
type Multipart struct {
	// Fields are simple key-value form fields, sent in order.
	Fields []Field
	// Files are file upload fields, sent after Fields.
	Files []FileField
}

// Field is a simple form field.
type Field struct {
	Name  string
	Value string
}

// FileField represents a file to upload.
type FileField struct {
	// FieldName is the form field name (e.g., "file").
	FieldName string
	// FileName is the file name sent to the server. Defaults to the base
	// name of Path.
	FileName string
	// ContentType is the MIME type. If empty, uses application/octet-stream.
	ContentType string
	// Path is read on every Open. Used if Data is nil.
	Path string
	// Data is the file content.
	Data []byte
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a form field.
func (m *Multipart) AddField(name, value string) *Multipart {
	m.Fields = append(m.Fields, Field{Name: name, Value: value})
	return m
}

// AddFile appends a file part read from path.
func (m *Multipart) AddFile(fieldName, path string) *Multipart {
	m.Files = append(m.Files, FileField{FieldName: fieldName, FileName: filepath.Base(path), Path: path})
	return m
}

// AddFileBytes appends a file part with in-memory content.
func (m *Multipart) AddFileBytes(fieldName, fileName string, data []byte) *Multipart {
	m.Files = append(m.Files, FileField{FieldName: fieldName, FileName: fileName, Data: data})
	return m
}

// Open implements Body. Files given by path are opened before Open returns
// so a missing file fails the attempt before any I/O; their content is
// streamed while the transport reads.
func (m *Multipart) Open() (io.ReadCloser, string, error) {
	sources := make([]io.ReadCloser, len(m.Files))
	closeAll := func() {
		for _, s := range sources {
			if s != nil {
				_ = s.Close()
			}
		}
	}
	for i, f := range m.Files {
		if f.Data != nil || f.Path == "" {
			sources[i] = io.NopCloser(bytes.NewReader(f.Data))
			continue
		}
		file, err := os.Open(f.Path)
		if err != nil {
			closeAll()
			return nil, "", fmt.Errorf("request: opening %s: %w", f.Path, err)
		}
		sources[i] = file
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	go func() {
		defer closeAll()
		pw.CloseWithError(m.encode(w, sources))
	}()
	return pr, w.FormDataContentType(), nil
}

func (m *Multipart) encode(w *multipart.Writer, sources []io.ReadCloser) error {
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}

	for i, f := range m.Files {
		name := f.FileName
		if name == "" && f.Path != "" {
			name = filepath.Base(f.Path)
		}

		var part io.Writer
		var err error
		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(name)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, name)
		}
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, sources[i]); err != nil {
			return err
		}
	}

	return w.Close()
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
