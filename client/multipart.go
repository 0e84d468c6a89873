package client

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// MultipartBody represents a multipart/form-data request body. Pass it as the
// body of a Post or Put call; the pipeline's encoding step produces the
// multipart payload and the boundary-bearing Content-Type header.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload fields.
	Files []FilePart

	// File readers are one-shot, so the first encoding is cached and replayed
	// when the pipeline rebuilds the request for a digest resend.
	encoded     []byte
	contentType string
}

// FilePart is one file in a multipart body.
type FilePart struct {
	// Field is the form field name.
	Field string
	// Name is the file name sent to the server.
	Name string
	// ContentType is the part's MIME type. Empty means application/octet-stream.
	ContentType string
	// Content is the file payload.
	Content io.Reader
}

// encode builds the multipart payload and returns the reader plus the
// Content-Type value carrying the boundary. Subsequent calls replay the
// cached payload.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	if m.encoded != nil {
		return bytes.NewReader(m.encoded), m.contentType, nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		part, err := m.createPart(w, f)
		if err != nil {
			return nil, "", err
		}
		if f.Content != nil {
			if _, err := io.Copy(part, f.Content); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	m.encoded = buf.Bytes()
	m.contentType = w.FormDataContentType()
	return bytes.NewReader(m.encoded), m.contentType, nil
}

// createPart opens the writer for one file part, honoring a custom MIME type.
func (m *MultipartBody) createPart(w *multipart.Writer, f FilePart) (io.Writer, error) {
	if f.ContentType == "" {
		return w.CreateFormFile(f.Field, f.Name)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+escapeQuotes(f.Field)+`"; filename="`+escapeQuotes(f.Name)+`"`)
	header.Set("Content-Type", f.ContentType)
	return w.CreatePart(header)
}

// escapeQuotes escapes quotes and backslashes in disposition values.
func escapeQuotes(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}
