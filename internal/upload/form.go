package upload

import (
	"io"
	"mime/multipart"
	"sort"
)

// Part is one uploaded file of a request.
type Part interface {
	// Filename is the name the client sent.
	Filename() string
	// Open returns the part content as a byte stream.
	Open() (io.ReadCloser, error)
}

// Form exposes the uploaded parts of a request by field name.
type Form interface {
	Part(field string) (Part, bool)
	// Parts returns every uploaded part ordered by field name.
	Parts() []Part
}

type multipartPart struct {
	fh *multipart.FileHeader
}

func (p multipartPart) Filename() string { return p.fh.Filename }

func (p multipartPart) Open() (io.ReadCloser, error) { return p.fh.Open() }

type multipartForm struct {
	form *multipart.Form
}

// FromMultipart adapts a parsed multipart form. A nil form has no parts.
func FromMultipart(form *multipart.Form) Form {
	return multipartForm{form: form}
}

func (f multipartForm) Part(field string) (Part, bool) {
	if f.form == nil {
		return nil, false
	}
	headers := f.form.File[field]
	if len(headers) == 0 {
		return nil, false
	}
	return multipartPart{fh: headers[0]}, true
}

func (f multipartForm) Parts() []Part {
	if f.form == nil {
		return nil
	}
	fields := make([]string, 0, len(f.form.File))
	for field := range f.form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []Part
	for _, field := range fields {
		for _, fh := range f.form.File[field] {
			parts = append(parts, multipartPart{fh: fh})
		}
	}
	return parts
}
