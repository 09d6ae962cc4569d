package httpx

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

const (
	// MaxMultipartSize caps a whole multipart request. Attachments below it are
	// still checked against their own size limits by the handlers.
	MaxMultipartSize  = 16 << 20
	multipartMemory   = 8 << 20
	sniffLen          = 512
	MultipartFormData = "multipart/form-data"
)

// Upload is a file taken from a multipart form. ContentType is sniffed from
// the first bytes of the file, never taken from the client's part header.
type Upload struct {
	File        multipart.File
	Filename    string
	Size        int64
	ContentType string
}

func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == MultipartFormData
}

// ParseMultipart parses a multipart body of at most MaxMultipartSize bytes.
func ParseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxMultipartSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return errorx.New(errorx.CodeInvalidAttachment, i18nx.KeyInvalidAttachment).
				WithHTTPCode(http.StatusRequestEntityTooLarge).
				WithCause(err)
		}
		return errorx.NewInvalidRequest().WithCause(err)
	}
	return nil
}

// FormFile returns the named upload of a parsed multipart form, or nil when
// the field is absent or empty.
func FormFile(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errorx.NewInvalidRequest().WithCause(err)
	}
	if header.Size == 0 {
		_ = file.Close()
		return nil, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = file.Close()
		return nil, errorx.NewInvalidRequest().WithCause(err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, errorx.NewInvalidRequest().WithCause(err)
	}

	return &Upload{
		File:        file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: http.DetectContentType(head[:n]),
	}, nil
}

func (u *Upload) Close() error {
	if u == nil || u.File == nil {
		return nil
	}
	return u.File.Close()
}
