package fixtures

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/textproto"
)

const (
	jpegHeader = "/9j/4AAQSkZJRgABAQEAYABgAAD/2wBDAAoHBwgHBgoICAgLCgoLDhgQDg0NDh0VFhEYIx8lJCIfIiEmKzcvJik0KSEiMEExNDk7Pj4+JS5ESUM8SDc9Pjv/2wBDAQoLCw4NDhwQEBw7KCIoOzs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozs7Ozv/wAARCAABAAEDASIAAhEBAxEB/8QAFQABAQAAAAAAAAAAAAAAAAAAAAv/xAAUEAEAAAAAAAAAAAAAAAAAAAAA/8QAFQEBAQAAAAAAAAAAAAAAAAAAAAX/xAAUEQEAAAAAAAAAAAAAAAAAAAAA/9oADAMBAAIRAxEAPwCdABmX/9k="
	pngHeader  = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
	gifHeader  = "R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	webpHeader = "UklGRiIAAABXRUJQVlA4IBYAAAAwAQCdASoBAAEADsD+JaQAA3AAAAAA"

	MaxPhotoSize = 5 * 1024 * 1024
)

var (
	ValidJPEG = padded(jpegHeader, 1024)
	ValidPNG  = padded(pngHeader, 1024)
	ValidGIF  = padded(gifHeader, 1024)
	ValidWebP = padded(webpHeader, 1024)

	OversizedJPEG = padded(jpegHeader, MaxPhotoSize+1024)
	PDFDocument   = append([]byte("%PDF-1.7\n"), make([]byte, 1024)...)
)

func padded(header string, size int) []byte {
	data, _ := base64.StdEncoding.DecodeString(header)
	if size <= len(data) {
		return data
	}
	return append(data, make([]byte, size-len(data))...)
}

type PhotoFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (p PhotoFile) Reader() io.Reader {
	return bytes.NewReader(p.Data)
}

func (p PhotoFile) Size() int64 {
	return int64(len(p.Data))
}

var (
	JPEGPhoto      = PhotoFile{Data: ValidJPEG, ContentType: "image/jpeg", Filename: "me.jpg"}
	PNGPhoto       = PhotoFile{Data: ValidPNG, ContentType: "image/png", Filename: "me.png"}
	GIFPhoto       = PhotoFile{Data: ValidGIF, ContentType: "image/gif", Filename: "me.gif"}
	WebPPhoto      = PhotoFile{Data: ValidWebP, ContentType: "image/webp", Filename: "me.webp"}
	OversizedPhoto = PhotoFile{Data: OversizedJPEG, ContentType: "image/jpeg", Filename: "huge.jpg"}
	PDFPhoto       = PhotoFile{Data: PDFDocument, ContentType: "application/pdf", Filename: "cv.pdf"}
)

// MultipartForm encodes fields and an optional file under fileField.
func MultipartForm(fields map[string]string, fileField string, file *PhotoFile) (io.Reader, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+file.Filename+`"`)
		h.Set("Content-Type", file.ContentType)
		part, _ := w.CreatePart(h)
		_, _ = part.Write(file.Data)
	}
	_ = w.Close()

	return &buf, w.FormDataContentType()
}
