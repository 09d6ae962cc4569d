package photo

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
)

const (
	MinSize = 100             // 100 bytes
	MaxSize = 5 * 1024 * 1024 // 5 MiB
)

// Prefix is the top level folder of an object key.
type Prefix string

const (
	PrefixProfile   Prefix = "profile_photos"
	PrefixCandidate Prefix = "candidate_photos"
)

var AllowedContentTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var (
	ErrInvalidFileType = validation.NewError(i18nx.ValidationInvalidFileType, i18nx.MsgValidationInvalidFileType).
				SetParams(map[string]any{i18nx.ArgList: strings.Join(AllowedContentTypes, ", ")})
	ErrTooLarge = validation.NewError(i18nx.ValidationFileSizeTooLarge, i18nx.MsgValidationFileSizeTooLarge).
			SetParams(map[string]any{i18nx.ArgThreshold: MaxSize / (1024 * 1024), i18nx.ArgUnit: "MB"})
	ErrTooSmall = validation.NewError(i18nx.ValidationFileSizeTooSmall, i18nx.MsgValidationFileSizeTooSmall).
			SetParams(map[string]any{i18nx.ArgThreshold: MinSize, i18nx.ArgUnit: "bytes"})
)

// Photo is a stored image: its object key and the public URL built from it.
type Photo struct {
	S3Key string
	URL   string
}

func (p Photo) IsZero() bool {
	return p.S3Key == "" && p.URL == ""
}

type Service struct {
	baseURL string
	now     func() time.Time
}

func NewService(baseURL string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *Service) ValidateFile(contentType string, size int64) error {
	const op = "photo.Service.ValidateFile"

	allowed := false
	for _, ct := range AllowedContentTypes {
		if contentType == ct {
			allowed = true
			break
		}
	}
	if !allowed {
		return errorx.Wrap(ErrInvalidFileType, op)
	}
	if size > MaxSize {
		return errorx.Wrap(ErrTooLarge, op)
	}
	if size < MinSize {
		return errorx.Wrap(ErrTooSmall, op)
	}

	return nil
}

// GenerateS3Key returns "<prefix>/<ownerID>/<unix millis>".
func (s *Service) GenerateS3Key(prefix Prefix, ownerID string) string {
	return fmt.Sprintf("%s/%s/%d", prefix, ownerID, s.now().UnixMilli())
}

func (s *Service) BuildURL(s3Key string) string {
	if s3Key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", s.baseURL, s3Key)
}

func (s *Service) New(s3Key string) Photo {
	return Photo{S3Key: s3Key, URL: s.BuildURL(s3Key)}
}
