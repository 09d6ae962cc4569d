package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("somase/internal/adapters/services/s3")
	logger = otelslog.NewLogger("somase/internal/adapters/services/s3")
)

const cacheControl = "max-age=604800" // 1 week

type Client struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	s3Client *s3.Client
	bucket   string
}

type Args struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

func NewClient(ctx context.Context, args Args) (*Client, error) {
	const op = "s3.NewClient"
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(args.AccessKey, args.SecretKey, "")),
		config.WithRegion(args.Region),
		config.WithBaseEndpoint(args.Endpoint),
	)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}

	return &Client{
		tracer: tracer,
		logger: logger,
		s3Client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true // Required for MinIO
		}),
		bucket: args.Bucket,
	}, nil
}

// UploadFile stores file under key. Photos are small, so non seekable
// readers are buffered to give the SDK a content length.
func (c *Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) error {
	const op = "s3.Client.UploadFile"
	ctx, span := c.tracer.Start(ctx, "Client.UploadFile", trace.WithAttributes(
		attribute.String("s3.bucket", c.bucket),
		attribute.String("s3.key", key),
		attribute.String("s3.content_type", contentType),
	))
	defer span.End()

	body, ok := file.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(file)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to read upload")
			return errorx.Wrap(err, op)
		}
		body = bytes.NewReader(data)
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to put object")
		return errorx.Wrap(err, op)
	}
	return nil
}

func (c *Client) DeleteFile(ctx context.Context, key string) error {
	const op = "s3.Client.DeleteFile"
	ctx, span := c.tracer.Start(ctx, "Client.DeleteFile", trace.WithAttributes(
		attribute.String("s3.bucket", c.bucket),
		attribute.String("s3.key", key),
	))
	defer span.End()

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to delete object")
		return errorx.Wrap(err, op)
	}
	return nil
}

func (c *Client) GetObject(ctx context.Context, key string) ([]byte, error) {
	const op = "s3.Client.GetObject"
	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}
	defer func() {
		if cerr := output.Body.Close(); cerr != nil {
			c.logger.WarnContext(ctx, "failed to close S3 object body", slog.String("error", cerr.Error()))
		}
	}()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errorx.Wrap(err, op)
	}

	return data, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (c *Client) EnsureBucket(ctx context.Context) error {
	const op = "s3.Client.EnsureBucket"
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err == nil {
		return nil
	}

	_, err = c.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return errorx.Wrap(err, op)
	}

	c.logger.InfoContext(ctx, "s3 bucket ready", slog.String("s3.bucket", c.bucket))
	return nil
}

func (c *Client) Bucket() string {
	return c.bucket
}
