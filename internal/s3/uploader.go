// console/internal/s3/uploader.go
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"enquiry-admin-console/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrBadLink = errors.New("malformed s3 link")

// Uploader archives exported files and signs quote attachment links.
type Uploader struct {
	Client           *s3.Client
	Bucket           string
	Region           string
	CloudFrontDomain string
	ArchivePrefix    string

	presigner *s3.PresignClient
	ttl       time.Duration
}

func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig)
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Uploader{
		Client:           client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
		ArchivePrefix:    strings.Trim(cfg.ArchivePrefix, "/"),
		presigner:        s3.NewPresignClient(client),
		ttl:              ttl,
	}, nil
}

// UploadFile uploads a file to S3 and returns its URL.
func (u *Uploader) UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error) {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return u.ObjectURL(objectKey), nil
}

// ObjectURL is the public URL of a key, through CloudFront when configured.
func (u *Uploader) ObjectURL(objectKey string) string {
	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
}

// ArchiveKey is the object key of a quote export taken at t.
func (u *Uploader) ArchiveKey(enquiryID string, t time.Time) string {
	name := fmt.Sprintf("%s/quotes-%s.xlsx", enquiryID, t.UTC().Format("20060102T150405Z"))
	if u.ArchivePrefix == "" {
		return name
	}
	return u.ArchivePrefix + "/" + name
}

// AttachmentURL turns an s3://bucket/key link into a time-limited GET URL.
// Any other link is returned unchanged.
func (u *Uploader) AttachmentURL(ctx context.Context, link string) (string, error) {
	rest, ok := strings.CutPrefix(link, "s3://")
	if !ok {
		return link, nil
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", fmt.Errorf("%w: %q", ErrBadLink, link)
	}

	req, err := u.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment: %w", err)
	}
	return req.URL, nil
}
