package s3

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"enquiry-admin-console/config"
)

func newTestUploader(t *testing.T, cloudFront string) *Uploader {
	t.Helper()
	u, err := NewUploader(context.Background(), config.S3Config{
		Bucket:           "console-exports",
		Region:           "eu-west-1",
		AccessKeyID:      "AKIDEXAMPLE",
		SecretAccessKey:  "secret",
		CloudFrontDomain: cloudFront,
		PresignTTL:       5 * time.Minute,
		ArchivePrefix:    "/quote-exports/",
	})
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	return u
}

func TestAttachmentURLPassesThroughPlainLinks(t *testing.T) {
	u := newTestUploader(t, "")
	for _, link := range []string{"", "https://files.example.com/a.pdf"} {
		got, err := u.AttachmentURL(context.Background(), link)
		if err != nil || got != link {
			t.Errorf("AttachmentURL(%q) = %q, %v", link, got, err)
		}
	}
}

func TestAttachmentURLPresignsS3Links(t *testing.T) {
	u := newTestUploader(t, "")
	got, err := u.AttachmentURL(context.Background(), "s3://vendor-files/quotes/q1.pdf")
	if err != nil {
		t.Fatalf("AttachmentURL: %v", err)
	}
	if !strings.Contains(got, "vendor-files") || !strings.Contains(got, "quotes/q1.pdf") {
		t.Errorf("url = %s", got)
	}
	if !strings.Contains(got, "X-Amz-Signature=") || !strings.Contains(got, "X-Amz-Expires=300") {
		t.Errorf("url is not presigned for 5m: %s", got)
	}
}

func TestAttachmentURLRejectsBadLinks(t *testing.T) {
	u := newTestUploader(t, "")
	for _, link := range []string{"s3://", "s3://bucket", "s3://bucket/"} {
		if _, err := u.AttachmentURL(context.Background(), link); !errors.Is(err, ErrBadLink) {
			t.Errorf("AttachmentURL(%q) err = %v", link, err)
		}
	}
}

func TestObjectURLAndArchiveKey(t *testing.T) {
	u := newTestUploader(t, "")
	key := u.ArchiveKey("E1", time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))
	if key != "quote-exports/E1/quotes-20260304T050607Z.xlsx" {
		t.Errorf("key = %q", key)
	}
	if got := u.ObjectURL(key); got != "https://console-exports.s3.eu-west-1.amazonaws.com/"+key {
		t.Errorf("s3 url = %q", got)
	}
	if got := newTestUploader(t, "cdn.example.com").ObjectURL("a/b.xlsx"); got != "https://cdn.example.com/a/b.xlsx" {
		t.Errorf("cloudfront url = %q", got)
	}
}
