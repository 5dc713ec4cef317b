package documents

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"insurance-portal/internal/models"
)

// Presigner presigns S3 downloads; *s3.PresignClient satisfies it
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config selects the bucket policy PDFs are served from
type S3Config struct {
	Bucket string
	Prefix string
	TTL    time.Duration
}

// Resolver turns document paths from the API into URLs a browser can open.
// Paths are resolved against the backend origin, except keys under the
// configured S3 prefix which are presigned when a bucket is set.
type Resolver struct {
	origin    string
	presigner Presigner
	s3        S3Config
	logger    *slog.Logger
}

func NewResolver(origin string, presigner Presigner, cfg S3Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 15 * time.Minute
	}
	return &Resolver{
		origin:    strings.TrimRight(origin, "/"),
		presigner: presigner,
		s3:        cfg,
		logger:    logger,
	}
}

// Resolve returns the URL for path. Absolute URLs pass through unchanged.
func (r *Resolver) Resolve(ctx context.Context, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty document path")
	}
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		return p, nil
	}
	key := strings.TrimLeft(p, "/")
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid document path: %q", p)
	}

	if r.presigned(key) {
		req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.s3.Bucket),
			Key:    aws.String(key),
		}, func(o *s3.PresignOptions) { o.Expires = r.s3.TTL })
		if err != nil {
			return "", fmt.Errorf("failed to presign %s: %w", key, err)
		}
		r.logger.Debug("Presigned document", "key", key, "ttl", r.s3.TTL.String())
		return req.URL, nil
	}
	return r.origin + "/" + key, nil
}

func (r *Resolver) presigned(key string) bool {
	return r.presigner != nil && r.s3.Bucket != "" && strings.HasPrefix(key, r.s3.Prefix)
}

// Fields parses info and fills in the URL of every file field
func (r *Resolver) Fields(ctx context.Context, info models.AdditionalInfo) []Field {
	fields := ParseAdditionalInfo(info)
	for i := range fields {
		if !fields[i].IsFile {
			continue
		}
		u, err := r.Resolve(ctx, fields[i].Value)
		if err != nil {
			r.logger.Warn("Failed to resolve document", "key", fields[i].Key, "error", err)
			continue
		}
		fields[i].URL = u
	}
	return fields
}
