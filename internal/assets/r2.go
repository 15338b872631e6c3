// Package assets uploads generated images to Cloudflare R2 through the S3
// API.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/rs/zerolog"
)

// ErrInvalidDataURI is returned for anything other than a base64 data URI.
var ErrInvalidDataURI = errors.New("invalid data URI")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Config holds the R2 connection settings.
type Config struct {
	Endpoint  string
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base under which uploaded objects are served.
	PublicURL string
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// R2Uploader stores images in an R2 bucket.
type R2Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	log       zerolog.Logger
}

func NewR2Uploader(ctx context.Context, cfg Config) (*R2Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	endpoint := cfg.endpoint()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = endpoint + "/" + cfg.Bucket
	}

	return &R2Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       logger.Component("assets"),
	}, nil
}

// StoreImage uploads the image in dataURI under images/<name> and returns
// its public URL.
func (u *R2Uploader) StoreImage(ctx context.Context, name, dataURI string) (string, error) {
	mime, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	ext, ok := extensions[mime]
	if !ok {
		ext = ".bin"
	}
	key := "images/" + name + ext

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mime),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.log.Info().Str("key", key).Int("bytes", len(data)).Msg("Image uploaded")
	return u.publicURL + "/" + key, nil
}

// DecodeDataURI splits a "data:<mime>;base64,<payload>" URI.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok || mime == "" {
		return "", nil, ErrInvalidDataURI
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return mime, data, nil
}
