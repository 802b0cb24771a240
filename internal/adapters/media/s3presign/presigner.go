// Package s3presign firma PUTs a S3 (o compatible: MinIO, R2) para subir fotos desde el navegador.
package s3presign

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pet-reunite/internal/ports/media"
)

const DefaultExpiry = 15 * time.Minute

type Config struct {
	Bucket string
	Region string
	// Endpoint alternativo (MinIO/R2). Vacío => AWS.
	Endpoint string
	// Base pública de los objetos (CDN). Vacío => URL virtual-host del bucket.
	PublicBaseURL string
	Expiry        time.Duration
}

type Presigner struct {
	presign    *s3.PresignClient
	bucket     string
	publicBase string
	expiry     time.Duration
	now        func() time.Time
}

// New carga credenciales con la cadena default de AWS (env, perfil, rol de la tarea).
func New(ctx context.Context, cfg Config) (*Presigner, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if r := strings.TrimSpace(cfg.Region); r != "" {
		opts = append(opts, awsconfig.WithRegion(r))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3presign: load aws config: %w", err)
	}
	return NewFromAWSConfig(awsCfg, cfg)
}

func NewFromAWSConfig(awsCfg aws.Config, cfg Config) (*Presigner, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3presign: bucket is required")
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if publicBase == "" {
		if endpoint != "" {
			publicBase = endpoint + "/" + bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, awsCfg.Region)
		}
	}

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Presigner{
		presign:    s3.NewPresignClient(client),
		bucket:     bucket,
		publicBase: publicBase,
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

func (p *Presigner) PresignPut(ctx context.Context, key, contentType string) (media.PresignedUpload, error) {
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return media.PresignedUpload{}, fmt.Errorf("s3presign: presign put: %w", err)
	}

	headers := map[string]string{"Content-Type": contentType}
	for k, vs := range req.SignedHeader {
		if strings.EqualFold(k, "host") || len(vs) == 0 {
			continue
		}
		headers[k] = vs[0]
	}

	return media.PresignedUpload{
		UploadURL: req.URL,
		Method:    req.Method,
		Headers:   headers,
		PublicURL: p.publicBase + "/" + escapeKey(key),
		Key:       key,
		ExpiresAt: p.now().Add(p.expiry),
	}, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
