package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type s3Store struct {
	client    s3API
	presigner s3Presigner
	bucket    string
}

func newS3Store(client s3API, presigner s3Presigner, bucket string) *s3Store {
	return &s3Store{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
	}
}

// NewS3Store wraps an S3 client. Endpoint and path-style options are applied by the caller.
func NewS3Store(client *s3.Client, bucket string) Store {
	return newS3Store(client, s3.NewPresignClient(client), bucket)
}

// S3Factory is the DriverFactory of the s3 driver.
func S3Factory(ctx context.Context, settings Settings) (Store, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("s3 driver: bucket is required")
	}
	cfg, err := LoadConfig(ctx, settings.Profile, settings.Region)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(*cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = awssdk.String(settings.Endpoint)
		}
		o.UsePathStyle = settings.UsePathStyle
	})
	return NewS3Store(client, settings.Bucket), nil
}

func (s *s3Store) Upload(ctx context.Context, path string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(s.bucket),
		Key:           awssdk.String(path),
		Body:          bytes.NewReader(body),
		ContentLength: awssdk.Int64(int64(len(body))),
		ContentType:   awssdk.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	var (
		objects           []Object
		continuationToken *string
	)
	for {
		resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            awssdk.String(s.bucket),
			Prefix:            awssdk.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, err)
		}

		for _, obj := range resp.Contents {
			key := awssdk.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			objects = append(objects, Object{
				Path:         key,
				Size:         awssdk.ToInt64(obj.Size),
				LastModified: awssdk.ToTime(obj.LastModified),
			})
		}

		if !awssdk.ToBool(resp.IsTruncated) {
			break
		}
		continuationToken = resp.NextContinuationToken
	}
	return objects, nil
}

func (s *s3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(path),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("%s: %w", path, ErrObjectNotFound)
		}
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

func (s *s3Store) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	return req.URL, nil
}
