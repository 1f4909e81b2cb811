package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awshttp "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/boreledger/boreledger/pkg/apperr"
)

// S3Backend stores objects in a single bucket via the AWS SDK's standard
// credential chain. Construction never fails on connectivity trouble: the
// connectivity probe is a HeadBucket call the caller is expected to run
// through Ping and log at warn level.
type S3Backend struct {
	client *awshttp.Client
	bucket string
}

// NewS3Backend loads the default AWS config for region and resolves
// credentials via the standard chain.
func NewS3Backend(ctx context.Context, bucket, region string) (*S3Backend, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, apperr.Transport("s3 backend config", err)
	}
	return &S3Backend{
		client: awshttp.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func (s *S3Backend) Put(ctx context.Context, key string, body []byte, contentType string, allowOverwrite bool) error {
	if !allowOverwrite {
		if err := guardOverwrite(ctx, s, key); err != nil {
			return err
		}
	}
	_, err := s.client.PutObject(ctx, &awshttp.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperr.Transport("s3 put", err)
	}
	return nil
}

func (s *S3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awshttp.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, apperr.NotFound("key %q", key)
		}
		return nil, apperr.Transport("s3 get", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperr.Transport("s3 get read", err)
	}
	return data, nil
}

func (s *S3Backend) Head(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awshttp.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, apperr.Transport("s3 head", err)
	}
	return true, nil
}

func (s *S3Backend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := awshttp.NewListObjectsV2Paginator(s.client, &awshttp.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperr.Transport("s3 list", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Ping issues a HeadBucket call. The caller logs a warning on failure; it
// never fails construction or process startup.
func (s *S3Backend) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &awshttp.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return apperr.Transport("s3 ping", err)
	}
	return nil
}
