package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/logging"
	"github.com/vanguardtable/vanguard/src/oops"
)

// s3Storage uploads to an S3-compatible blob store (AWS, DigitalOcean
// Spaces, MinIO, ...). References are fully-qualified object URLs.
type s3Storage struct {
	client   *s3.Client
	endpoint string
	bucket   string
}

var _ Storage = &s3Storage{}

func newS3Storage(cfg config.StorageConfig) (*s3Storage, error) {
	if cfg.S3Endpoint == "" || cfg.S3Key == "" || cfg.S3Secret == "" {
		return nil, oops.New(nil, "cloud storage requested but S3 endpoint/credentials are not configured")
	}

	awscfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, ""),
		),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: cfg.S3Endpoint,
			}, nil
		})),
	)
	if err != nil {
		return nil, oops.New(err, "failed to load S3 config")
	}

	storage := &s3Storage{
		client: s3.NewFromConfig(awscfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		endpoint: strings.TrimSuffix(cfg.S3Endpoint, "/"),
		bucket:   cfg.Bucket,
	}

	err = storage.ensureBucket()
	if err != nil {
		return nil, err
	}

	return storage, nil
}

// Creates the bucket with public-read objects if it doesn't already exist.
// Runs at construction so a misconfigured bucket surfaces immediately
// instead of on the first upload.
func (s *s3Storage) ensureBucket() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: &s.bucket,
		ACL:    types.BucketCannedACLPublicRead,
	})
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) {
			switch apiError.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return oops.New(err, "failed to ensure storage bucket '%s' exists", s.bucket)
	}

	return nil
}

func (s *s3Storage) Mode() Mode {
	return ModeCloud
}

func (s *s3Storage) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	key, err := makeKey(in)
	if err != nil {
		return nil, err
	}

	content, contentType := normalizeForSave(in)

	upload := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &s.bucket,
			Key:         &key,
			Body:        bytes.NewReader(content),
			ACL:         types.ObjectCannedACLPublicRead,
			ContentType: &contentType,
		})
		return err
	}

	err = upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &s.bucket,
				ACL:    types.BucketCannedACLPublicRead,
			})
			if err != nil {
				return nil, StorageFailure(oops.New(err, "failed to create storage bucket"))
			}

			err = upload()
			if err != nil {
				return nil, StorageFailure(oops.New(err, "failed to upload asset"))
			}
		} else {
			return nil, StorageFailure(oops.New(err, "failed to upload asset"))
		}
	}

	return &SaveResult{
		Url:         fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key),
		ContentType: contentType,
	}, nil
}

func (s *s3Storage) Delete(ctx context.Context, reference string) bool {
	key := s.keyFromReference(reference)
	if key == "" {
		return false
	}

	// DeleteObject succeeds even when the key is absent, so probe first to
	// report whether anything was actually removed.
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		var apiError smithy.APIError
		if !errors.As(err, &apiError) || apiError.ErrorCode() != "NotFound" {
			logging.Warn().Err(err).Str("reference", reference).Msg("failed to check blob before delete")
		}
		return false
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		logging.Warn().Err(err).Str("reference", reference).Msg("failed to delete blob")
		return false
	}

	return true
}

// Recovers the object key from a reference URL by stripping everything up
// through the bucket name segment.
func (s *s3Storage) keyFromReference(reference string) string {
	marker := s.bucket + "/"
	idx := strings.LastIndex(reference, marker)
	if idx == -1 {
		return ""
	}
	return reference[idx+len(marker):]
}
