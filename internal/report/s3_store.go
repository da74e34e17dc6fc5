package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/pkg"
)

const s3KeyPrefix = "reports"

type S3StoreParams struct {
	Bucket string
	Region string
	// Endpoint is set for S3 compatible storage (MinIO, Spaces), empty for AWS.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// Timeout bounds a whole upload, zero means no limit.
	Timeout time.Duration
}

type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, params S3StoreParams) (*S3Store, error) {
	if params.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket not set")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(params.Region),
	}
	if params.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(params.AccessKeyID, params.SecretAccessKey, ""),
		))
	}
	// the sdk's buildable client, AWS_CA_BUNDLE needs its transport options
	httpClient := awshttp.NewBuildableClient()
	if params.Timeout > 0 {
		httpClient = httpClient.WithTimeout(params.Timeout)
	}
	opts = append(opts, awsconfig.WithHTTPClient(httpClient))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if params.Endpoint != "" {
			o.BaseEndpoint = aws.String(params.Endpoint)
			// path style is what most S3 compatible services expect
			o.UsePathStyle = true
		}
	})

	log.Debugf("s3 reports store ready, bucket: %s, endpoint: %q", params.Bucket, params.Endpoint)
	return &S3Store{
		client: client,
		bucket: params.Bucket,
	}, nil
}

// Save uploads the report under reports/{uuid}/{name} and returns its s3:// location.
func (s *S3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(s3KeyPrefix, uuid.NewString(), path.Base(name))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(pkg.ContentType.PDF),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
