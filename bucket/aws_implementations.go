package bucket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// maxPageKeys is the largest page ListObjectsV2 will return.
const maxPageKeys = 1000

type awsS3Implementation struct {
	config     *Config
	s3Client   S3API
	presigner  PresignAPI
	downloader *manager.Downloader
	logger     *zap.Logger
}

// NewBucketImplementation initializes the aws config and client, and returns an interface
func NewBucketImplementation(ctx context.Context, config *Config, logger *zap.Logger) (IBucketImplementation, error) {
	if config == nil || config.S3 == nil {
		return nil, errors.New("bucket: missing S3 configuration")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.S3.Region),
	}
	if config.HasStaticCredentials() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, config.SessionToken),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.S3.Endpoint)
		}
		o.UsePathStyle = config.S3.ForcePathStyle
	})

	return newBucketImplementation(config, s3Client, s3.NewPresignClient(s3Client), logger), nil
}

func newBucketImplementation(config *Config, s3Client S3API, presigner PresignAPI, logger *zap.Logger) *awsS3Implementation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &awsS3Implementation{
		config:     config,
		s3Client:   s3Client,
		presigner:  presigner,
		downloader: manager.NewDownloader(s3Client),
		logger:     logger,
	}
}

func (awsRepo *awsS3Implementation) ListPage(ctx context.Context, req PageRequest) (*Page, error) {
	pageSize := req.MaxKeys
	if pageSize <= 0 || pageSize > maxPageKeys {
		pageSize = maxPageKeys
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(req.Bucket),
		MaxKeys: aws.Int32(pageSize),
	}
	if req.Prefix != "" {
		input.Prefix = aws.String(req.Prefix)
	}
	if req.ContinuationToken != "" {
		input.ContinuationToken = aws.String(req.ContinuationToken)
	} else if req.StartAfter != "" {
		input.StartAfter = aws.String(req.StartAfter)
	}

	output, err := awsRepo.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		awsRepo.logger.Debug("Couldn't list objects",
			zap.String("bucket", req.Bucket),
			zap.String("continuation_token", req.ContinuationToken),
			zap.Error(err))
		return nil, fmt.Errorf("list objects page: %w", err)
	}

	page := &Page{
		Objects:               make([]Object, 0, len(output.Contents)),
		IsTruncated:           aws.ToBool(output.IsTruncated),
		NextContinuationToken: aws.ToString(output.NextContinuationToken),
	}
	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	return page, nil
}

func (awsRepo *awsS3Implementation) PresignGet(ctx context.Context, bucketName, objectKey string, expiry time.Duration) (string, error) {
	req, err := awsRepo.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		awsRepo.logger.Debug("Couldn't presign object",
			zap.String("bucket", bucketName),
			zap.String("key", objectKey),
			zap.Error(err))
		return "", fmt.Errorf("presign object %s: %w", objectKey, err)
	}
	return req.URL, nil
}

// Download reads the whole object into memory through the transfer manager.
func (awsRepo *awsS3Implementation) Download(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	n, err := awsRepo.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		awsRepo.logger.Debug("Couldn't get object",
			zap.String("bucket", bucketName),
			zap.String("key", objectKey),
			zap.Error(err))
		return nil, fmt.Errorf("download object %s: %w", objectKey, err)
	}
	return buf.Bytes()[:n], nil
}
