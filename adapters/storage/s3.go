package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/zalando-incubator/zelt/internal/logging"
)

// ObjectAPI is the subset of the S3 client used by the S3 backend.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores the locustfile as an object in a bucket.
type S3 struct {
	Bucket string
	Key    string
	// API defaults to an S3 client built from the ambient AWS configuration.
	API ObjectAPI
}

func (s *S3) api(ctx context.Context) (ObjectAPI, error) {
	if s.API != nil {
		return s.API, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	s.API = s3.NewFromConfig(cfg)
	return s.API, nil
}

func (s *S3) Upload(ctx context.Context, locustfile string) error {
	logger := logging.FromContext(ctx).With("method", MethodS3.String(), "bucket", s.Bucket, "key", s.Key)
	api, err := s.api(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(locustfile)
	if err != nil {
		return fmt.Errorf("read locustfile: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat locustfile: %w", err)
	}

	logger.Info(ctx, "Storage:Upload/s", "locustfile", locustfile)
	body := &progressReader{r: f, report: func(n int64) {
		logger.Info(ctx, "Storage:Upload/progress", "bytes", n)
	}}
	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Key),
		Body:          body,
		ContentLength: aws.Int64(fi.Size()),
	})
	if err != nil {
		logger.Error(ctx, "Storage:Upload/efail", "err", err)
		return fmt.Errorf("upload locustfile to s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	logger.Info(ctx, "Storage:Upload/eok", "bytes", body.n)
	return nil
}

func (s *S3) Delete(ctx context.Context) error {
	logger := logging.FromContext(ctx).With("method", MethodS3.String(), "bucket", s.Bucket, "key", s.Key)
	api, err := s.api(ctx)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Storage:Delete/s")
	if _, err := api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(s.Key)}); err != nil {
		logger.Error(ctx, "Storage:Delete/efail", "err", err)
		return fmt.Errorf("delete s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	logger.Info(ctx, "Storage:Delete/eok")
	return nil
}

// progressReader reports the cumulative number of bytes read.
type progressReader struct {
	r      io.Reader
	n      int64
	report func(n int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.n += int64(n)
		if p.report != nil {
			p.report(p.n)
		}
	}
	return n, err
}
