package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"sort"
	"strings"

	"bux-api/internal/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type s3ImageService struct {
	client   s3iface.S3API
	bucket   string
	region   string
	prefix   string
	baseURL  string
	maxBytes int64
}

// NewS3ImageService stores images as objects under prefix in bucket.
// Credentials come from the default AWS chain.
func NewS3ImageService(bucket, region, prefix, baseURL string, maxBytes int64) (ImageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3ImageServiceFromClient(s3.New(sess), bucket, region, prefix, baseURL, maxBytes), nil
}

func NewS3ImageServiceFromClient(client s3iface.S3API, bucket, region, prefix, baseURL string, maxBytes int64) ImageService {
	return &s3ImageService{
		client:   client,
		bucket:   bucket,
		region:   region,
		prefix:   prefix,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
}

func (s *s3ImageService) Save(ctx context.Context, name string, src io.Reader) (string, error) {
	clean, err := cleanImageName(name)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", errors.Wrap(err, "failed to read image upload")
	}
	if int64(len(data)) > s.maxBytes {
		return "", errors.New(errors.ErrInvalidInput, fmt.Sprintf("Image file size exceeds the limit of %d bytes.", s.maxBytes))
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + clean),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentTypeFor(clean)),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload image")
	}
	return clean, nil
}

func (s *s3ImageService) List(ctx context.Context) ([]ImageInfo, error) {
	var images []ImageInfo
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
			if strings.Contains(name, "/") || !IsImage(name) {
				continue
			}
			images = append(images, ImageInfo{
				Name:       name,
				Size:       aws.Int64Value(obj.Size),
				ModifiedAt: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list images")
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}

func (s *s3ImageService) Stat(ctx context.Context, name string) (*ImageInfo, error) {
	clean, err := cleanImageName(name)
	if err != nil {
		return nil, err
	}

	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + clean),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.New(errors.ErrNotFound, "No such image")
		}
		return nil, errors.Wrap(err, "failed to stat image")
	}
	return &ImageInfo{
		Name:       clean,
		Size:       aws.Int64Value(out.ContentLength),
		ModifiedAt: aws.TimeValue(out.LastModified),
	}, nil
}

// Delete checks for the object first since S3 deletes are idempotent.
func (s *s3ImageService) Delete(ctx context.Context, name string) error {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + info.Name),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete image")
	}
	return nil
}

func (s *s3ImageService) URL(name string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + name
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s%s", s.bucket, s.region, s.prefix, name)
}

func isS3NotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension("." + Extension(name)); ct != "" {
		return ct
	}
	return "image/" + Extension(name)
}
