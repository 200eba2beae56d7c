package assets

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/streamssr/streamssr/internal/errors"
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client for region. Credentials come from the
// standard AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and AWS_SESSION_TOKEN
// variables; without them requests are anonymous, which is enough for a
// public bucket.
func NewS3Client(region string) *s3.Client {
	opts := s3.Options{Region: region}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		creds := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		})
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(opts)
}

// S3Origin serves assets from a bucket, under an optional key prefix.
type S3Origin struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Origin creates an origin reading s3://bucket/prefix/<name>.
func NewS3Origin(client S3API, bucket, prefix string) *S3Origin {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Origin{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for an asset name.
func (o *S3Origin) Key(name string) string {
	return o.prefix + name
}

// Open implements Origin.
func (o *S3Origin) Open(ctx context.Context, name string) (*Object, error) {
	clean, ok := CleanName(name)
	if !ok {
		return nil, ErrNotFound
	}

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.Key(clean)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, errors.New("E102").WithDetail("s3://" + o.bucket + "/" + o.Key(clean)).Wrap(err)
	}

	obj := &Object{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        aws.ToString(out.ETag),
	}
	if obj.ContentType == "" {
		obj.ContentType = ContentType(clean)
	}
	if out.LastModified != nil {
		obj.ModTime = *out.LastModified
	}
	return obj, nil
}
