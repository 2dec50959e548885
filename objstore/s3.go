// Copyright (C) 2021-2025 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// S3API is the subset of the S3 client used by the S3 store.
type S3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Option func(*s3Options)

type s3Options struct {
	client    S3API
	region    string
	endpoint  string
	pathStyle bool
	accessKey string
	secretKey string
	httpCli   *http.Client
}

// WithS3Client uses the provided client instead of creating one from the
// environment.
func WithS3Client(client S3API) S3Option {
	return func(o *s3Options) {
		o.client = client
	}
}

// WithS3Region sets the region. If not set, the region is taken from the
// shared AWS configuration.
func WithS3Region(region string) S3Option {
	return func(o *s3Options) {
		o.region = region
	}
}

// WithS3Endpoint sets a custom endpoint for S3-compatible services. If not
// set, the AWS_ENDPOINT environment variable is used, if present.
func WithS3Endpoint(endpoint string) S3Option {
	return func(o *s3Options) {
		o.endpoint = endpoint
	}
}

// WithS3PathStyle enables path-style addressing.
func WithS3PathStyle(pathStyle bool) S3Option {
	return func(o *s3Options) {
		o.pathStyle = pathStyle
	}
}

// WithS3Credentials sets static credentials.
func WithS3Credentials(accessKey, secretKey string) S3Option {
	return func(o *s3Options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithS3HTTPClient sets the HTTP client used by the SDK.
func WithS3HTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) {
		o.httpCli = client
	}
}

// S3 is a Store backed by S3 or an S3-compatible service.
type S3 struct {
	client   S3API
	uploader *manager.Uploader
}

// NewS3 creates a new S3 store. Credentials and region are resolved using
// the default AWS configuration chain unless overridden by options.
func NewS3(ctx context.Context, opts ...S3Option) (*S3, error) {
	o := &s3Options{endpoint: os.Getenv("AWS_ENDPOINT")}
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		var cfgOpts []func(*awsconfig.LoadOptions) error
		if o.region != "" {
			cfgOpts = append(cfgOpts, awsconfig.WithRegion(o.region))
		}
		if o.httpCli != nil {
			cfgOpts = append(cfgOpts, awsconfig.WithHTTPClient(o.httpCli))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
		if err != nil {
			return nil, errutil.NetworkError("init", "s3", fmt.Errorf("%w: %w", ErrCredentials, err))
		}
		if o.accessKey != "" && o.secretKey != "" {
			cfg.Credentials = credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")
		}
		o.client = s3.NewFromConfig(cfg, func(so *s3.Options) {
			if o.endpoint != "" {
				so.BaseEndpoint = aws.String(o.endpoint)
			}
			so.UsePathStyle = o.pathStyle
		})
	}
	return &S3{
		client:   o.client,
		uploader: manager.NewUploader(o.client),
	}, nil
}

// Get implements the Store interface.
func (s *S3) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	res, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error("get", bucket, key, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, s3Error("get", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Put implements the Store interface. Large objects are uploaded in parts.
func (s *S3) Put(ctx context.Context, bucket, key string, r io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return s3Error("put", bucket, key, err)
	}
	return nil
}

// Head implements the Store interface.
func (s *S3) Head(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	res, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error("head", bucket, key, err)
	}
	info := &ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         -1,
		ContentType:  aws.ToString(res.ContentType),
		ETag:         strings.Trim(aws.ToString(res.ETag), `"`),
		LastModified: aws.ToTime(res.LastModified),
		Metadata:     res.Metadata,
	}
	if res.ContentLength != nil {
		info.Size = *res.ContentLength
	}
	return info, nil
}

// Exists implements the Store interface.
func (s *S3) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.Head(ctx, bucket, key)
	if err == nil {
		return true, nil
	}
	if code, ok := errutil.StatusCode(err); ok && code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// List implements the Store interface.
func (s *S3) List(ctx context.Context, bucket, prefix, delimiter string, dirsOnly bool) ([]string, error) {
	if dirsOnly && delimiter == "" {
		delimiter = "/"
	}
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	if delimiter != "" {
		in.Delimiter = aws.String(delimiter)
	}
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, s3Error("list", bucket, prefix, err)
		}
		if dirsOnly {
			for _, cp := range page.CommonPrefixes {
				keys = append(keys, aws.ToString(cp.Prefix))
			}
			continue
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Copy implements the Store interface.
func (s *S3) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return s3Error("copy", bucket, srcKey, err)
	}
	return nil
}

// Delete implements the Store interface.
func (s *S3) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3Error("delete", bucket, key, err)
	}
	return nil
}

// httpStatusCoder is implemented by SDK response errors.
type httpStatusCoder interface {
	HTTPStatusCode() int
}

func s3Error(op, bucket, key string, err error) error {
	var (
		code     int
		sc       httpStatusCoder
		nsk      *types.NoSuchKey
		notFound *types.NotFound
	)
	switch {
	case errors.As(err, &sc):
		code = sc.HTTPStatusCode()
	case errors.As(err, &nsk), errors.As(err, &notFound):
		code = http.StatusNotFound
	}
	return statusError(op, location("s3", bucket, key), code, err)
}

var ErrCredentials = errors.New("objstore: unable to load credentials")
