package listing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the AWS S3 client used for listing.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
}

// S3Options configures NewS3Client.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Client builds an aws-sdk-go-v2 S3 client. An empty endpoint targets AWS itself;
// static credentials are used when an access key is set, otherwise the default chain.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// S3 lists buckets through the AWS SDK.
type S3 struct {
	api  S3API
	name string
}

// NewS3 creates a listing source over an S3 API client.
func NewS3(api S3API) *S3 {
	return newS3(api, "s3")
}

func newS3(api S3API, name string) *S3 {
	return &S3{api: api, name: name}
}

// Name returns the backend name, "s3" unless the source serves another backend.
func (s *S3) Name() string { return s.name }

// List returns one page of the bucket listing.
func (s *S3) List(ctx context.Context, req Request) (*Page, error) {
	if req.Versioned {
		return s.listVersions(ctx, req)
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(req.Bucket),
		MaxKeys: aws.Int32(int32(req.PageSize())),
	}
	if req.Prefix != "" {
		input.Prefix = aws.String(req.Prefix)
	}
	if req.Token != "" {
		input.ContinuationToken = aws.String(req.Token)
	}

	out, err := s.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, s.wrap(req.Bucket, err)
	}

	page := &Page{
		Entries:   make([]Entry, 0, len(out.Contents)),
		Truncated: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		page.Entries = append(page.Entries, Entry{
			Key:          aws.ToString(obj.Key),
			ETag:         NormalizeETag(aws.ToString(obj.ETag)),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}
	if page.Truncated {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

func (s *S3) listVersions(ctx context.Context, req Request) (*Page, error) {
	marker, err := decodeMarker(req.Token)
	if err != nil {
		return nil, err
	}

	input := &s3.ListObjectVersionsInput{
		Bucket:  aws.String(req.Bucket),
		MaxKeys: aws.Int32(int32(req.PageSize())),
	}
	if req.Prefix != "" {
		input.Prefix = aws.String(req.Prefix)
	}
	if marker.Key != "" {
		input.KeyMarker = aws.String(marker.Key)
		if marker.VersionID != "" {
			input.VersionIdMarker = aws.String(marker.VersionID)
		}
	}

	out, err := s.api.ListObjectVersions(ctx, input)
	if err != nil {
		return nil, s.wrap(req.Bucket, err)
	}

	entries := make([]Entry, 0, len(out.Versions)+len(out.DeleteMarkers))
	for _, v := range out.Versions {
		entries = append(entries, Entry{
			Key:          aws.ToString(v.Key),
			VersionID:    aws.ToString(v.VersionId),
			ETag:         NormalizeETag(aws.ToString(v.ETag)),
			Size:         aws.ToInt64(v.Size),
			LastModified: aws.ToTime(v.LastModified),
			IsLatest:     aws.ToBool(v.IsLatest),
		})
	}
	for _, d := range out.DeleteMarkers {
		entries = append(entries, Entry{
			Key:            aws.ToString(d.Key),
			VersionID:      aws.ToString(d.VersionId),
			LastModified:   aws.ToTime(d.LastModified),
			IsDeleteMarker: true,
			IsLatest:       aws.ToBool(d.IsLatest),
		})
	}
	// The API returns versions and delete markers as separate lists.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].LastModified.After(entries[j].LastModified)
	})

	page := &Page{Entries: entries, Truncated: aws.ToBool(out.IsTruncated)}
	if page.Truncated {
		page.NextToken = encodeMarker(versionMarker{
			Key:       aws.ToString(out.NextKeyMarker),
			VersionID: aws.ToString(out.NextVersionIdMarker),
		})
	}
	return page, nil
}

func (s *S3) wrap(bucket string, err error) error {
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return &BucketNotFoundError{Backend: s.Name(), Bucket: bucket, Err: err}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return &BucketNotFoundError{Backend: s.Name(), Bucket: bucket, Err: err}
	}
	return Transport(s.Name(), bucket, err)
}
