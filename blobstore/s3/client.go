package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client is the subset of the S3 API used by Store.
// *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ Client = (*s3.Client)(nil)

// Options configures a Store created with New.
type Options struct {
	// Prefix is prepended to every key, e.g. "tables/".
	Prefix string
	// Region overrides the region from the shared AWS config.
	Region string
	// Endpoint overrides the S3 endpoint, e.g. for LocalStack.
	Endpoint string
	// UsePathStyle selects path-style bucket addressing.
	UsePathStyle bool
	// Upload tunes multipart uploads.
	Upload UploadConfig
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) func(*Options) {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) func(*Options) {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom endpoint and switches to path-style addressing.
func WithEndpoint(endpoint string) func(*Options) {
	return func(o *Options) {
		o.Endpoint = endpoint
		o.UsePathStyle = true
	}
}

// WithUploadConfig sets the upload configuration.
func WithUploadConfig(cfg UploadConfig) func(*Options) {
	return func(o *Options) { o.Upload = cfg }
}

func resolveOptions(optFns []func(*Options)) Options {
	o := Options{Upload: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

func loadConfig(ctx context.Context, o Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.Region))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func newClient(cfg aws.Config, o Options) *s3.Client {
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = o.UsePathStyle
	})
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, bucket string, optFns ...func(*Options)) (*Store, error) {
	o := resolveOptions(optFns)
	cfg, err := loadConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	return newStore(newClient(cfg, o), bucket, o), nil
}

// NewCommitStore creates a DDBCommitStore whose blobs live in bucket and
// whose HEAD pointer is kept in the DynamoDB table.
func NewCommitStore(ctx context.Context, bucket, table string, optFns ...func(*Options)) (*DDBCommitStore, error) {
	o := resolveOptions(optFns)
	cfg, err := loadConfig(ctx, o)
	if err != nil {
		return nil, err
	}
	store := newStore(newClient(cfg, o), bucket, o)
	return NewDDBCommitStore(store, dynamodb.NewFromConfig(cfg), table, store.URI()), nil
}
