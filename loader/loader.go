// Package loader fetches program source text from a local file or an S3
// object.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
)

// S3Scheme prefixes locations that are read from S3.
const S3Scheme = "s3://"

// MaxSourceSize is the largest source accepted from any location.
const MaxSourceSize = 64 * 1024 * 1024

// ObjectGetter is the subset of the S3 client used by the loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Source is program text together with the name used in error messages.
type Source struct {
	Name string
	Text string
}

// Option configures a Loader.
type Option func(*Loader)

// WithS3Client sets the client used for s3:// locations. Without one, a
// client is built on first use from the default AWS configuration chain
// (environment, shared config files, instance metadata).
func WithS3Client(client ObjectGetter) Option {
	return func(l *Loader) {
		l.s3 = client
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = logger
	}
}

// Loader resolves source locations.
type Loader struct {
	s3  ObjectGetter
	log zerolog.Logger
}

// New returns a Loader configured with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is shorthand for New(opts...).Load(ctx, location).
func Load(ctx context.Context, location string, opts ...Option) (Source, error) {
	return New(opts...).Load(ctx, location)
}

// Load reads the source at location, which is either a filesystem path
// (a leading "~" is expanded) or s3://bucket/key.
func (l *Loader) Load(ctx context.Context, location string) (Source, error) {
	if location == "" {
		return Source{}, fmt.Errorf("loader: empty location")
	}
	if strings.HasPrefix(location, S3Scheme) {
		return l.loadS3(ctx, location)
	}
	return l.loadFile(location)
}

func (l *Loader) loadFile(location string) (Source, error) {
	path, err := homedir.Expand(location)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()
	text, err := readLimited(f)
	if err != nil {
		return Source{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	l.log.Debug().Str("path", path).Int("bytes", len(text)).Msg("loaded source file")
	return Source{Name: location, Text: text}, nil
}

func (l *Loader) loadS3(ctx context.Context, location string) (Source, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return Source{}, err
	}
	client, err := l.client(ctx)
	if err != nil {
		return Source{}, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Source{}, fmt.Errorf("loader: get %s: %w", location, err)
	}
	defer out.Body.Close()
	text, err := readLimited(out.Body)
	if err != nil {
		return Source{}, fmt.Errorf("loader: read %s: %w", location, err)
	}
	l.log.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(text)).Msg("loaded source object")
	return Source{Name: location, Text: text}, nil
}

func (l *Loader) client(ctx context.Context) (ObjectGetter, error) {
	if l.s3 != nil {
		return l.s3, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: aws config: %w", err)
	}
	l.s3 = s3.NewFromConfig(cfg)
	return l.s3, nil
}

// ParseS3Location splits s3://bucket/key into its bucket and key.
func ParseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, S3Scheme)
	if !ok {
		return "", "", fmt.Errorf("loader: %q is not an s3 location", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("loader: invalid s3 location %q (expected s3://bucket/key)", location)
	}
	return bucket, key, nil
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxSourceSize {
		return "", fmt.Errorf("source exceeds %d bytes", MaxSourceSize)
	}
	return string(data), nil
}
