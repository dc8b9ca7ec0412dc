// Package storage wraps the S3 API surface this tool needs: windowed,
// paginated listing and streaming downloads to local scratch files.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/go-hclog"

	"github.com/bucketsweep/bucketsweep/pkg/shared/files"
)

// Object describes one stored object, independent of its content.
type Object struct {
	Key          string
	LastModified time.Time
}

// Window is an inclusive UTC time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && !t.After(w.End)
}

// timeLayout matches timestamps like 2024-01-02T15:04:05, interpreted as UTC.
const timeLayout = "2006-01-02T15:04:05"

// ParseWindow parses start and end timestamps into a Window. Timezone
// suffixes are rejected and start must not be after end.
func ParseWindow(start, end string) (Window, error) {
	startTime, err := time.Parse(timeLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("invalid start time %q, expected format %s: %w", start, timeLayout, err)
	}
	endTime, err := time.Parse(timeLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("invalid end time %q, expected format %s: %w", end, timeLayout, err)
	}
	if startTime.After(endTime) {
		return Window{}, fmt.Errorf("start time %q is after end time %q", start, end)
	}
	return Window{Start: startTime.UTC(), End: endTime.UTC()}, nil
}

// s3API is the slice of the S3 client used here, narrow enough to fake in tests.
type s3API interface {
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// Client lists and downloads bucket objects.
type Client struct {
	api    s3API
	logger hclog.Logger
}

// NewClient builds a Client using the default credential chain, or the named
// shared-config profile when profile is non-empty.
func NewClient(profile string, logger hclog.Logger) (*Client, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Client{api: s3.New(sess), logger: logger}, nil
}

func newClientWithAPI(api s3API, logger hclog.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// ListObjects pages through bucket/prefix and invokes fn for every object
// whose last-modified time falls inside window. Pagination never surfaces to
// the caller and the store's ordering is preserved as-is.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string, window Window, fn func(Object)) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	err := c.api.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if !window.Contains(*obj.LastModified) {
				c.logger.Debug("object outside time window", "key", *obj.Key, "last_modified", *obj.LastModified)
				continue
			}
			fn(Object{Key: *obj.Key, LastModified: obj.LastModified.UTC()})
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to list objects in s3://%s/%s: %w", bucket, prefix, err)
	}
	return nil
}

// Download streams the object body into a local file at path, overwriting an
// existing file. The body is copied in chunks, never buffered whole.
func (c *Client) Download(ctx context.Context, bucket, key, path string) error {
	c.logger.Info("starting download", "key", key)

	result, err := c.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	if err := files.CreateFolderIfNotExists(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, result.Body); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	c.logger.Info("completed download", "key", key)
	return nil
}
