package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	pages   []*s3.ListObjectsV2Output
	listErr error
	objects map[string]string
	getErr  error
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	if f.listErr != nil {
		return f.listErr
	}
	for i, page := range f.pages {
		if !fn(page, i == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "valid window", start: "2024-01-01T00:00:00", end: "2024-01-02T00:00:00"},
		{name: "equal bounds", start: "2024-01-01T12:00:00", end: "2024-01-01T12:00:00"},
		{name: "start after end", start: "2024-01-02T00:00:00", end: "2024-01-01T00:00:00", wantErr: true},
		{name: "timezone suffix rejected", start: "2024-01-01T00:00:00Z", end: "2024-01-02T00:00:00", wantErr: true},
		{name: "garbage", start: "yesterday", end: "2024-01-02T00:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ParseWindow(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, w.Start.Location())
			assert.Equal(t, time.UTC, w.End.Location())
		})
	}
}

func TestWindowContainsInclusiveBounds(t *testing.T) {
	w := Window{Start: ts("2024-01-01T00:00:00Z"), End: ts("2024-01-02T00:00:00Z")}

	assert.True(t, w.Contains(ts("2024-01-01T00:00:00Z")), "start bound must be included")
	assert.True(t, w.Contains(ts("2024-01-02T00:00:00Z")), "end bound must be included")
	assert.True(t, w.Contains(ts("2024-01-01T12:00:00Z")))
	assert.False(t, w.Contains(ts("2023-12-31T23:59:59Z")))
	assert.False(t, w.Contains(ts("2024-01-02T00:00:01Z")))
}

func TestListObjectsFiltersAndPaginates(t *testing.T) {
	api := &fakeS3{
		pages: []*s3.ListObjectsV2Output{
			{Contents: []*s3.Object{
				{Key: aws.String("logs/a.txt.gz"), LastModified: aws.Time(ts("2024-01-01T10:00:00Z"))},
				{Key: aws.String("logs/b.txt"), LastModified: aws.Time(ts("2023-06-01T00:00:00Z"))},
			}},
			{Contents: []*s3.Object{
				{Key: aws.String("logs/c.zip"), LastModified: aws.Time(ts("2024-01-02T00:00:00Z"))},
			}},
		},
	}
	client := newClientWithAPI(api, hclog.NewNullLogger())

	window := Window{Start: ts("2024-01-01T00:00:00Z"), End: ts("2024-01-02T00:00:00Z")}
	var keys []string
	err := client.ListObjects(context.Background(), "bucket", "logs/", window, func(obj Object) {
		keys = append(keys, obj.Key)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"logs/a.txt.gz", "logs/c.zip"}, keys)
}

func TestListObjectsPropagatesAPIError(t *testing.T) {
	api := &fakeS3{listErr: errors.New("AccessDenied")}
	client := newClientWithAPI(api, hclog.NewNullLogger())

	err := client.ListObjects(context.Background(), "bucket", "", Window{}, func(Object) {})
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestDownloadWritesFile(t *testing.T) {
	api := &fakeS3{objects: map[string]string{"logs/a.txt": "hello world"}}
	client := newClientWithAPI(api, hclog.NewNullLogger())

	path := filepath.Join(t.TempDir(), "nested", "a.txt")
	err := client.Download(context.Background(), "bucket", "logs/a.txt", path)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
}

func TestDownloadPropagatesGetError(t *testing.T) {
	api := &fakeS3{getErr: errors.New("connection reset")}
	client := newClientWithAPI(api, hclog.NewNullLogger())

	path := filepath.Join(t.TempDir(), "a.txt")
	err := client.Download(context.Background(), "bucket", "logs/a.txt", path)
	assert.ErrorContains(t, err, "connection reset")
}
