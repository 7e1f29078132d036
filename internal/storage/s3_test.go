package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	data    string
	modTime time.Time
}

// fakeS3 implements ObjectAPI over an in-memory bucket.
type fakeS3 struct {
	bucket  string
	objects map[string]fakeObject
	err     error
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	obj, ok := f.objects[aws.ToString(params.Key)]
	if !ok || aws.ToString(params.Bucket) != f.bucket {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(strings.NewReader(obj.data)),
		LastModified: aws.Time(obj.modTime),
	}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	prefix := aws.ToString(params.Prefix)
	delim := aws.ToString(params.Delimiter)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if i := strings.Index(rest, delim); delim != "" && i >= 0 {
			cp := prefix + rest[:i+1]
			if !seen[cp] {
				seen[cp] = true
				out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
			}
			continue
		}
		obj := f.objects[k]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modTime),
		})
	}
	return out, nil
}

func newFakeS3() *fakeS3 {
	mod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &fakeS3{
		bucket: "momager-content",
		objects: map[string]fakeObject{
			"topics/meal-planning/index.json":     {`{"title":"Meal Planning"}`, mod},
			"topics/meal-planning/budgeting.json": {`{"title":"Budgeting"}`, mod},
			"topics/sleep/index.json":             {`{"title":"Sleep"}`, mod},
			"topics/sleep/naps.md":                {"# Naps\n", mod},
			"other/ignored.json":                  {`{}`, mod},
		},
	}
}

func TestS3FS_ConformsToFS(t *testing.T) {
	fsys := NewS3FSWithClient(newFakeS3(), "momager-content", "/topics/")

	err := fstest.TestFS(fsys,
		"meal-planning/index.json",
		"meal-planning/budgeting.json",
		"sleep/index.json",
		"sleep/naps.md",
	)
	require.NoError(t, err)
}

func TestS3FS_ReadDir(t *testing.T) {
	fsys := NewS3FSWithClient(newFakeS3(), "momager-content", "topics")

	root, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, "meal-planning", root[0].Name())
	assert.True(t, root[0].IsDir())

	entries, err := fs.ReadDir(fsys, "sleep")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "index.json", entries[0].Name())
	assert.False(t, entries[0].IsDir())

	_, err = fs.ReadDir(fsys, "missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestS3FS_ReadFile(t *testing.T) {
	fsys := NewS3FSWithClient(newFakeS3(), "momager-content", "topics")

	data, err := fs.ReadFile(fsys, "meal-planning/budgeting.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Budgeting"}`, string(data))

	_, err = fs.ReadFile(fsys, "meal-planning/missing.json")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = fs.ReadFile(fsys, "../other/ignored.json")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestS3FS_NoPrefix(t *testing.T) {
	fsys := NewS3FSWithClient(newFakeS3(), "momager-content", "")

	root, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, "other", root[0].Name())
	assert.Equal(t, "topics", root[1].Name())

	data, err := fs.ReadFile(fsys, "topics/sleep/naps.md")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("# Naps")))
}

func TestS3FS_ClientError(t *testing.T) {
	client := newFakeS3()
	client.err = errors.New("access denied")
	fsys := NewS3FSWithClient(client, "momager-content", "topics")

	_, err := fs.ReadFile(fsys, "sleep/index.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)

	_, err = fs.ReadDir(fsys, ".")
	assert.Error(t, err)
}
