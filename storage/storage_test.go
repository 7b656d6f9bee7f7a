package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileState(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "basic snapshot",
			filename: "household.json",
			data:     []byte(`{"ingredients": [{"id": "eggs", "name": "Eggs", "canonical_unit": "count", "canonical_unit_type": "count"}]}`),
		},
		{
			name:     "nested directory",
			filename: filepath.Join("nested", "dir", "household.json"),
			data:     []byte(`{"lists": []}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewFileState(filepath.Join(tmpDir, tt.filename))
			ctx := context.Background()

			require.NoError(t, state.Save(ctx, tt.data))

			loaded, err := state.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.data, loaded)
		})
	}

	t.Run("save replaces the previous document", func(t *testing.T) {
		state := NewFileState(filepath.Join(tmpDir, "replace.json"))
		ctx := context.Background()
		require.NoError(t, state.Save(ctx, []byte(`{"a": 1, "long": "document"}`)))
		require.NoError(t, state.Save(ctx, []byte(`{}`)))

		loaded, err := state.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{}`), loaded)

		entries, err := os.ReadDir(tmpDir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp")
		}
	})

	t.Run("load nonexistent snapshot", func(t *testing.T) {
		state := NewFileState(filepath.Join(tmpDir, "nonexistent.json"))
		_, err := state.Load(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3State(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	state := NewS3State(client, "artifacts", "household.json")

	_, err := state.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, state.Save(ctx, []byte(`{"users": []}`)))
	assert.Contains(t, client.objects, "artifacts/household.json")

	data, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"users": []}`, string(data))

	client.getErr = errors.New("access denied")
	_, err = state.Load(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryState(t *testing.T) {
	ctx := context.Background()

	empty := NewMemoryState(nil)
	_, err := empty.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	failing := NewMemoryStateWithError(errors.New("not found"))
	_, err = failing.Load(ctx)
	assert.EqualError(t, err, "not found")

	state := NewMemoryState([]byte("{}"))
	require.NoError(t, state.Save(ctx, []byte(`{"lists": []}`)))
	assert.Equal(t, 1, state.Saves())
	data, err := state.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"lists": []}`, string(data))
}
