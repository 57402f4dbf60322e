package modelstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putIn   *s3.PutObjectInput
	getErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putIn = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3BlobStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewS3BlobStore(fake, "models", "secanalytics")

	_, err := store.Get(ctx, "m.json")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, store.Put(ctx, "m.json", []byte(`{"a":1}`)))
	assert.Equal(t, "secanalytics/m.json", aws.ToString(fake.putIn.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.putIn.ContentType))

	got, err := store.Get(ctx, "m.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestS3BlobStore_GetError(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, getErr: errors.New("connection reset")}

	_, err := NewS3BlobStore(fake, "models", "").Get(context.Background(), "m.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestNewS3Client_AppliesEndpointAndPathStyle(t *testing.T) {
	oldLoad, oldNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = oldLoad, oldNew })

	var gotOpts s3.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-central-1", lo.Region)
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	c, err := NewS3Client(context.Background(), S3Config{
		Region:    "eu-central-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "http://localhost:9000", aws.ToString(gotOpts.BaseEndpoint))
	assert.True(t, gotOpts.UsePathStyle)
}

func TestNewS3Client_ConfigError(t *testing.T) {
	old := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = old })

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}

	_, err := NewS3Client(context.Background(), S3Config{Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
