package archive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestPut(t *testing.T) {
	fake := &fakeS3{}
	a := &S3Archive{bucket: "uploads", client: fake}

	if err := a.Put(context.Background(), "catalog/20240101T000000Z-costos.xlsx", []byte("PK")); err != nil {
		t.Fatal(err)
	}

	if aws.ToString(fake.input.Bucket) != "uploads" || aws.ToString(fake.input.Key) != "catalog/20240101T000000Z-costos.xlsx" {
		t.Fatalf("input = %+v", fake.input)
	}
	if aws.ToString(fake.input.ContentType) == "" {
		t.Error("content type not set")
	}
	if string(fake.body) != "PK" {
		t.Errorf("body = %q", fake.body)
	}
}

func TestPutError(t *testing.T) {
	boom := errors.New("denied")
	a := &S3Archive{bucket: "uploads", client: &fakeS3{err: boom}}

	if err := a.Put(context.Background(), "k.xls", nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
