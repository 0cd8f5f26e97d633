package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	if in.ContentType != nil {
		f.types[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String(f.types[*in.Key]),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutGetDelete(t *testing.T) {
	fake := newFakeS3()
	st := &Store{bucket: "attachments", client: fake}
	ctx := context.Background()

	body := strings.NewReader("facture de plombier")
	if err := st.Put(ctx, "1/facture.txt", "text/plain", body, int64(body.Len())); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, contentType, err := st.Get(ctx, "1/facture.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "facture de plombier" {
		t.Errorf("data = %q", data)
	}
	if contentType != "text/plain" {
		t.Errorf("content type = %q", contentType)
	}

	if err := st.Delete(ctx, "1/facture.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := st.Get(ctx, "1/facture.txt"); err == nil {
		t.Error("get after delete succeeded")
	}
}

func TestUnconfigured(t *testing.T) {
	st := New(Config{})
	if st.Configured() {
		t.Fatal("empty config reported configured")
	}
	if err := st.Put(context.Background(), "k", "text/plain", strings.NewReader("x"), 1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("put error = %v", err)
	}
	if _, _, err := st.Get(context.Background(), "k"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("get error = %v", err)
	}
	if err := st.Delete(context.Background(), "k"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("delete error = %v", err)
	}
}
