package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockPut struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (m *mockPut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.in = in
	if in.Body != nil {
		m.body, _ = io.ReadAll(in.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

type mockPresign struct {
	in *s3.GetObjectInput
}

func (m *mockPresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.in = in
	return &v4.PresignedHTTPRequest{URL: "https://s3.example.com/" + *in.Bucket + "/" + *in.Key + "?X-Amz-Signature=sig"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, filename, want string
	}{
		{"archives/", "documents-1.zip", "archives/documents-1.zip"},
		{"archives", "documents-1.zip", "archives/documents-1.zip"},
		{"/a/b/", "/x.zip", "a/b/x.zip"},
		{"", "x.zip", "x.zip"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.filename); got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, ожидалось %q", tt.prefix, tt.filename, got, tt.want)
		}
	}
}

func TestExport(t *testing.T) {
	put := &mockPut{}
	presign := &mockPresign{}
	cfg := Config{Bucket: "dms", Prefix: "archives/", URLTTL: time.Minute}
	exp := newS3Exporter(put, presign, cfg, testLogger())

	res, err := exp.Export(context.Background(), "documents-1.zip", []byte("PK"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Key != "archives/documents-1.zip" {
		t.Errorf("Key = %q", res.Key)
	}
	if res.URL != "https://s3.example.com/dms/archives/documents-1.zip?X-Amz-Signature=sig" {
		t.Errorf("URL = %q", res.URL)
	}
	if string(put.body) != "PK" || *put.in.ContentLength != 2 || *put.in.ContentType != "application/zip" {
		t.Errorf("PutObject: body=%q in=%+v", put.body, put.in)
	}
	if *presign.in.ResponseContentDisposition != `attachment; filename="documents-1.zip"` {
		t.Errorf("ContentDisposition = %q", *presign.in.ResponseContentDisposition)
	}
}

func TestExport_PutError(t *testing.T) {
	put := &mockPut{err: errors.New("AccessDenied")}
	presign := &mockPresign{}
	exp := newS3Exporter(put, presign, Config{Bucket: "dms"}, testLogger())

	if _, err := exp.Export(context.Background(), "a.zip", []byte("PK")); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if presign.in != nil {
		t.Error("ссылка не должна создаваться при ошибке выгрузки")
	}
}

func TestNew_NotConfigured(t *testing.T) {
	if _, err := New(context.Background(), Config{}, testLogger()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ожидалась ErrNotConfigured, получено %v", err)
	}
}
