package sync

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestS3Destination_Write(t *testing.T) {
	var (
		mu          sync.Mutex
		gotPath     string
		gotBody     []byte
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath, gotBody, contentType = r.URL.Path, body, r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "us-west-2",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
	})
	dest := NewS3DestinationWithClient(client, "backups", "backups/datastore.jsonl")

	if dest.Name() != "s3://backups/backups/datastore.jsonl" {
		t.Errorf("Name = %q", dest.Name())
	}
	if err := dest.Write(context.Background(), []byte("{}\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/backups/backups/datastore.jsonl" {
		t.Errorf("path = %q", gotPath)
	}
	if string(gotBody) != "{}\n" {
		t.Errorf("body = %q", gotBody)
	}
	if contentType != "application/x-ndjson" {
		t.Errorf("content type = %q", contentType)
	}
}
