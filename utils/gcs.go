package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func NewGCSClient(ctx context.Context) (*storage.Client, string, error) {
	GCSBucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	if err != nil {
		return nil, "", err
	}
	return client, GCSBucket, err
}

func UploadImagesToGCSAndGetPublicURLs(
	ctx context.Context,
	gcs *storage.Client,
	bucketName string,
	productSlug string,
	files []*multipart.FileHeader,
) ([]string, error) {

	if len(files) < 1 || len(files) > 4 {
		return nil, fmt.Errorf("images must be 1 to 4")
	}

	urls := make([]string, 0, len(files))

	for _, fh := range files {
		// Build a safe unique object name
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".bin"
		}
		objectName := fmt.Sprintf("products/%s/%d%s", productSlug, time.Now().UnixNano(), ext)

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}

		w := gcs.Bucket(bucketName).Object(objectName).NewWriter(ctx)

		// Keep content-type if provided
		if ct := fh.Header.Get("Content-Type"); ct != "" {
			w.ContentType = ct
		}

		if _, err := io.Copy(w, f); err != nil {
			_ = f.Close()
			_ = w.Close()
			return nil, fmt.Errorf("upload copy: %w", err)
		}

		_ = f.Close()

		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("upload close: %w", err)
		}

		publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName)
		urls = append(urls, publicURL)
	}

	return urls, nil
}

func ObjectNameFromGCSPublicURL(bucket string, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimPrefix(u.Path, "/")

	// style 1: storage.googleapis.com/<bucket>/<object>
	if host == "storage.googleapis.com" {
		prefix := bucket + "/"
		if !strings.HasPrefix(path, prefix) {
			return "", fmt.Errorf("url bucket mismatch")
		}
		return strings.TrimPrefix(path, prefix), nil
	}

	// style 2: <bucket>.storage.googleapis.com/<object>
	if host == strings.ToLower(bucket)+".storage.googleapis.com" {
		if path == "" {
			return "", fmt.Errorf("missing object path")
		}
		return path, nil
	}

	return "", fmt.Errorf("not a gcs public url")
}

func DeleteGCSObjects(ctx context.Context, client *storage.Client, bucket string, objectNames []string) error {
	var firstErr error

	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		err := client.Bucket(bucket).Object(obj).Delete(ctx)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}

	return firstErr
}
