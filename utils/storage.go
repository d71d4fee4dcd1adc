package utils

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// R2Client wraps the S3 client + bucket name. Hero and category images live
// in Cloudflare R2; product images stay in GCS.
type R2Client struct {
	S3     *s3.Client
	Bucket string
}

func NewR2Client(ctx context.Context) (*R2Client, error) {
	bucket := os.Getenv("R2_BUCKET")
	accessKey := os.Getenv("R2_ACCESS_KEY_ID")
	secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	endpoint := os.Getenv("R2_ENDPOINT") // https://<account-id>.r2.cloudflarestorage.com

	if bucket == "" || accessKey == "" || secretKey == "" || endpoint == "" {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Client{S3: client, Bucket: bucket}, nil
}

// UploadImageToR2 stores one image under the given prefix and returns its
// public URL.
func UploadImageToR2(
	ctx context.Context,
	r2 *R2Client,
	prefix string,
	fileHeader *multipart.FileHeader,
) (string, error) {

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	}
	if !allowed[ext] {
		return "", fmt.Errorf("file type not allowed (allowed: jpg, jpeg, png, webp)")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(ext)
	}
	if ct == "" {
		ct = "application/octet-stream"
	}

	objectName := fmt.Sprintf(
		"%s/%d-%s%s",
		strings.Trim(prefix, "/"), time.Now().UTC().Unix(), uuid.New().String(), ext,
	)

	_, err = r2.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r2.Bucket),
		Key:          aws.String(objectName),
		Body:         file,
		ContentType:  aws.String(ct),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fileHeader.Filename, err)
	}

	return r2PublicURL(objectName), nil
}

func DeleteR2Objects(ctx context.Context, r2 *R2Client, objectNames []string) error {
	var firstErr error
	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		_, err := r2.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(r2.Bucket),
			Key:    aws.String(obj),
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}
	return firstErr
}

// r2PublicURL builds the public URL for a stored object. Set R2_PUBLIC_DOMAIN
// to the custom domain or r2.dev URL enabled on the bucket.
func r2PublicURL(objectName string) string {
	bucket := os.Getenv("R2_BUCKET")
	domain := strings.TrimRight(os.Getenv("R2_PUBLIC_DOMAIN"), "/")
	return fmt.Sprintf("%s/%s/%s", domain, bucket, objectName)
}

// ObjectNameFromR2PublicURL is the inverse of r2PublicURL: it recovers the
// object key so a replaced image can be deleted from the bucket.
func ObjectNameFromR2PublicURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}

	bucket := os.Getenv("R2_BUCKET")
	p := strings.TrimPrefix(u.Path, "/")
	prefix := bucket + "/"
	if bucket == "" || !strings.HasPrefix(p, prefix) {
		return "", fmt.Errorf("url %q is not in bucket %q", raw, bucket)
	}

	obj := strings.TrimPrefix(p, prefix)
	if obj == "" {
		return "", fmt.Errorf("url %q has no object name", raw)
	}
	return obj, nil
}
