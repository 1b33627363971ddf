package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pems_api_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageProvider defines the interface for document storage operations
type StorageProvider interface {
	Upload(ctx context.Context, reader io.Reader, key string, contentType string, size int64, metadata map[string]string) (*StorageResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // Returns reader, content-type, error
	Head(ctx context.Context, key string) (map[string]string, error)
	List(ctx context.Context, prefix string) ([]StoredObject, error)
	GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	IsConfigured() bool
}

// StorageResult contains information about the stored object
type StorageResult struct {
	Key      string
	FileName string
	FileSize int64
	MimeType string
}

// StoredObject is one listing entry
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage is the global storage instance
var Storage StorageProvider

// InitializeStorage sets up the storage provider based on configuration
func InitializeStorage(cfg *config.Config) {
	if cfg.S3Bucket != "" {
		s3Storage, err := NewS3Storage(cfg)
		if err != nil {
			log.Printf("[WARNING] Failed to initialize S3 storage: %v. Falling back to local storage.", err)
			Storage = NewLocalStorage(cfg.UploadDir)
			log.Println("Storage connection established (Local filesystem - fallback)")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err = s3Storage.client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: &cfg.S3Bucket,
		})
		if err != nil {
			log.Printf("[WARNING] S3 bucket connection test failed: %v. Falling back to local storage.", err)
			Storage = NewLocalStorage(cfg.UploadDir)
			log.Println("Storage connection established (Local filesystem - fallback)")
			return
		}

		Storage = s3Storage
		log.Printf("Storage connection established (S3 - bucket: %s)", cfg.S3Bucket)
	} else {
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage connection established (Local filesystem - path: %s)", cfg.UploadDir)
	}
}

// S3Storage implements StorageProvider for AWS S3
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// NewS3Storage creates a new S3 storage provider
func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	presigner := s3.NewPresignClient(client)

	return &S3Storage{
		client:    client,
		presigner: presigner,
		bucket:    cfg.S3Bucket,
	}, nil
}

// IsConfigured returns true if S3 is properly configured
func (s *S3Storage) IsConfigured() bool {
	return s.client != nil && s.bucket != ""
}

// Upload puts an object to S3 with its user metadata
func (s *S3Storage) Upload(ctx context.Context, reader io.Reader, key string, contentType string, size int64, metadata map[string]string) (*StorageResult, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &StorageResult{
		Key:      key,
		FileName: filepath.Base(key),
		FileSize: size,
		MimeType: contentType,
	}, nil
}

// Get retrieves an object from S3 and returns a reader
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from S3: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}

	return result.Body, contentType, nil
}

// Head returns the user metadata attached to an object
func (s *S3Storage) Head(ctx context.Context, key string) (map[string]string, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to head object: %w", err)
	}
	return result.Metadata, nil
}

// List returns every object under the prefix
func (s *S3Storage) List(ctx context.Context, prefix string) ([]StoredObject, error) {
	var objects []StoredObject

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			entry := StoredObject{Key: aws.ToString(obj.Key)}
			if obj.Size != nil {
				entry.Size = *obj.Size
			}
			if obj.LastModified != nil {
				entry.LastModified = *obj.LastModified
			}
			objects = append(objects, entry)
		}
	}

	return objects, nil
}

// GetSignedURL generates a presigned GET URL for temporary access
func (s *S3Storage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	presignedReq, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}

	return presignedReq.URL, nil
}

// Delete removes an object from S3
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalStorage implements StorageProvider for the local filesystem. Object
// metadata lives in a sidecar JSON file next to each object.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a new local storage provider
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// IsConfigured returns true (local storage is always available)
func (l *LocalStorage) IsConfigured() bool {
	return true
}

const metadataSuffix = ".meta.json"

// Upload saves an object and its metadata sidecar to the local filesystem
func (l *LocalStorage) Upload(ctx context.Context, reader io.Reader, key string, contentType string, size int64, metadata map[string]string) (*StorageResult, error) {
	fullPath := filepath.Join(l.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		if err := os.WriteFile(fullPath+metadataSuffix, encoded, 0644); err != nil {
			return nil, fmt.Errorf("failed to save metadata: %w", err)
		}
	}

	return &StorageResult{
		Key:      key,
		FileName: filepath.Base(key),
		FileSize: written,
		MimeType: contentType,
	}, nil
}

// Get retrieves an object from the local filesystem and returns a reader
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	contentType := "application/octet-stream"
	if strings.ToLower(filepath.Ext(key)) == ".xml" {
		contentType = "application/xml"
	}

	return file, contentType, nil
}

// Head reads the metadata sidecar for an object
func (l *LocalStorage) Head(ctx context.Context, key string) (map[string]string, error) {
	sidecar := filepath.Join(l.baseDir, key) + metadataSuffix
	data, err := os.ReadFile(sidecar)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata map[string]string
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return metadata, nil
}

// List walks every object under the prefix, skipping metadata sidecars
func (l *LocalStorage) List(ctx context.Context, prefix string) ([]StoredObject, error) {
	var objects []StoredObject

	root := filepath.Join(l.baseDir, prefix)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || strings.HasSuffix(path, metadataSuffix) {
			return nil
		}
		key, err := filepath.Rel(l.baseDir, path)
		if err != nil {
			return err
		}
		objects = append(objects, StoredObject{
			Key:          filepath.ToSlash(key),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	return objects, nil
}

// GetSignedURL for local storage just returns the file path (no signing needed)
func (l *LocalStorage) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "/" + filepath.ToSlash(filepath.Join(l.baseDir, key)), nil
}

// Delete removes an object and its metadata sidecar
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(l.baseDir, key)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(fullPath + metadataSuffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// CitationDocumentKey builds the storage key for a citation XML file
func CitationDocumentKey(tenant, caseNumber string, createdOn time.Time, ext string) string {
	return fmt.Sprintf("%s/Case/XML/%s/%s%s", tenant, createdOn.UTC().Format("2006-01-02"), caseNumber, ext)
}

// CitationDocumentPrefix builds the listing prefix for a tenant's citation files
func CitationDocumentPrefix(tenant string) string {
	return tenant + "/Case/XML/"
}
