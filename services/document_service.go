package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"pems_api_go/config"
	"pems_api_go/models"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// FailedFile records one file that could not be ingested and why
type FailedFile struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// DocumentBatchResult is the per-batch upload outcome. Success is 0 when any
// file failed; files already uploaded stay uploaded regardless.
type DocumentBatchResult struct {
	Success     int          `json:"success"`
	Uploaded    []string     `json:"uploaded"`
	FailedFiles []FailedFile `json:"failed_files"`
}

// DocumentInfo is one stored citation document with its metadata and a
// time-limited download URL
type DocumentInfo struct {
	Key          string            `json:"key"`
	FileName     string            `json:"file_name"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata"`
	SignedURL    string            `json:"signed_url"`
}

// ValidateCitationUpload checks extension and size before any bytes move
func ValidateCitationUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > config.MaxDocumentUploadSize {
		return models.NewValidation("file %s exceeds maximum allowed size of 5MB", fileHeader.Filename)
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".xml" {
		return models.NewValidation("only XML files are allowed")
	}
	return nil
}

// UploadCitationDocuments ingests a batch of citation XML files. Each file
// is validated, parsed for its case number, and stored under the tenant's
// citation prefix with ingestion metadata. Per-file failures accumulate;
// the batch never aborts as a whole.
func UploadCitationDocuments(ctx context.Context, tenant, actor string, files []*multipart.FileHeader) *DocumentBatchResult {
	result := &DocumentBatchResult{
		Uploaded:    []string{},
		FailedFiles: []FailedFile{},
	}
	if len(files) > 0 {
		result.Success = 1
	}

	for _, fileHeader := range files {
		key, err := uploadCitationDocument(ctx, tenant, actor, fileHeader)
		if err != nil {
			log.Printf("[WARNING] citation upload failed for %s: %v", fileHeader.Filename, err)
			result.Success = 0
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				FileName: fileHeader.Filename,
				Reason:   err.Error(),
			})
			continue
		}
		result.Uploaded = append(result.Uploaded, key)
	}

	return result
}

func uploadCitationDocument(ctx context.Context, tenant, actor string, fileHeader *multipart.FileHeader) (string, error) {
	if err := ValidateCitationUpload(fileHeader); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	citation, err := ParseCitationXML(data)
	if err != nil {
		return "", err
	}
	// The storage key is derived from the document's case number; a citation
	// without one falls back to the file name stem.
	caseNumber := citation.CaseNumber
	if caseNumber == "" {
		caseNumber = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	createdOn := time.Now().UTC()
	key := CitationDocumentKey(tenant, caseNumber, createdOn, filepath.Ext(fileHeader.Filename))
	metadata := map[string]string{
		"created_by":  actor,
		"filename":    fileHeader.Filename,
		"data_type":   "citation_xml",
		"created_on":  createdOn.Format("2006-01-02"),
		"case_number": caseNumber,
	}

	if _, err := Storage.Upload(ctx, bytes.NewReader(data), key, "application/xml", int64(len(data)), metadata); err != nil {
		return "", err
	}
	return key, nil
}

// ListCitationDocuments returns every citation document stored for the
// tenant, each with its head metadata and a signed download URL
func ListCitationDocuments(ctx context.Context, tenant string) ([]DocumentInfo, error) {
	objects, err := Storage.List(ctx, CitationDocumentPrefix(tenant))
	if err != nil {
		log.Printf("[ERROR] failed to list citation documents for tenant %s: %v", tenant, err)
		return nil, models.ErrInternal
	}

	documents := make([]DocumentInfo, 0, len(objects))
	for _, obj := range objects {
		metadata, err := Storage.Head(ctx, obj.Key)
		if err != nil {
			log.Printf("[WARNING] failed to read metadata for %s: %v", obj.Key, err)
			metadata = map[string]string{}
		}
		signedURL, err := Storage.GetSignedURL(ctx, obj.Key, config.DefaultSignedURLExpiry*time.Second)
		if err != nil {
			log.Printf("[ERROR] failed to sign URL for %s: %v", obj.Key, err)
			return nil, models.ErrInternal
		}
		documents = append(documents, DocumentInfo{
			Key:          obj.Key,
			FileName:     filepath.Base(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			Metadata:     metadata,
			SignedURL:    signedURL,
		})
	}

	return documents, nil
}

// ParseCitationDocument fetches a stored citation XML by key and extracts
// its create-ready payload
func ParseCitationDocument(ctx context.Context, key string) (*CitationData, error) {
	reader, _, err := Storage.Get(ctx, key)
	if err != nil {
		if isMissingObject(err) {
			return nil, models.NewNotFound("Document", key)
		}
		log.Printf("[ERROR] failed to fetch citation document %s: %v", key, err)
		return nil, models.ErrInternal
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		log.Printf("[ERROR] failed to read citation document %s: %v", key, err)
		return nil, models.ErrInternal
	}

	citation, err := ParseCitationXML(data)
	if err != nil {
		return nil, models.NewValidation("document %s is not valid citation XML", key)
	}
	return citation, nil
}

func isMissingObject(err error) bool {
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey) || errors.Is(err, fs.ErrNotExist)
}
