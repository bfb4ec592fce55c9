package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DeliverableFolder is where milestone deliverables are stored.
const DeliverableFolder = "talenthive/deliverables"

var deliverableFormats = []string{"jpg", "jpeg", "png", "gif", "pdf", "doc", "docx", "zip", "txt", "md", "fig", "psd"}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadResult is the file reference a freelancer attaches to a deliverable.
type UploadResult struct {
	URL          string `json:"file_url"`
	PublicID     string `json:"file_public_id"`
	FileName     string `json:"file_name"`
	Format       string `json:"format"`
	ResourceType string `json:"resource_type"`
	Bytes        int    `json:"bytes"`
}

// DeliverablePublicID names an upload so files of one contract group
// together and never collide.
func DeliverablePublicID(contractID, fileName string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	return fmt.Sprintf("%s/%d_%s", contractID, at.Unix(), base)
}

// UploadDeliverable uploads a file to Cloudinary under the contract's folder.
func (s *CloudinaryService) UploadDeliverable(ctx context.Context, contractID string, file *multipart.FileHeader) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	params := uploader.UploadParams{
		Folder:         DeliverableFolder,
		PublicID:       DeliverablePublicID(contractID, file.Filename, time.Now()),
		ResourceType:   "auto",
		AllowedFormats: deliverableFormats,
	}
	result, err := s.cld.Upload.Upload(ctx, src, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return &UploadResult{
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		FileName:     file.Filename,
		Format:       result.Format,
		ResourceType: result.ResourceType,
		Bytes:        result.Bytes,
	}, nil
}

// DeleteFile deletes a file from Cloudinary
func (s *CloudinaryService) DeleteFile(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete file from Cloudinary: %w", err)
	}
	return nil
}
