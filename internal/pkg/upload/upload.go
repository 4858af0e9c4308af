package upload

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"relic-ledger/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// MaxFileSize caps uploaded photos at 10 MB
	MaxFileSize = 10 << 20

	// BaseDir is the root of stored uploads, served at /uploads
	BaseDir = "uploads"
)

// Subdirectories for the different photo kinds
const (
	SubdirBorrow    = "borrow"
	SubdirReturn    = "return"
	SubdirArtifacts = "artifacts"
	SubdirTemp      = "temp"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Validate checks size and extension of an uploaded photo
func Validate(file *multipart.FileHeader) error {
	if file.Size > MaxFileSize {
		return domain.Validationf("file too large: %d bytes (max %d)", file.Size, MaxFileSize)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return domain.Validationf("unsupported file type: %s", ext)
	}
	return nil
}

// Save validates and stores an uploaded photo under BaseDir/subdir with a
// uuid filename, returning the relative URL path.
func Save(c *fiber.Ctx, file *multipart.FileHeader, subdir string) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}

	dir := filepath.Join(BaseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := uuid.New().String() + ext
	dst := filepath.Join(dir, name)

	if err := c.SaveFile(file, dst); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	return "/" + filepath.ToSlash(dst), nil
}

// Delete removes a stored upload; missing files are not an error
func Delete(urlPath string) error {
	if urlPath == "" {
		return nil
	}
	p := strings.TrimPrefix(urlPath, "/")
	if !strings.HasPrefix(p, BaseDir+"/") {
		return fmt.Errorf("refusing to delete outside %s: %s", BaseDir, urlPath)
	}
	if err := os.Remove(filepath.FromSlash(p)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
