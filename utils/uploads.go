package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tribeconnect/config"
)

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SavePhoto stores an uploaded image from the given multipart field and
// returns the public URL path it will be served from. Returns ("", nil)
// when the field is absent so photo uploads stay optional.
func SavePhoto(c *fiber.Ctx, field, subdir string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	if file.Size > config.AppConfig.MaxUploadBytes {
		return "", fmt.Errorf("photo must be smaller than %d bytes", config.AppConfig.MaxUploadBytes)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExts[ext] {
		return "", fmt.Errorf("unsupported photo type %q", ext)
	}

	dir := filepath.Join(config.AppConfig.UploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}

	return "/uploads/" + subdir + "/" + name, nil
}
