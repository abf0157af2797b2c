// handlers/upload.go - Image upload for group logos and photos
package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./static/uploads"
}

// UploadFile stores an uploaded image under a uuid-prefixed name and returns
// its public path.
// POST /api/upload (multipart field "file")
func UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "No file uploaded",
		})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Unsupported file type",
		})
	}

	dir := uploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to prepare upload directory",
		})
	}

	// uuid prefix avoids collisions between same-named uploads
	base := filepath.Base(fileHeader.Filename)
	filename := fmt.Sprintf("%s_%s", uuid.New().String()[:8], base)

	if err := c.SaveFile(fileHeader, filepath.Join(dir, filename)); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save file",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"file_path":     "/uploads/" + filename,
		"filename":      filename,
		"original_name": base,
	})
}
