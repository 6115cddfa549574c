package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neuranotes/neuranotes/pkg/apperr"
)

var allowedImageTypes = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

var base64ImagePattern = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

func uploadFilename(ext string) string {
	return fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)
}

func (s *Server) saveUpload(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating uploads directory: %v", err)
	}
	path := filepath.Join(s.opts.UploadDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing upload: %v", err)
	}
	return "/uploads/" + filename, nil
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.UploadMax+1024*1024)

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, s.logger, apperr.Validation("no image file provided").WithCause(err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageTypes[strings.TrimPrefix(ext, ".")] {
		respondError(w, s.logger, apperr.Validation("only image files are allowed (jpeg, jpg, png, gif, webp)"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.opts.UploadMax+1))
	if err != nil {
		respondError(w, s.logger, apperr.Internal("failed to read upload").WithCause(err))
		return
	}
	if int64(len(data)) > s.opts.UploadMax {
		respondError(w, s.logger, apperr.Validation("image too large"))
		return
	}

	filename := uploadFilename(ext)
	url, err := s.saveUpload(filename, data)
	if err != nil {
		respondError(w, s.logger, apperr.Internal("failed to upload image").WithCause(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url":      url,
		"filename": filename,
	})
}

type base64UploadRequest struct {
	Image string `json:"image"`
}

func (s *Server) handleUploadImageBase64(w http.ResponseWriter, r *http.Request) {
	var req base64UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, s.logger, apperr.Validation("invalid request body").WithCause(err))
		return
	}
	if req.Image == "" {
		respondError(w, s.logger, apperr.Validation("no image data provided"))
		return
	}

	match := base64ImagePattern.FindStringSubmatch(req.Image)
	if match == nil {
		respondError(w, s.logger, apperr.Validation("invalid base64 image format"))
		return
	}

	imageType := strings.ToLower(match[1])
	if !allowedImageTypes[imageType] {
		respondError(w, s.logger, apperr.Validation("invalid image type, only jpeg, jpg, png, gif, webp are allowed"))
		return
	}

	data, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		respondError(w, s.logger, apperr.Validation("invalid base64 image data").WithCause(err))
		return
	}
	if int64(len(data)) > s.opts.UploadMax {
		respondError(w, s.logger, apperr.Validation("image too large, maximum size is 5MB"))
		return
	}

	filename := uploadFilename("." + imageType)
	url, err := s.saveUpload(filename, data)
	if err != nil {
		respondError(w, s.logger, apperr.Internal("failed to upload image").WithCause(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"url":      url,
		"filename": filename,
	})
}
