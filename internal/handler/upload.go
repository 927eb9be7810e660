package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/communitysquad/eventhub/internal/model"
)

const (
	uploadField     = "images"
	maxUploadBytes  = 20 << 20
	uploadPermsDir  = 0o755
	uploadPermsFile = 0o644
)

var errInvalidFileType = errors.New("only image files are allowed")

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadStore writes multipart image uploads to disk. The domain layer only
// ever sees the resulting descriptors, never raw bytes.
type UploadStore struct {
	dir string
}

// NewUploadStore constructs an UploadStore rooted at dir.
func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

// Save stores every file of the request's "images" field under a name
// scoped to the uploader, returning the stored descriptors plus a mapping
// from original file names to stored names. Callers use the mapping to
// rewrite a mainImage field that references an upload by its original name.
func (u *UploadStore) Save(r *http.Request, userID string) ([]model.UploadedFile, map[string]string, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		return nil, nil, nil
	}

	if err := os.MkdirAll(u.dir, uploadPermsDir); err != nil {
		return nil, nil, fmt.Errorf("create upload dir: %w", err)
	}

	files := make([]model.UploadedFile, 0, len(headers))
	renamed := make(map[string]string, len(headers))
	stamp := time.Now().UnixMilli()
	for i, fh := range headers {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedImageExts[ext] {
			return nil, nil, errInvalidFileType
		}

		name := fmt.Sprintf("%s_%d_%d%s", userID, stamp, i, ext)
		if err := u.writeFile(fh, name); err != nil {
			return nil, nil, err
		}

		renamed[fh.Filename] = name
		files = append(files, model.UploadedFile{Name: name})
	}
	return files, renamed, nil
}

func (u *UploadStore) writeFile(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, uploadPermsFile)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}
