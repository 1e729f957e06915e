// Package upload accepts document files over multipart HTTP and feeds
// them to the ingest pipeline.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/document"
	"docqa/internal/ingest"
	"docqa/internal/middleware"
)

type Ingester interface {
	Ingest(ctx context.Context, path, fileType string) (*ingest.Result, error)
}

type Handler struct {
	ingester  Ingester
	uploadDir string
	maxBytes  int64
}

func NewHandler(ingester Ingester, uploadDir string, maxUploadSizeMB int) *Handler {
	return &Handler{
		ingester:  ingester,
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadSizeMB) << 20,
	}
}

type StatusResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type FileResult struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

func (h *Handler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	h.uploadSingle(w, r, document.FileTypePDF, ".pdf")
}

func (h *Handler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	h.uploadSingle(w, r, document.FileTypeExcel, ".xlsx", ".xls")
}

func (h *Handler) uploadSingle(w http.ResponseWriter, r *http.Request, fileType string, exts ...string) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !hasExtension(header.Filename, exts) {
		writeDetail(w, http.StatusBadRequest, extensionError(fileType))
		return
	}

	path, err := h.saveFile(file, header.Filename)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save upload", "error", err, "correlationId", middleware.GetCorrelationID(ctx))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.ingester.Ingest(ctx, path, fileType)
	if err != nil {
		if errors.Is(err, ingest.ErrDuplicate) {
			writeDetail(w, http.StatusConflict, err.Error())
			return
		}
		slog.ErrorContext(ctx, "ingestion failed", "error", err, "file", header.Filename, "correlationId", middleware.GetCorrelationID(ctx))
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	label := "PDF"
	if fileType == document.FileTypeExcel {
		label = "Excel file"
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "success",
		Message: fmt.Sprintf("%s '%s' uploaded and ingested successfully", label, result.FileName),
		Details: map[string]string{"file_path": path},
	})
}

func (h *Handler) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeDetail(w, http.StatusBadRequest, "files field is required")
		return
	}

	results := make([]FileResult, 0, len(headers))
	for _, header := range headers {
		results = append(results, h.ingestOne(ctx, header))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// ingestOne never fails the whole batch: each file reports its own
// success, skipped, or error outcome.
func (h *Handler) ingestOne(ctx context.Context, header *multipart.FileHeader) FileResult {
	fileType, supported := typeForFilename(header.Filename)
	if !supported {
		return FileResult{Filename: header.Filename, Status: "skipped", Message: "Unsupported file type"}
	}

	file, err := header.Open()
	if err != nil {
		return FileResult{Filename: header.Filename, Status: "error", Message: err.Error()}
	}
	defer file.Close()

	path, err := h.saveFile(file, header.Filename)
	if err != nil {
		return FileResult{Filename: header.Filename, Status: "error", Message: err.Error()}
	}

	if _, err := h.ingester.Ingest(ctx, path, fileType); err != nil {
		return FileResult{Filename: header.Filename, Status: "error", Message: err.Error()}
	}
	return FileResult{Filename: header.Filename, Status: "success", Message: "Ingested successfully"}
}

// saveFile stores the upload under the original base name, so a
// re-upload of the same name overwrites the previous copy.
func (h *Handler) saveFile(file multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(h.uploadDir, filepath.Base(filename))

	dst, err := os.Create(filepath.Clean(path)) // #nosec G304 -- base name only, rooted in configured upload dir
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return path, nil
}

func hasExtension(filename string, exts []string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func typeForFilename(filename string) (string, bool) {
	switch {
	case hasExtension(filename, []string{".pdf"}):
		return document.FileTypePDF, true
	case hasExtension(filename, []string{".xlsx", ".xls"}):
		return document.FileTypeExcel, true
	default:
		return "", false
	}
}

func extensionError(fileType string) string {
	if fileType == document.FileTypeExcel {
		return "Only Excel files (.xlsx, .xls) are allowed"
	}
	return "Only PDF files are allowed"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
