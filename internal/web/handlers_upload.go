package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"github.com/JonMunkholm/CustomerUpload/internal/core"
	mw "github.com/JonMunkholm/CustomerUpload/internal/web/middleware"
)

const uploadIDHeader = mw.UploadIDHeader

// uploadField is the multipart field clients are expected to use.
const uploadField = "file"

// multipartOverhead is the body allowance for boundaries, part headers and
// form fields on top of the file size limit.
const multipartOverhead = 1 << 20

// handleUpload ingests one spreadsheet or CSV file sent as multipart form data.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := core.NewUploadID()
	w.Header().Set(uploadIDHeader, uploadID)

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondBadRequest(w, r, formError(err, maxSize))
		return
	}
	defer r.MultipartForm.RemoveAll()

	header, err := uploadedFile(r.MultipartForm)
	if err != nil {
		s.respondBadRequest(w, r, &badRequest{msg: "no file provided", err: err})
		return
	}
	if header.Size > maxSize {
		s.respondBadRequest(w, r, &badRequest{
			msg: fmt.Sprintf("file too large: limit is %d bytes", maxSize),
			err: fmt.Errorf("file %q is %d bytes", header.Filename, header.Size),
		})
		return
	}

	data, err := readFile(header)
	if err != nil {
		s.respondBadRequest(w, r, &badRequest{msg: "failed to read uploaded file", err: err})
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.ingester.Ingest(ctx, core.Upload{
		ID:          uploadID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeDetail(w, http.StatusOK, fmt.Sprintf("%d records inserted", result.Inserted))
}

// formError describes why the multipart body could not be parsed.
func formError(err error, maxSize int64) *badRequest {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return &badRequest{msg: fmt.Sprintf("file too large: limit is %d bytes", maxSize), err: err}
	}
	return &badRequest{msg: "invalid multipart form", err: err}
}

// uploadedFile returns the "file" part, or the first file part under any
// other field name.
func uploadedFile(form *multipart.Form) (*multipart.FileHeader, error) {
	if files := form.File[uploadField]; len(files) > 0 {
		return files[0], nil
	}

	fields := make([]string, 0, len(form.File))
	for name := range form.File {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		if files := form.File[name]; len(files) > 0 {
			return files[0], nil
		}
	}
	return nil, http.ErrMissingFile
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
