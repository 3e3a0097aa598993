package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/CustomerUpload/internal/samples"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleTemplate serves an empty customer file with the expected header.
// Query format is csv (default) or xlsx.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case "csv":
		contentType = "text/csv; charset=utf-8"
		err = samples.WriteCSV(&buf, nil)
	case "xlsx":
		contentType = xlsxContentType
		err = samples.WriteXLSX(&buf, nil)
	default:
		s.respondBadRequest(w, r, &badRequest{msg: fmt.Sprintf("unknown template format %q: use csv or xlsx", format)})
		return
	}
	if err != nil {
		s.respondError(w, r, fmt.Errorf("render %s template: %w", format, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="customers_template.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
