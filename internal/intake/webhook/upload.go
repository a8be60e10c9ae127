package webhook

import (
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/intake"

	"github.com/go-chi/chi/v5"
)

var uploadFormTmpl = template.Must(template.New("form").Parse(`<html><body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h3>Upload Damage Photo</h3>
<p>Session ID: {{.}}</p>
<form action="/upload-image/{{.}}" method="post" enctype="multipart/form-data">
<input type="file" name="file" accept="image/*" required><br><br>
<input type="submit" value="Upload Photo" style="padding: 10px 20px;">
</form>
</body></html>`))

var uploadDoneTmpl = template.Must(template.New("done").Parse(`<html><body style="font-family: Arial; text-align: center; padding: 100px;">
<h1>Upload received</h1>
<p>Your photo for claim {{.}} is being reviewed.</p>
<p>You can now close this tab and return to the chat.</p>
</body></html>`))

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = uploadFormTmpl.Execute(w, chi.URLParam(r, "sessionID"))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()

	if s.deps.Workflows == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "photo review is not available"})
		return
	}

	if _, err := s.deps.Store.Fetch(ctx, sessionID); err != nil {
		if stderrors.Is(err, errors.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session"})
			return
		}
		s.logger.Error("Upload session lookup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large or not multipart"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	if header.Size > s.config.MaxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload too large"})
		return
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "only images are accepted"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read upload"})
		return
	}

	path, err := s.savePhoto(sessionID, header.Filename, file)
	if err != nil {
		s.logger.Error("Failed to store photo", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store upload"})
		return
	}

	key, err := s.deps.Workflows.StartProcess(ctx, intake.ProcessClaimPhotoReview, map[string]interface{}{
		"sessionId": sessionID,
		"photoPath": path,
	})
	if err != nil {
		s.logger.Error("Failed to start photo review", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "photo review is not available"})
		return
	}

	s.logger.Info("Photo uploaded", map[string]interface{}{
		"sessionId":          sessionID,
		"path":               path,
		"processInstanceKey": key,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = uploadDoneTmpl.Execute(w, sessionID)
}

// savePhoto writes the upload as <dir>/<sessionID>_<basename>.
func (s *Server) savePhoto(sessionID, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	base := filepath.Base(filepath.Clean("/" + filename))
	if base == "/" || base == "." {
		base = "photo"
	}
	path := filepath.Join(s.config.UploadDir, fmt.Sprintf("%s_%s", filepath.Base(sessionID), base))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
