package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// contentTypes maps render formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleLayout answers with a LayoutResponse for every outcome; failures
// carry the message in "error" and a matching status code.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req pipeline.LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout request")
		writeJSON(w, statusFor(err), pipeline.NewLayoutResponse(0, layout.NewResult(), err))
		return
	}

	opts := req.Options()
	res, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), &opts)
	w.Header().Set("X-Cache", cacheHeader(hit))
	resp := pipeline.NewLayoutResponse(req.RequestID, res, err)
	if err != nil {
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req pipeline.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid check request")
		writeJSON(w, statusFor(err), pipeline.CheckResponse{Type: pipeline.CheckError, Error: errors.UserMessage(err)})
		return
	}

	report, hit, err := s.runner.CheckWithCacheInfo(r.Context(), &pipeline.Options{People: req.People})
	w.Header().Set("X-Cache", cacheHeader(hit))
	if err != nil {
		writeJSON(w, statusFor(err), pipeline.CheckResponse{Type: pipeline.CheckError, Error: errors.UserMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, pipeline.CheckResponse{Type: pipeline.CheckSuccess, Errors: report.Messages()})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	var req pipeline.LayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid render request"))
		return
	}

	opts := req.Options()
	opts.Formats = []string{format}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.LayoutHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) {
		return http.StatusTooManyRequests
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSettings, errors.ErrCodeInvalidChartType,
		errors.ErrCodeInvalidLayoutMode, errors.ErrCodeInvalidPersonID, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) errors.Code {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) {
		return rl.Code()
	}
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeInternal
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a standardised JSON error response.
func writeError(w http.ResponseWriter, err error) {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	writeJSON(w, statusFor(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(codeFor(err)),
	})
}
