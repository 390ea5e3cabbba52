package pipeline

import (
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/layout"
)

// =============================================================================
// Worker Messages
// =============================================================================

// LayoutRequest is a layout message from a host to a worker.
type LayoutRequest struct {
	RequestID    int64           `json:"requestId"`
	People       family.People   `json:"people"`
	FocusID      string          `json:"focusId"`
	Settings     layout.Settings `json:"settings"`
	CollapsedIDs []string        `json:"collapsedIds"`
}

// Options converts the request into pipeline options.
func (req LayoutRequest) Options() Options {
	return Options{
		People:       req.People,
		FocusID:      req.FocusID,
		Settings:     req.Settings,
		CollapsedIDs: req.CollapsedIDs,
	}
}

// LayoutResponse answers a LayoutRequest. On failure Error is set and the
// geometry is empty; an empty result without Error is a valid answer.
type LayoutResponse struct {
	RequestID int64 `json:"requestId"`
	layout.Result
	Error string `json:"error,omitempty"`
}

// Failed reports whether the response carries an error.
func (r LayoutResponse) Failed() bool { return r.Error != "" }

// NewLayoutResponse builds the response for a finished computation.
func NewLayoutResponse(requestID int64, res layout.Result, err error) LayoutResponse {
	if err != nil {
		return LayoutResponse{RequestID: requestID, Result: layout.NewResult(), Error: errors.UserMessage(err)}
	}
	return LayoutResponse{RequestID: requestID, Result: res}
}

// CheckRequest asks for a consistency report.
type CheckRequest struct {
	People family.People `json:"people"`
}

// Check response types.
const (
	CheckSuccess = "success"
	CheckError   = "error"
)

// CheckResponse answers a CheckRequest. Errors maps person IDs to issue
// messages.
type CheckResponse struct {
	Type   string              `json:"type"`
	Errors map[string][]string `json:"errors"`
	Error  string              `json:"error,omitempty"`
}
