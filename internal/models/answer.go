// internal/models/answer.go
package models

type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// DataAnswer is the shape of every gateway read. Source is always set so a
// degraded answer can be told apart from a live one.
type DataAnswer struct {
	Payload interface{}            `json:"payload"`
	Source  Source                 `json:"source"`
	Total   *int                   `json:"total,omitempty"`
	Summary map[string]interface{} `json:"summary,omitempty"`
	Cached  bool                   `json:"cached,omitempty"`
}

func (a DataAnswer) IsDegraded() bool {
	return a.Source == SourceSecondary
}

// IntPtr is a helper for optional totals.
func IntPtr(v int) *int {
	return &v
}
