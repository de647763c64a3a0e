package common

import (
	"strings"
	"time"
)

// CategoryMaturity classifies how contested a market is
type CategoryMaturity string

const (
	MaturityBlueOcean       CategoryMaturity = "Blue Ocean"
	MaturityRedOcean        CategoryMaturity = "Red Ocean"
	MaturityMarketExpansion CategoryMaturity = "Market Expansion"
)

// ValuationStatus compares the ask against the benchmark median
type ValuationStatus string

const (
	ValuationPremium  ValuationStatus = "Premium"
	ValuationPar      ValuationStatus = "Par"
	ValuationDiscount ValuationStatus = "Discount"
)

// Outcome is the end state of a simulation scenario
type Outcome string

const (
	OutcomeSurvive  Outcome = "Survive"
	OutcomeCollapse Outcome = "Collapse"
	OutcomePivot    Outcome = "Pivot"
)

// Agent names one narrated stage of the pipeline
type Agent string

const (
	AgentAlpha Agent = "ALPHA"
	AgentBeta  Agent = "BETA"
	AgentGamma Agent = "GAMMA"
	AgentDelta Agent = "DELTA"
)

// Status is the terminal state a log line reports
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// TimestampLayout is the wall-clock format of LogEvent.Timestamp
const TimestampLayout = "15:04:05"

// LogEvent is one line of the agent terminal feed
type LogEvent struct {
	ID        string `json:"id"`
	Agent     Agent  `json:"agent"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Status    Status `json:"status"`
}

// FileInput is an attached document ready for upload
type FileInput struct {
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mimeType"`
	// Data is standard base64 without any data-URI header
	Data string `json:"data"`
}

// AnalysisRequest is what the user submits for one run
type AnalysisRequest struct {
	Text string     `json:"text"`
	File *FileInput `json:"file,omitempty"`
}

// HasInput reports whether at least one modality is present
func (r AnalysisRequest) HasInput() bool {
	return strings.TrimSpace(r.Text) != "" || r.File.HasData()
}

// HasData reports whether the attachment carries a payload past any data-URI header
func (f *FileInput) HasData() bool {
	if f == nil {
		return false
	}
	data := f.Data
	if strings.HasPrefix(data, "data:") {
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[i+1:]
		}
	}
	return strings.TrimSpace(data) != ""
}

// Valid reports whether m is a known maturity value
func (m CategoryMaturity) Valid() bool {
	switch m {
	case MaturityBlueOcean, MaturityRedOcean, MaturityMarketExpansion:
		return true
	}
	return false
}

// Valid reports whether v is a known valuation status
func (v ValuationStatus) Valid() bool {
	switch v {
	case ValuationPremium, ValuationPar, ValuationDiscount:
		return true
	}
	return false
}

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSurvive, OutcomeCollapse, OutcomePivot:
		return true
	}
	return false
}

// FormatTimestamp renders t the way the feed displays it
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// AcceptedMediaType reports whether a file of this media type may be attached.
// PDFs, images and plain text are accepted.
func AcceptedMediaType(mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/pdf":
		return true
	case strings.HasPrefix(mt, "image/"):
		return true
	case strings.HasPrefix(mt, "text/"):
		return true
	}
	return false
}
