package formatter

import (
	"fmt"
	"time"

	"github.com/yildizm/nexus/internal/common"
)

// Report is one rendered run: the result and the agent feed that produced it
type Report struct {
	Result      *common.AnalysisResult
	Logs        []common.LogEvent
	Model       string
	GeneratedAt time.Time
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// Formats lists the names accepted by ForFormat
var Formats = []string{"text", "json", "markdown", "csv"}

// ForFormat returns the formatter registered under name
func ForFormat(name string, color, emoji bool) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTerminal(color, emoji), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be one of: text, json, markdown, csv)", name)
	}
}
