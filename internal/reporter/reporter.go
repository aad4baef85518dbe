// Package reporter writes analysis reports in the configured output
// formats.
package reporter

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

// Report formats accepted by --format. FormatAll writes every format.
const (
	FormatAll      = "all"
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatCards    = "cards"
	FormatSARIF    = "sarif"
	FormatText     = "text"
)

const reportTitle = "Log Analytics Cost Report"

// Reporter interface for generating reports
type Reporter interface {
	Generate(report *models.Report) error
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
}

// New creates a new reporter instance
func New(cfg *config.Config) Reporter {
	return &reporter{
		config: cfg,
	}
}

// Generate writes the report in every requested format.
func (r *reporter) Generate(report *models.Report) error {
	for _, format := range r.formats() {
		var err error
		switch format {
		case FormatJSON:
			err = WriteJSON(report, r.config)
		case FormatHTML:
			err = WriteHTML(report, r.config)
		case FormatMarkdown, "md":
			err = WriteMarkdown(report, r.config)
		case FormatCards:
			err = WriteCards(report, r.config)
		case FormatSARIF:
			err = WriteSARIF(report, r.config)
		case FormatText:
			err = WriteText(report, r.config)
		default:
			err = fmt.Errorf("unknown report format: %s", format)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formats expands the configured format string into the writer list.
func (r *reporter) formats() []string {
	raw := strings.ToLower(strings.TrimSpace(r.config.Format))
	if raw == "" || raw == FormatAll {
		return []string{FormatJSON, FormatHTML, FormatMarkdown, FormatCards, FormatSARIF, FormatText}
	}

	parts := strings.Split(raw, ",")
	formats := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			formats = append(formats, trimmed)
		}
	}
	return formats
}
