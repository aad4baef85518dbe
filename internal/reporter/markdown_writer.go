package reporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ppiankov/logspectre/internal/cardml"
	"github.com/ppiankov/logspectre/internal/models"
	"github.com/ppiankov/logspectre/pkg/config"
)

// WriteMarkdown renders the recommendation cards as a Markdown document.
func WriteMarkdown(report *models.Report, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rendered := cardml.RenderMarkdown(reportTitle, report.Cards)

	outputPath := filepath.Join(cfg.OutputDir, "report.md")
	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}

	slog.Debug("report written", "path", outputPath)

	return nil
}
