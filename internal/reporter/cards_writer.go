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

// WriteCards writes the cards in their canonical markup form. The render
// command re-reads this file, so it must parse back to the same cards.
func WriteCards(report *models.Report, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rendered := cardml.RenderMarkup(report.Cards)

	outputPath := filepath.Join(cfg.OutputDir, "report.cards")
	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report.cards: %w", err)
	}

	slog.Debug("report written", "path", outputPath)

	return nil
}
