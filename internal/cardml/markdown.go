package cardml

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
)

// RenderMarkdown renders cards as a Markdown export.
func RenderMarkdown(title string, cards []models.RecommendationCard) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)

	for i, card := range cards {
		fmt.Fprintf(&sb, "## %s %s\n\n", kindLabel(card.Kind), card.Title)
		if card.Impact != "" {
			fmt.Fprintf(&sb, "**Impact:** %s\n\n", card.Impact)
		}
		if body := strings.TrimSpace(card.Body); body != "" {
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
		if card.Action != "" {
			fmt.Fprintf(&sb, "**Action:** %s\n\n", card.Action)
		}
		if card.DocsURL != "" {
			fmt.Fprintf(&sb, "[Documentation](%s)\n\n", card.DocsURL)
		}
		if i < len(cards)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return sb.String()
}

func kindLabel(kind models.CardKind) string {
	switch kind {
	case models.CardSavings:
		return "💰"
	case models.CardWarning:
		return "⚠️"
	case models.CardSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}
