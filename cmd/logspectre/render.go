package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ppiankov/logspectre/internal/cardml"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const renderTitle = "Log Analytics Cost Report"

// NewRenderCmd creates the render command
func NewRenderCmd() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "render <cards-file>",
		Short: "Render a saved card document",
		Long: `Re-render the card markup written by analyze (report.cards) as
styled terminal output, HTML, or Markdown without re-running the
analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], format, outPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "terminal", "Render format (terminal, html, markdown)")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to a file instead of stdout")

	return cmd
}

// runRender parses the card markup and renders it in the requested format
func runRender(path, format, outPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cards file: %w", err)
	}

	// Parse wraps plain prose in a fallback card, so the markup check
	// has to come first: a file without any card tags is the wrong file.
	if !cardml.HasMarkup(string(data)) {
		return fmt.Errorf("no cards found in %s", path)
	}
	cards := cardml.Parse(string(data))

	var rendered string
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html":
		rendered = cardml.RenderHTML(renderTitle, cards)
	case "markdown", "md":
		rendered = cardml.RenderMarkdown(renderTitle, cards)
	case "terminal", "":
		rendered = renderTerminal(cardml.RenderMarkdown(renderTitle, cards))
	default:
		return fmt.Errorf("invalid --format value %q (terminal, html, markdown)", format)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("✓ Rendered %d cards to %s\n", len(cards), outPath)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// renderTerminal styles markdown for terminal display. Piped output and
// renderer failures fall back to the plain markdown.
func renderTerminal(markdown string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return markdown
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
