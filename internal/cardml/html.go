package cardml

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
)

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
	boldRegex       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicRegex     = regexp.MustCompile(`\*([^*\n]+)\*`)
	linkRegex       = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^)\s]+)\)`)
)

// RenderHTML renders cards as a self-contained HTML document with
// embedded CSS.
func RenderHTML(title string, cards []models.RecommendationCard) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(title))
	sb.WriteString(documentCSS)
	sb.WriteString("</head>\n")
	sb.WriteString("<body>\n")
	sb.WriteString("    <div class=\"container\">\n")
	fmt.Fprintf(&sb, "        <header class=\"header\"><h1>%s</h1></header>\n", html.EscapeString(title))
	sb.WriteString("        <main class=\"cards\">\n")

	for _, card := range cards {
		sb.WriteString(renderCardHTML(card))
	}

	sb.WriteString("        </main>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return sb.String()
}

func renderCardHTML(card models.RecommendationCard) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "            <div class=\"card card-%s\">\n", card.Kind)
	sb.WriteString("                <div class=\"card-header\">\n")
	fmt.Fprintf(&sb, "                    <span class=\"kind-badge badge-%s\">%s</span>\n", card.Kind, card.Kind)
	fmt.Fprintf(&sb, "                    <h2>%s</h2>\n", html.EscapeString(card.Title))
	if card.Impact != "" {
		fmt.Fprintf(&sb, "                    <span class=\"impact-badge\">%s</span>\n", html.EscapeString(card.Impact))
	}
	sb.WriteString("                </div>\n")

	if card.Body != "" {
		sb.WriteString("                <div class=\"card-body\">\n")
		sb.WriteString(bodyToHTML(card.Body))
		sb.WriteString("\n                </div>\n")
	}
	if card.Action != "" {
		fmt.Fprintf(&sb, "                <div class=\"card-action\"><strong>Action:</strong> <code>%s</code></div>\n",
			html.EscapeString(card.Action))
	}
	if card.DocsURL != "" {
		docs := html.EscapeString(card.DocsURL)
		fmt.Fprintf(&sb, "                <a class=\"card-docs\" href=\"%s\">%s</a>\n", docs, docs)
	}
	sb.WriteString("            </div>\n")

	return sb.String()
}

// bodyToHTML converts the body Markdown subset to HTML. Content is escaped
// first so only the conversions below can introduce markup.
func bodyToHTML(body string) string {
	content := html.EscapeString(body)

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		return fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>",
			html.EscapeString(parts[1]), strings.TrimSpace(parts[2]))
	})

	content = convertTables(content)
	content = inlineCodeRegex.ReplaceAllString(content, "<code>$1</code>")
	content = boldRegex.ReplaceAllString(content, "<strong>$1</strong>")
	content = italicRegex.ReplaceAllString(content, "<em>$1</em>")
	content = linkRegex.ReplaceAllString(content, "<a href=\"$2\">$1</a>")

	return wrapParagraphs(content)
}

func convertTables(content string) string {
	lines := strings.Split(content, "\n")
	var out []string

	for i := 0; i < len(lines); {
		if !isTableRow(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		for j < len(lines) && isTableRow(lines[j]) {
			j++
		}
		out = append(out, renderTable(lines[i:j]))
		i = j
	}

	return strings.Join(out, "\n")
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) > 1 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

func isSeparatorRow(line string) bool {
	cells := splitRow(line)
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !strings.Contains(cell, "-") || strings.Trim(cell, "-: ") != "" {
			return false
		}
	}
	return true
}

func splitRow(line string) []string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")

	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		cells = append(cells, strings.TrimSpace(part))
	}
	return cells
}

func renderTable(rows []string) string {
	var sb strings.Builder
	sb.WriteString("<table>")

	body := rows
	if len(rows) > 1 && isSeparatorRow(rows[1]) {
		sb.WriteString("<thead><tr>")
		for _, cell := range splitRow(rows[0]) {
			fmt.Fprintf(&sb, "<th>%s</th>", cell)
		}
		sb.WriteString("</tr></thead>")
		body = rows[2:]
	}

	sb.WriteString("<tbody>")
	for _, row := range body {
		if isSeparatorRow(row) {
			continue
		}
		sb.WriteString("<tr>")
		for _, cell := range splitRow(row) {
			fmt.Fprintf(&sb, "<td>%s</td>", cell)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")

	return sb.String()
}

func wrapParagraphs(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	inPre := false
	inParagraph := false

	closeParagraph := func() {
		if inParagraph {
			out = append(out, "</p>")
			inParagraph = false
		}
	}

	for _, line := range lines {
		if inPre {
			out = append(out, line)
			if strings.Contains(line, "</pre>") {
				inPre = false
			}
			continue
		}

		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "<pre") || strings.HasPrefix(trimmed, "<table") {
			closeParagraph()
			out = append(out, trimmed)
			if strings.HasPrefix(trimmed, "<pre") && !strings.Contains(trimmed, "</pre>") {
				inPre = true
			}
			continue
		}

		if trimmed == "" {
			closeParagraph()
			continue
		}

		if inParagraph {
			out = append(out, trimmed)
			continue
		}
		out = append(out, "<p>"+trimmed)
		inParagraph = true
	}
	closeParagraph()

	return strings.Join(out, "\n")
}

const documentCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            font-size: 16px;
            line-height: 1.6;
            color: #24292e;
            background: #f6f8fa;
            padding: 20px;
        }

        .container { max-width: 900px; margin: 0 auto; }

        .header h1 { font-size: 26px; margin-bottom: 20px; }

        .card {
            background: #ffffff;
            border: 1px solid #e1e4e8;
            border-left: 4px solid #6a737d;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 16px;
        }

        .card-savings { border-left-color: #22863a; }
        .card-warning { border-left-color: #d73a49; }
        .card-info    { border-left-color: #0366d6; }
        .card-success { border-left-color: #22863a; }

        .card-header {
            display: flex;
            align-items: center;
            gap: 12px;
            flex-wrap: wrap;
            margin-bottom: 12px;
        }

        .card-header h2 { font-size: 18px; flex: 1; }

        .kind-badge {
            font-size: 12px;
            font-weight: 600;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            padding: 2px 8px;
            border-radius: 10px;
            background: #e1e4e8;
            color: #24292e;
        }

        .badge-savings { background: #dcffe4; color: #22863a; }
        .badge-warning { background: #ffdce0; color: #d73a49; }
        .badge-info    { background: #dbedff; color: #0366d6; }
        .badge-success { background: #dcffe4; color: #22863a; }

        .impact-badge {
            font-size: 13px;
            font-weight: 600;
            color: #22863a;
        }

        .card-body p { margin-bottom: 10px; }

        .card-body table {
            border-collapse: collapse;
            margin: 10px 0;
            font-size: 14px;
        }

        .card-body th, .card-body td {
            border: 1px solid #e1e4e8;
            padding: 6px 12px;
            text-align: left;
        }

        .card-body th { background: #f6f8fa; }

        .card-body pre {
            background: #f6f8fa;
            border: 1px solid #e1e4e8;
            border-radius: 6px;
            padding: 12px;
            overflow-x: auto;
            margin: 10px 0;
        }

        code {
            font-family: "SF Mono", Monaco, "Source Code Pro", monospace;
            font-size: 14px;
        }

        .card-action {
            margin-top: 12px;
            font-size: 14px;
        }

        .card-docs {
            display: inline-block;
            margin-top: 8px;
            font-size: 13px;
            color: #0366d6;
            word-break: break-all;
        }
    </style>
`
