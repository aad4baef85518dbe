// Package cardml encodes recommendation cards as tagged text and decodes
// the same format back. Decoding tolerates malformed input because markup
// may originate from sources that do not follow the format exactly.
package cardml

import (
	"fmt"
	"strings"

	"github.com/ppiankov/logspectre/internal/models"
)

// FallbackTitle names the single info card produced when input carries no
// recognizable card markup.
const FallbackTitle = "Analysis notes"

const cardTag = "CARD"

const (
	fieldTitle  = "TITLE"
	fieldImpact = "IMPACT"
	fieldAction = "ACTION"
	fieldDocs   = "DOCS"
)

var fieldNames = map[string]bool{
	fieldTitle:  true,
	fieldImpact: true,
	fieldAction: true,
	fieldDocs:   true,
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenOpenCard
	tokenCloseCard
	tokenOpenField
	tokenCloseField
)

type token struct {
	kind tokenKind
	name string
	text string
}

// tokenize splits input into structural tags and text runs. Brackets that
// do not form a known tag stay in the text, so Markdown links survive.
func tokenize(input string) []token {
	var tokens []token
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, token{kind: tokenText, text: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(input); {
		if input[i] != '[' {
			text.WriteByte(input[i])
			i++
			continue
		}
		tok, width := scanTag(input[i:])
		if width == 0 {
			text.WriteByte(input[i])
			i++
			continue
		}
		flush()
		tokens = append(tokens, tok)
		i += width
	}
	flush()
	return tokens
}

func scanTag(s string) (token, int) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return token{}, 0
	}
	body := s[1:end]
	width := end + 1

	switch {
	case strings.HasPrefix(body, cardTag+":"):
		kind := strings.TrimSpace(strings.TrimPrefix(body, cardTag+":"))
		return token{kind: tokenOpenCard, name: kind}, width
	case body == "/"+cardTag:
		return token{kind: tokenCloseCard}, width
	}

	if fieldNames[body] {
		return token{kind: tokenOpenField, name: body}, width
	}
	if strings.HasPrefix(body, "/") && fieldNames[body[1:]] {
		return token{kind: tokenCloseField, name: body[1:]}, width
	}
	return token{}, 0
}

// HasMarkup reports whether input opens at least one card tag. Parse
// wraps arbitrary prose in a fallback card, so callers that must tell
// real markup from plain text check here first.
func HasMarkup(input string) bool {
	for _, tok := range tokenize(input) {
		if tok.kind == tokenOpenCard {
			return true
		}
	}
	return false
}

// Parse decodes tagged card markup into an ordered card sequence. It never
// fails: unknown tags stay in the body, an unclosed field ends at the next
// structural tag, prose ahead of the first tag becomes a leading info
// card, and input with no card markup at all becomes a single info card
// wrapping the whole text.
func Parse(input string) []models.RecommendationCard {
	var cards []models.RecommendationCard
	var current *cardBuilder

	// Prose ahead of the first tag is kept; text between or after cards
	// is separator noise and dropped.
	var leading strings.Builder
	beforeFirstTag := true

	for _, tok := range tokenize(input) {
		if tok.kind != tokenText {
			beforeFirstTag = false
		}
		switch tok.kind {
		case tokenOpenCard:
			if current != nil {
				cards = append(cards, current.build())
			}
			current = newCardBuilder(tok.name)
		case tokenCloseCard:
			if current != nil {
				cards = append(cards, current.build())
				current = nil
			}
		case tokenOpenField:
			if current != nil {
				current.openField(tok.name)
			}
		case tokenCloseField:
			if current != nil {
				current.closeField(tok.name)
			}
		case tokenText:
			if current != nil {
				current.write(tok.text)
			} else if beforeFirstTag {
				leading.WriteString(tok.text)
			}
		}
	}
	if current != nil {
		cards = append(cards, current.build())
	}

	if preamble := strings.TrimSpace(leading.String()); preamble != "" && len(cards) > 0 {
		cards = append([]models.RecommendationCard{{
			Kind:  models.CardInfo,
			Title: FallbackTitle,
			Body:  preamble,
		}}, cards...)
	}

	if len(cards) == 0 {
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			return nil
		}
		return []models.RecommendationCard{{
			Kind:  models.CardInfo,
			Title: FallbackTitle,
			Body:  trimmed,
		}}
	}
	return cards
}

// RenderMarkup encodes cards in the canonical tagged form. Parsing the
// result reproduces the cards, so render-parse-render is stable.
func RenderMarkup(cards []models.RecommendationCard) string {
	var sb strings.Builder
	for i, card := range cards {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[CARD:%s]\n", card.Kind)
		fmt.Fprintf(&sb, "[TITLE]%s[/TITLE]\n", card.Title)
		if card.Impact != "" {
			fmt.Fprintf(&sb, "[IMPACT]%s[/IMPACT]\n", card.Impact)
		}
		if body := strings.TrimSpace(card.Body); body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
		if card.Action != "" {
			fmt.Fprintf(&sb, "[ACTION]%s[/ACTION]\n", card.Action)
		}
		if card.DocsURL != "" {
			fmt.Fprintf(&sb, "[DOCS]%s[/DOCS]\n", card.DocsURL)
		}
		sb.WriteString("[/CARD]\n")
	}
	return sb.String()
}

type cardBuilder struct {
	kind   string
	fields map[string]*strings.Builder
	body   strings.Builder
	open   string
}

func newCardBuilder(kind string) *cardBuilder {
	return &cardBuilder{kind: kind, fields: map[string]*strings.Builder{}}
}

// openField starts capturing a field. A field tag arriving while another
// field is open implicitly closes the earlier one.
func (b *cardBuilder) openField(name string) {
	b.open = name
	if b.fields[name] == nil {
		b.fields[name] = &strings.Builder{}
	}
}

func (b *cardBuilder) closeField(name string) {
	if b.open == name {
		b.open = ""
	}
}

func (b *cardBuilder) write(text string) {
	if b.open != "" {
		b.fields[b.open].WriteString(text)
		return
	}
	b.body.WriteString(text)
}

func (b *cardBuilder) build() models.RecommendationCard {
	return models.RecommendationCard{
		Kind:    normalizeKind(b.kind),
		Title:   fieldValue(b.fields[fieldTitle]),
		Impact:  fieldValue(b.fields[fieldImpact]),
		Body:    strings.TrimSpace(b.body.String()),
		Action:  fieldValue(b.fields[fieldAction]),
		DocsURL: fieldValue(b.fields[fieldDocs]),
	}
}

func fieldValue(b *strings.Builder) string {
	if b == nil {
		return ""
	}
	return strings.TrimSpace(b.String())
}

func normalizeKind(raw string) models.CardKind {
	kind := models.CardKind(strings.ToLower(strings.TrimSpace(raw)))
	if kind.Valid() {
		return kind
	}
	return models.CardInfo
}
