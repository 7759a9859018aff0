package blocks

import (
	"fmt"
	"html"
	"strings"
)

// Format selects the output of Convert
type Format int

const (
	FormatText Format = iota
	FormatHTML
)

// Convert renders a stored document in the given format. Input that is not a
// block array falls back to the raw string (wrapped in a paragraph for HTML).
func Convert(raw string, format Format) string {
	doc, ok := Parse(raw)
	if !ok {
		if format == FormatHTML {
			return "<p>" + html.EscapeString(raw) + "</p>"
		}
		return raw
	}

	switch format {
	case FormatHTML:
		var sb strings.Builder
		for _, b := range doc {
			sb.WriteString(blockHTML(b))
		}
		return sb.String()
	default:
		parts := make([]string, 0, len(doc))
		for _, b := range doc {
			if t := b.PlainText(); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, " ")
	}
}

// ToText flattens a document to plain text for previews and search snippets
func ToText(raw string) string {
	return Convert(raw, FormatText)
}

// ToHTML renders a document to read-only HTML
func ToHTML(raw string) string {
	return Convert(raw, FormatHTML)
}

func blockHTML(b Block) string {
	inner := b.InlineHTML()
	switch b.Type {
	case TypeHeading:
		level := b.Level()
		return fmt.Sprintf("<h%d>%s</h%d>", level, inner, level)
	case TypeBulletListItem, TypeNumberedListItem:
		return "<li>" + inner + "</li>"
	default:
		return "<p>" + inner + "</p>"
	}
}

// NodeKind is the layout of a structured node
type NodeKind string

const (
	KindParagraph    NodeKind = "paragraph"
	KindHeading      NodeKind = "heading"
	KindBullet       NodeKind = "bullet"
	KindNumbered     NodeKind = "numbered"
	KindPreformatted NodeKind = "preformatted"
)

// Node is one element of the structured render used by detail views
type Node struct {
	Kind  NodeKind `json:"kind"`
	Level int      `json:"level,omitempty"`
	Text  string   `json:"text"`
	HTML  string   `json:"html,omitempty"`
}

// Render produces the structured node list for a document. Malformed input
// yields a single preformatted node holding the raw text.
func Render(raw string) []Node {
	doc, ok := Parse(raw)
	if !ok {
		return []Node{{Kind: KindPreformatted, Text: raw}}
	}

	nodes := make([]Node, 0, len(doc))
	for _, b := range doc {
		n := Node{Text: b.PlainText(), HTML: b.InlineHTML()}
		switch b.Type {
		case TypeHeading:
			n.Kind = KindHeading
			n.Level = b.Level()
		case TypeBulletListItem:
			n.Kind = KindBullet
		case TypeNumberedListItem:
			n.Kind = KindNumbered
		default:
			n.Kind = KindParagraph
		}
		nodes = append(nodes, n)
	}
	return nodes
}
