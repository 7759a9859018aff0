// Package blocks converts stored block documents (a JSON array of typed
// blocks, each holding styled inline text runs) to plain text, HTML and a
// structured node list for detail views.
package blocks

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Block types produced by the editor
const (
	TypeParagraph        = "paragraph"
	TypeHeading          = "heading"
	TypeBulletListItem   = "bulletListItem"
	TypeNumberedListItem = "numberedListItem"
)

// Block is one top-level node of a document
type Block struct {
	Type    string                 `json:"type"`
	Props   map[string]interface{} `json:"props,omitempty"`
	Content json.RawMessage        `json:"content,omitempty"`
}

// Run is a span of inline text with style flags
type Run struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Styles Styles `json:"styles"`
}

// Styles are the inline style flags of a run
type Styles struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Underline bool `json:"underline"`
}

// Document is a parsed block document
type Document []Block

// Parse decodes a stored document. ok is false when raw is not a JSON array.
// Elements that are not block objects are skipped.
func Parse(raw string) (Document, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, false
	}
	if elems == nil {
		// "null" decodes without error
		return nil, false
	}

	doc := make(Document, 0, len(elems))
	for _, e := range elems {
		var b Block
		if string(e) == "null" || json.Unmarshal(e, &b) != nil {
			continue
		}
		doc = append(doc, b)
	}
	return doc, true
}

// Runs returns the inline runs of the block. A missing or non-array content yields no runs.
func (b Block) Runs() []Run {
	if len(b.Content) == 0 {
		return nil
	}
	var runs []Run
	if err := json.Unmarshal(b.Content, &runs); err != nil {
		return nil
	}
	return runs
}

// Level returns the heading level from props, defaulting to 1 and clamped to 1..6
func (b Block) Level() int {
	level := 1
	switch v := b.Props["level"].(type) {
	case float64:
		level = int(v)
	case string:
		fmt.Sscanf(v, "%d", &level)
	}
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// PlainText concatenates the text of the block's runs, ignoring styles
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, r := range b.Runs() {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// InlineHTML renders the block's runs with bold/italic/underline markup applied independently
func (b Block) InlineHTML() string {
	var sb strings.Builder
	for _, r := range b.Runs() {
		t := html.EscapeString(r.Text)
		if r.Styles.Bold {
			t = "<strong>" + t + "</strong>"
		}
		if r.Styles.Italic {
			t = "<em>" + t + "</em>"
		}
		if r.Styles.Underline {
			t = "<u>" + t + "</u>"
		}
		sb.WriteString(t)
	}
	return sb.String()
}
