package llm

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxResultChars caps the text of a normalized result, counted in code points.
const MaxResultChars = 40000

const ellipsis = "..."

type Shape string

const (
	ShapeStructured Shape = "structured"
	ShapeHTML       Shape = "html"
	ShapePlain      Shape = "plain"
)

var (
	textKeys = []string{"result_text", "result", "analysis", "summary"}
	htmlKeys = []string{"result_html", "html"}

	fencePattern     = regexp.MustCompile("(?i)```json|```")
	objectPattern    = regexp.MustCompile(`(?s)\{.*\}`)
	htmlPattern      = regexp.MustCompile(`(?is)</?[a-z].*>`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	whitespaceRunPat = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]{2,}`)
)

type NormalizedResult struct {
	Text   string          `json:"result"`
	HTML   *string         `json:"html"`
	Scores json.RawMessage `json:"scores,omitempty"`
	Shape  Shape           `json:"shape"`
}

// Reply is what a model answered, classified by shape. It is one of
// StructuredReply, HTMLReply or PlainReply.
type Reply interface {
	Shape() Shape
	Result() NormalizedResult
}

type StructuredReply struct {
	Text   string
	HTML   string
	Scores json.RawMessage
}

func (r StructuredReply) Shape() Shape { return ShapeStructured }

func (r StructuredReply) Result() NormalizedResult {
	res := NormalizedResult{
		Text:   truncateResult(r.Text),
		Scores: r.Scores,
		Shape:  ShapeStructured,
	}
	if r.HTML != "" {
		html := r.HTML
		res.HTML = &html
	}
	return res
}

type HTMLReply struct {
	Markup string
}

func (r HTMLReply) Shape() Shape { return ShapeHTML }

func (r HTMLReply) Result() NormalizedResult {
	markup := r.Markup
	return NormalizedResult{
		Text:  truncateResult(stripHTMLTags(markup)),
		HTML:  &markup,
		Shape: ShapeHTML,
	}
}

type PlainReply struct {
	Text string
}

func (r PlainReply) Shape() Shape { return ShapePlain }

func (r PlainReply) Result() NormalizedResult {
	return NormalizedResult{
		Text:  truncateResult(r.Text),
		Shape: ShapePlain,
	}
}

// ParseReply classifies raw model output. A JSON object carrying one of the
// accepted text fields wins, then anything that looks like HTML, then the raw
// text itself.
func ParseReply(raw string) Reply {
	if obj, ok := extractJSONObject(raw); ok {
		if text := firstString(obj, textKeys); text != "" {
			return StructuredReply{
				Text:   text,
				HTML:   firstString(obj, htmlKeys),
				Scores: rawField(obj, "scores"),
			}
		}
	}

	if looksLikeHTML(raw) {
		return HTMLReply{Markup: raw}
	}

	return PlainReply{Text: raw}
}

func Normalize(raw string) NormalizedResult {
	return ParseReply(raw).Result()
}

func extractJSONObject(text string) (map[string]json.RawMessage, bool) {
	cleaned := fencePattern.ReplaceAllString(text, "")
	if start := strings.Index(cleaned, "{"); start >= 0 {
		cleaned = cleaned[start:]
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil && obj != nil {
		return obj, true
	}

	match := objectPattern.FindString(cleaned)
	if match == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(match), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func firstString(obj map[string]json.RawMessage, keys []string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func rawField(obj map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

func looksLikeHTML(s string) bool {
	return htmlPattern.MatchString(s)
}

func stripHTMLTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = whitespaceRunPat.ReplaceAllString(s, " ")
	return strings.TrimFunc(s, isMarkupSpace)
}

// isMarkupSpace matches the same characters as whitespaceRunPat, which is
// wider than ASCII whitespace: NBSP and the other Unicode spaces included.
func isMarkupSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func truncateResult(s string) string {
	if utf8.RuneCountInString(s) <= MaxResultChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxResultChars]) + ellipsis
}
