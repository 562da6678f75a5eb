package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// ExtractJSONObject locates the first balanced JSON object embedded in s and
// returns it, tolerating surrounding prose and markdown. Braces inside string
// literals do not affect the balance; backslash escapes are honored, so a
// reason field containing literal `{}` or `\"` never terminates the match
// early. Only the first top-level object is returned; trailing content is
// discarded. The second return is false when no balanced object exists and
// the caller must fall back to a laxer heuristic.
func (c *Cleaner) ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	balance := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case ch == '\\' && !escaped:
				escaped = true
			case ch == '"' && !escaped:
				inString = false
			default:
				escaped = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			balance++
		case '}':
			balance--
			if balance == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// CleanResponse strips markdown code fences around a model response.
func (c *Cleaner) CleanResponse(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}

	start := -1
	if strings.Contains(response, "```json") {
		start = strings.Index(response, "```json") + 7
	} else if strings.Contains(response, "```yaml") {
		start = strings.Index(response, "```yaml") + 7
	} else {
		start = strings.Index(response, "```") + 3
	}

	end := strings.LastIndex(response, "```")

	if start != -1 && end != -1 && end > start {
		return strings.TrimSpace(response[start:end])
	}

	return strings.TrimSpace(response)
}

// SliceObject is the lax fallback: the substring from the first `{` to the
// last `}`, with no balance checking.
func (c *Cleaner) SliceObject(s string) (string, bool) {
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first == -1 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}

// RecoverObject runs the full recovery chain: balanced extraction first, then
// fence stripping plus the first/last brace slice. The second return is false
// when neither strategy found anything object-shaped.
func (c *Cleaner) RecoverObject(s string) (string, bool) {
	if obj, ok := c.ExtractJSONObject(s); ok {
		return obj, true
	}
	stripped := c.CleanResponse(s)
	if obj, ok := c.SliceObject(stripped); ok {
		return obj, true
	}
	return stripped, false
}

func (c *Cleaner) CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()
	var textBlocks []string
	doc.Find("p, li, td, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 0 {
			textBlocks = append(textBlocks, text)
		}
	})
	if len(textBlocks) > 0 {
		return strings.Join(textBlocks, "\n\n")
	}

	bodyText := strings.TrimSpace(doc.Find("body").Text())
	if len(bodyText) > 0 {
		return cleanText(bodyText)
	}

	return cleanText(doc.Text())
}

func stripTags(html string) string {
	re := regexp.MustCompile("<[^>]*>")
	return cleanText(re.ReplaceAllString(html, " "))
}

func cleanText(text string) string {
	re := regexp.MustCompile(`\s+`)
	return strings.TrimSpace(re.ReplaceAllString(text, " "))
}
