package blogservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?i)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

// sanitizeContent strips script tags from user supplied comment content
// before it is stored and echoed back to other readers.
func sanitizeContent(content string) string {
	return scriptTagPattern.ReplaceAllString(content, "")
}
