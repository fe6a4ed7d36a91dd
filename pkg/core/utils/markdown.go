package utils

import "strings"

// CleanMarkdown prepares model-written narrative text for rendering:
// it strips an outer fenced code block (```markdown, ```md or a bare
// fence) that chat models often wrap their answer in, and trims
// surrounding whitespace. The inner markdown is left untouched.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") {
		return cleaned
	}

	body := strings.TrimSuffix(cleaned, "```")
	body = strings.TrimPrefix(body, "```")
	// Drop a language tag on the opening fence ("markdown", "md", ...).
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		tag := strings.TrimSpace(body[:i])
		if tag != "" && !strings.ContainsAny(tag, " \t") && len(tag) <= 16 {
			body = body[i+1:]
		}
	}
	return strings.TrimSpace(body)
}
