package quotes

import (
	"fmt"
	"html"
	"strings"
)

// Format renders a quote as an HTML message. Context, when present, is
// shown as an italic line under the attribution.
func Format(quote *Quote) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("💬 %s\n", html.EscapeString(quote.Content)))
	sb.WriteString(fmt.Sprintf("— <b>%s</b>, %d", html.EscapeString(quote.Author), quote.CreatedAt.Year()))
	if quote.Context != nil && *quote.Context != "" {
		sb.WriteString(fmt.Sprintf("\n<i>%s</i>", html.EscapeString(*quote.Context)))
	}
	return sb.String()
}

// FormatGenerated renders a synthetic quote with its claimed author
func FormatGenerated(content, author string) string {
	if author == "" {
		author = "Anonymous"
	}
	return fmt.Sprintf("💬 %s\n— <b>%s</b>", html.EscapeString(content), html.EscapeString(author))
}
