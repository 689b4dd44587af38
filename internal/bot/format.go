package bot

import (
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/memoriabot/memoria/internal/members"
)

// boldName renders a member's display name for HTML replies
func boldName(m *members.Member) string {
	return "<b>" + html.EscapeString(m.DisplayName()) + "</b>"
}

// toSentence joins items the way prose would: "a", "a and b",
// "a, b, and c".
func toSentence(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// largestPhoto picks the biggest variant of a photo message. Ties keep
// the earliest variant so the choice is deterministic.
func largestPhoto(sizes []models.PhotoSize) models.PhotoSize {
	best := sizes[0]
	for _, size := range sizes[1:] {
		if size.FileSize > best.FileSize {
			best = size
		}
	}
	return best
}
