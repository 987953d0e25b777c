package services

import (
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/vncsmyrnk/crowdvote/internal/core/ports"
)

const pageSize = 10

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func resolveClock(clock ports.Clock) ports.Clock {
	if clock == nil {
		return systemClock{}
	}
	return clock
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

var (
	plainText = bluemonday.StrictPolicy()
	richText  = newRichTextPolicy()
)

// Descriptions may carry a little formatting; titles are plain text.
func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("p", "br", "strong", "em", "code", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

func sanitizeTitle(s string) string {
	return strings.TrimSpace(plainText.Sanitize(s))
}

func sanitizeDescription(s string) string {
	return strings.TrimSpace(richText.Sanitize(s))
}
