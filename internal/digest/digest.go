package digest

import (
	"strings"
	"unicode/utf8"

	"dailynews/internal/fetcher"
)

// EmptyPlaceholder is what Build returns when there are no headlines. The
// summarizer treats it distinctly; it is never fed to a backend as content.
const EmptyPlaceholder = "(no headlines available)"

// Merge concatenates the headlines of all successful outcomes in topic fetch
// order, then deduplicates by URL keeping the first occurrence. The returned
// count is the raw successful fetch volume before deduplication, which is
// what fetched_count reports.
func Merge(outcomes []fetcher.FetchOutcome) ([]fetcher.Headline, int) {
	var fetched int
	seen := make(map[string]bool)
	var merged []fetcher.Headline

	for _, out := range outcomes {
		if out.Err != nil {
			continue
		}
		fetched += len(out.Headlines)
		for _, h := range out.Headlines {
			if h.URL == "" || seen[h.URL] {
				continue
			}
			seen[h.URL] = true
			merged = append(merged, h)
		}
	}

	return merged, fetched
}

// Build renders headlines into a line-oriented text block bounded by
// maxChars, counted in runes. Truncation happens at the last complete line
// that fits so the model never sees a half entry; only a first line that is
// itself too long gets cut mid-entry.
func Build(headlines []fetcher.Headline, maxChars int) string {
	if len(headlines) == 0 {
		return EmptyPlaceholder
	}
	if maxChars <= 0 {
		maxChars = 1000
	}

	var sb strings.Builder
	used := 0
	for _, h := range headlines {
		line := renderLine(h)
		n := utf8.RuneCountInString(line)
		if used+n > maxChars {
			break
		}
		sb.WriteString(line)
		used += n
	}

	if sb.Len() == 0 {
		return strings.TrimSpace(truncateRunes(renderLine(headlines[0]), maxChars))
	}

	return strings.TrimSpace(sb.String())
}

// truncateRunes cuts s to at most n runes without splitting a multibyte
// sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func renderLine(h fetcher.Headline) string {
	if h.SourceDomain == "" {
		return "- " + h.Title + "\n"
	}
	return "- " + h.Title + " (" + h.SourceDomain + ")\n"
}

// Titles extracts the headline titles back out of a rendered digest. The
// offline summarizer uses it to produce a deterministic summary.
func Titles(text string) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		line = strings.TrimPrefix(line, "- ")
		if i := strings.LastIndex(line, " ("); i > 0 && strings.HasSuffix(line, ")") {
			line = line[:i]
		}
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}
