package notify

import (
	"strings"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

const subjectPrefix = "subject:"

// ParseDocument takes the first line starting with "Subject:" (any case)
// as the subject and drops it from the body. Without one, the fallback
// subject is used and the whole document becomes the body.
func ParseDocument(doc contractx.AnalysisDocument, fallback string) (subject, body string) {
	lines := strings.Split(string(doc), "\n")
	for i, line := range lines {
		if len(line) < len(subjectPrefix) || !strings.EqualFold(line[:len(subjectPrefix)], subjectPrefix) {
			continue
		}
		subject = strings.TrimSpace(line[len(subjectPrefix):])
		rest := make([]string, 0, len(lines)-1)
		rest = append(rest, lines[:i]...)
		rest = append(rest, lines[i+1:]...)
		return subject, strings.Join(rest, "\n")
	}
	return fallback, string(doc)
}

// SplitRecipients turns a comma separated list into trimmed addresses.
func SplitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
