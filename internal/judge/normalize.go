package judge

import (
	"strings"

	"github.com/programme-lv/judge/api"
)

// Normalize prepares program output for comparison. Each line and the
// joined result are always trimmed; CRLF collapsing and inner-whitespace
// collapsing are opt-in. Comparison is never performed on raw bytes.
// Normalize is idempotent for every option combination.
func Normalize(s string, opts api.NormalizationOptions) string {
	if opts.NormalizeCRLF {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if opts.IgnoreExtraWhitespace {
			line = strings.Join(strings.Fields(line), " ")
		}
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
