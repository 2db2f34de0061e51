package validation

import "strings"

// htmlReplacer escapes the characters that are unsafe when a stored value is
// later rendered into markup. The ampersand is deliberately left alone so
// that sanitizing an already-sanitized value is a no-op.
var htmlReplacer = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Sanitize trims surrounding whitespace and HTML-escapes unsafe characters.
// Sanitize(Sanitize(x)) == Sanitize(x) for every input.
func Sanitize(raw string) string {
	return htmlReplacer.Replace(strings.TrimSpace(raw))
}

// threatMarkers is a fixed denylist of substrings associated with script
// injection, SQL keyword injection, path traversal and command injection.
// It is a heuristic first line of defense, not a parser; every consumer of
// the sanitized data still relies on parameterized queries and output
// escaping.
var threatMarkers = []string{
	// script injection
	"<script", "</script", "javascript:", "vbscript:", "onerror=", "onload=", "onclick=", "eval(",
	// SQL keyword injection
	"union select", "drop table", "insert into", "delete from", "truncate table", "exec(", "xp_cmdshell",
	// path traversal
	"../", "..\\", "%2e%2e",
	// command injection
	"rm -rf", "cmd.exe", "/etc/passwd", "$(", "&&", "||",
}

// ContainsThreat reports whether the trimmed input contains any denylisted
// marker, case-insensitively. It runs before HTML escaping so that markers
// containing slashes or angle brackets still match the attacker's payload.
func ContainsThreat(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, marker := range threatMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
