package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnvExpr replaces every ${env.KEY} occurrence with the value of the
// environment variable KEY, or "" when unset.  Expressions with no closing
// brace or with characters outside [letters digits _] in the key are left as
// literal text.
func expandEnvExpr(value string) string {
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], envPrefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		keyStart := i + idx + len(envPrefix)

		keyEnd := strings.IndexByte(value[keyStart:], '}')
		if keyEnd < 0 {
			b.WriteString(value[i+idx:])
			break
		}

		key := value[keyStart : keyStart+keyEnd]
		if !isEnvKey(key) {
			// keep the prefix as literal text and rescan right after it so a
			// nested expression inside the invalid one still expands
			b.WriteString(value[i+idx : keyStart])
			i = keyStart
			continue
		}

		b.WriteString(os.Getenv(key))
		i = keyStart + keyEnd + 1
	}
	return b.String()
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
