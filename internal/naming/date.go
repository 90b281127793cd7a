package naming

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateTokens is ordered longest first so "yyyy" wins over "yy" and "MM" over "M".
var dateTokens = []string{"yyyy", "yy", "MM", "dd", "HH", "mm", "ss", "M", "d", "H", "m", "s"}

// FormatDate renders a SaveImage-style date pattern such as "yyMMdd" or
// "yyyy-MM-dd_HH-mm-ss". Characters that start no token are copied through.
func FormatDate(pattern string, now time.Time) string {
	var b strings.Builder
	for idx := 0; idx < len(pattern); {
		token := matchToken(pattern[idx:])
		if token == "" {
			b.WriteByte(pattern[idx])
			idx++
			continue
		}
		b.WriteString(tokenValue(token, now))
		idx += len(token)
	}
	return b.String()
}

func matchToken(rest string) string {
	for _, token := range dateTokens {
		if strings.HasPrefix(rest, token) {
			return token
		}
	}
	return ""
}

func tokenValue(token string, now time.Time) string {
	switch token {
	case "yyyy":
		return fmt.Sprintf("%04d", now.Year())
	case "yy":
		return fmt.Sprintf("%02d", now.Year()%100)
	case "MM":
		return fmt.Sprintf("%02d", int(now.Month()))
	case "M":
		return strconv.Itoa(int(now.Month()))
	case "dd":
		return fmt.Sprintf("%02d", now.Day())
	case "d":
		return strconv.Itoa(now.Day())
	case "HH":
		return fmt.Sprintf("%02d", now.Hour())
	case "H":
		return strconv.Itoa(now.Hour())
	case "mm":
		return fmt.Sprintf("%02d", now.Minute())
	case "m":
		return strconv.Itoa(now.Minute())
	case "ss":
		return fmt.Sprintf("%02d", now.Second())
	case "s":
		return strconv.Itoa(now.Second())
	}
	return token
}
