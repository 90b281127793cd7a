// Package naming turns user-supplied output folder names and templates into safe
// subfolder names of the output root.
package naming

import (
	"regexp"
	"strings"
)

// FallbackFolderName is used when a folder name is empty after cleaning.
const FallbackFolderName = "xyz_plot_artify"

var (
	unsafeComponentChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)
	whitespaceRun        = regexp.MustCompile(`\s+`)
	underscoreRun        = regexp.MustCompile(`_+`)
	slashRun             = regexp.MustCompile(`/+`)
	underscoredSlash     = regexp.MustCompile(`_*/_*`)
)

// CleanFolderName trims the name, normalizes backslashes, strips surrounding slashes and
// removes every ".." so the result cannot climb out of the output root. It may return "".
func CleanFolderName(name string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	clean = strings.Trim(clean, "/")
	return strings.ReplaceAll(clean, "..", "")
}

// SanitizeFolderName is CleanFolderName with FallbackFolderName for empty results.
func SanitizeFolderName(name string) string {
	if clean := CleanFolderName(name); clean != "" {
		return clean
	}
	return FallbackFolderName
}

// SanitizeComponent makes an axis title or widget name safe to embed in a folder name.
func SanitizeComponent(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	text = unsafeComponentChars.ReplaceAllString(text, "_")
	text = whitespaceRun.ReplaceAllString(text, "_")
	text = underscoreRun.ReplaceAllString(text, "_")
	return strings.Trim(text, "_")
}

func normalizeExpanded(out string) string {
	out = strings.ReplaceAll(out, `\`, "/")
	out = whitespaceRun.ReplaceAllString(out, "_")
	out = underscoreRun.ReplaceAllString(out, "_")
	out = slashRun.ReplaceAllString(out, "/")
	out = underscoredSlash.ReplaceAllString(out, "/")
	return strings.Trim(out, " _/")
}
