package naming

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
)

// DefaultTemplate names a folder after the date and the bound axes.
const DefaultTemplate = "%date:yyMMdd%_X_%inputx_node_title%_%inputx_widget_name%_Y_%inputy_node_title%_%inputy_widget_name%_Z_%inputz_node_title%_%inputz_widget_name%"

var datePattern = regexp.MustCompile(`%date:([^%]+)%`)

// zBlocks are removed verbatim from templates when the sweep has no Z axis.
var zBlocks = []string{
	"_Z_%inputz_node_title%_%inputz_widget_name%",
	"Z_%inputz_node_title%_%inputz_widget_name%",
}

// Axes carries the references whose metadata can appear in a template. Z is nil when the
// sweep has no active Z axis.
type Axes struct {
	X *axis.Reference
	Y *axis.Reference
	Z *axis.Reference
}

// ExpandTemplate substitutes date, clock and axis tokens in template and returns a
// sanitized folder name. An empty template falls back to DefaultTemplate.
func ExpandTemplate(template string, axes Axes, now time.Time) string {
	raw := strings.TrimSpace(template)
	if raw == "" {
		raw = DefaultTemplate
	}
	if axes.Z == nil {
		for _, block := range zBlocks {
			raw = strings.ReplaceAll(raw, block, "")
		}
	}

	out := datePattern.ReplaceAllStringFunc(raw, func(token string) string {
		match := datePattern.FindStringSubmatch(token)
		pattern := strings.TrimSpace(match[1])
		if pattern == "" {
			return ""
		}
		return FormatDate(pattern, now)
	})

	out = strings.NewReplacer(
		"%year%", fmt.Sprintf("%04d", now.Year()),
		"%month%", fmt.Sprintf("%02d", int(now.Month())),
		"%day%", fmt.Sprintf("%02d", now.Day()),
		"%hour%", fmt.Sprintf("%02d", now.Hour()),
		"%minute%", fmt.Sprintf("%02d", now.Minute()),
		"%second%", fmt.Sprintf("%02d", now.Second()),
	).Replace(out)

	out = strings.NewReplacer(
		"%inputx_node_title%", componentOf(axes.X, axis.Reference.NodeTitle),
		"%inputx_widget_name%", componentOf(axes.X, axis.Reference.WidgetName),
		"%inputy_node_title%", componentOf(axes.Y, axis.Reference.NodeTitle),
		"%inputy_widget_name%", componentOf(axes.Y, axis.Reference.WidgetName),
		"%inputz_node_title%", componentOf(axes.Z, axis.Reference.NodeTitle),
		"%inputz_widget_name%", componentOf(axes.Z, axis.Reference.WidgetName),
	).Replace(out)

	return SanitizeFolderName(normalizeExpanded(out))
}

func componentOf(ref *axis.Reference, field func(axis.Reference) string) string {
	if ref == nil {
		return ""
	}
	return SanitizeComponent(field(*ref))
}
