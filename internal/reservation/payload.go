package reservation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/jainjy/servo-sub017/internal/domain"
	"github.com/jainjy/servo-sub017/internal/forms"
)

var strict = bluemonday.StrictPolicy()

// buildPayload merges the static context, the item identifier and the
// declared fields. Free-text fields are stripped of markup; the text itself
// is sent as typed, not HTML-escaped.
func buildPayload(def forms.Definition, item domain.CatalogItem, fields map[string]string) map[string]any {
	payload := make(map[string]any, len(fields)+len(def.Static)+1)
	for k, v := range def.Static {
		payload[k] = v
	}

	names := def.Fields
	if len(names) == 0 {
		names = make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
	}
	text := make(map[string]bool, len(def.TextFields))
	for _, f := range def.TextFields {
		text[f] = true
	}
	for _, name := range names {
		v := strings.TrimSpace(fields[name])
		if text[name] {
			v = strings.TrimSpace(html.UnescapeString(strict.Sanitize(v)))
		}
		payload[name] = v
	}
	if item.ID != "" {
		payload[def.ItemKey] = item.ID
	}
	return payload
}
