package i18n

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/message"

	"github.com/jask/voltalert/internal/logging"
)

// Dictionary is a read-only view of one locale.
type Dictionary struct {
	locale   string
	messages map[string]string
	base     map[string]string
	keys     []string
	printer  *message.Printer
	log      *logging.Logger
}

// Locale returns the locale this dictionary was matched to.
func (d *Dictionary) Locale() string { return d.locale }

// Text returns the message for key. A key unknown to every catalog is
// returned as-is and logged with the closest known key.
func (d *Dictionary) Text(key string) string {
	if v, ok := d.lookup(key); ok {
		return v
	}
	return key
}

// Format looks up key and formats it with args using locale-aware number
// formatting.
func (d *Dictionary) Format(key string, args ...any) string {
	if _, ok := d.lookup(key); !ok {
		return key
	}
	return d.printer.Sprintf(key, args...)
}

// Has reports whether key is known to this locale or the base locale.
func (d *Dictionary) Has(key string) bool {
	if _, ok := d.messages[key]; ok {
		return true
	}
	_, ok := d.base[key]
	return ok
}

func (d *Dictionary) lookup(key string) (string, bool) {
	if v, ok := d.messages[key]; ok {
		return v, true
	}
	if v, ok := d.base[key]; ok {
		return v, true
	}
	if hint := d.Suggest(key); hint != "" {
		d.log.Warnf("missing key %q in %s (did you mean %q?)", key, d.locale, hint)
	} else {
		d.log.Warnf("missing key %q in %s", key, d.locale)
	}
	return "", false
}

// Suggest returns the known key closest to key, or "" when nothing is close.
func (d *Dictionary) Suggest(key string) string {
	best := ""
	bestDist := -1
	for _, k := range d.keys {
		dist := levenshtein.ComputeDistance(key, k)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = k, dist
		}
	}
	limit := len(key) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
