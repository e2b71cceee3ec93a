package scanner

import (
	"regexp"
	"strings"

	"price-lookup/internal/models"
)

var (
	digitsPattern    = regexp.MustCompile(`^\d+$`)
	rearLabelPattern = regexp.MustCompile(`(?i)back|rear|environment|trás|tras`)
)

// Device is a scanning device the station can open.
type Device struct {
	ID    string
	Label string
}

// Classify turns decoded or typed text into a single-result search:
// all-digit text is a barcode, anything else a reference.
func Classify(text string) models.SearchQuery {
	text = strings.TrimSpace(text)
	if digitsPattern.MatchString(text) {
		return models.SearchQuery{Barcode: text, One: true}
	}
	return models.SearchQuery{Reference: text, One: true}
}

// SelectDevice picks the remembered device, then a rear-facing one, then the first.
func SelectDevice(devices []Device, remembered string) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	if remembered != "" {
		for _, d := range devices {
			if d.ID == remembered {
				return d, true
			}
		}
	}
	for _, d := range devices {
		if rearLabelPattern.MatchString(d.Label) {
			return d, true
		}
	}
	return devices[0], true
}
