package document

import (
	"regexp"
	"strings"
)

// Categories assigned by Classify.
const (
	CategoryInvoice      = "rechnung"
	CategoryContract     = "vertrag"
	CategoryPrescription = "verordnung"
	CategoryReport       = "befund"
	CategoryScan         = "scan"
	CategoryOther        = "sonstiges"
)

var filenameHints = []struct {
	keyword  string
	category string
}{
	{"rechnung", CategoryInvoice},
	{"invoice", CategoryInvoice},
	{"vertrag", CategoryContract},
	{"verordnung", CategoryPrescription},
	{"rezept", CategoryPrescription},
	{"befund", CategoryReport},
	{"arztbrief", CategoryReport},
	{"bericht", CategoryReport},
}

// Classify guesses a category from the filename, falling back to the MIME
// type. Keyword matching is case-insensitive and order matters: the first
// hint wins.
func Classify(filename, mimeType string) string {
	name := strings.ToLower(filename)
	for _, hint := range filenameHints {
		if strings.Contains(name, hint.keyword) {
			return hint.category
		}
	}
	if strings.HasPrefix(mimeType, "image/") {
		return CategoryScan
	}
	return CategoryOther
}

var (
	datePattern      = regexp.MustCompile(`(?i)datum[:\s]+(\d{1,2}[./]\d{1,2}[./]\d{2,4})`)
	diagnosisPattern = regexp.MustCompile(`(?i)diagnose[:\s]+([^\n]{3,100})`)
	doctorPattern    = regexp.MustCompile(`(?i)arzt[:\s]+([^\n]{3,50})`)
)

// ExtractMetadata pulls labeled fields out of OCR text. German scans label
// these lines "Datum:", "Diagnose:" and "Arzt:"; unlabeled content is left
// alone.
func ExtractMetadata(content string) map[string]string {
	metadata := make(map[string]string)
	if m := datePattern.FindStringSubmatch(content); m != nil {
		metadata["datum"] = m[1]
	}
	if m := diagnosisPattern.FindStringSubmatch(content); m != nil {
		metadata["diagnose"] = strings.TrimSpace(m[1])
	}
	if m := doctorPattern.FindStringSubmatch(content); m != nil {
		metadata["arzt"] = strings.TrimSpace(m[1])
	}
	return metadata
}
