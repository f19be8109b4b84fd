package platform

import (
	"regexp"
	"strings"
)

// supportedSourcePattern matches links whose host belongs to a supported
// family, with an optional www. or m. prefix, followed by a path separator.
var supportedSourcePattern = regexp.MustCompile(`(?i)^https?://(?:(?:www|m)\.)?(?:youtube\.com|youtu\.be|instagram\.com|instagr\.am)/`)

// bareURLPattern is the fallback scanner for links in free text
var bareURLPattern = regexp.MustCompile(`https?://\S+`)

// Source family markers used by Normalize
var (
	videoFamilyMarkers = []string{"youtube", "youtu.be"}
	photoFamilyMarkers = []string{"instagram", "instagr.am"}
)

// IsSupported reports whether url points at a supported source
func IsSupported(url string) bool {
	return supportedSourcePattern.MatchString(strings.TrimSpace(url))
}

// Normalize trims whitespace and strips tracking noise: links of the video
// family are cut at the first '&', links of the photo family at the first '?'.
// Applying it twice yields the same result.
func Normalize(url string) string {
	clean := strings.TrimSpace(url)
	lower := strings.ToLower(clean)
	if containsAny(lower, videoFamilyMarkers) {
		clean, _, _ = strings.Cut(clean, "&")
	}
	if containsAny(lower, photoFamilyMarkers) {
		clean, _, _ = strings.Cut(clean, "?")
	}
	return clean
}

// FindURL returns the first http(s) link in text, or "" when there is none
func FindURL(text string) string {
	return bareURLPattern.FindString(text)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
