package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxTitleBytes is the MediaWiki limit on the UTF-8 length of a page title.
const maxTitleBytes = 255

// ValidateTitle validates an article title before it is sent to the link
// source. It rejects the characters MediaWiki never allows in a title.
//
// Validation rules:
//   - Title cannot be empty or only whitespace
//   - Maximum length of 255 bytes
//   - No control characters
//   - None of # < > [ ] | { }
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidTitle, "title cannot be empty")
	}

	if len(title) > maxTitleBytes {
		return New(ErrCodeInvalidTitle, "title too long (max %d bytes)", maxTitleBytes)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTitle, "title contains invalid control characters")
		}
	}

	if i := strings.IndexAny(title, "#<>[]|{}"); i >= 0 {
		return New(ErrCodeInvalidTitle, "title contains invalid character: %q", title[i])
	}

	return nil
}

// languageRegex matches Wikipedia language subdomains such as "en",
// "simple" or "zh-yue".
var languageRegex = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,8})*$|^simple$`)

// ValidateLanguage validates a Wikipedia language code.
func ValidateLanguage(lang string) error {
	if lang == "" {
		return New(ErrCodeInvalidInput, "language cannot be empty")
	}

	if !languageRegex.MatchString(lang) {
		return New(ErrCodeInvalidInput, "invalid language code: %q", lang)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}

	return nil
}
