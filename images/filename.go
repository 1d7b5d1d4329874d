package images

import (
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

const (
	maxSlugLength    = 50
	defaultExtension = ".jpg"
)

// slugDisallowed matches everything outside ASCII alphanumerics, CJK
// ideographs, hiragana, katakana, hyphen and space.
var slugDisallowed = regexp.MustCompile(`[^0-9A-Za-z一-龥ぁ-んァ-ン\- ]`)

// Slugify turns a display name into a filename-safe slug
func Slugify(name string) string {
	slug := slugDisallowed.ReplaceAllString(name, "")
	slug = strings.ReplaceAll(strings.TrimSpace(slug), " ", "_")
	if utf8.RuneCountInString(slug) > maxSlugLength {
		slug = string([]rune(slug)[:maxSlugLength])
	}
	return slug
}

// FileStem returns the filename without extension: "{id}_{slug}" or "{slug}".
// It is empty when there is nothing to name the file after.
func FileStem(name, playerID string) string {
	slug := Slugify(name)
	playerID = strings.TrimSpace(playerID)
	switch {
	case playerID != "":
		return playerID + "_" + slug
	case slug != "":
		return slug
	default:
		return ""
	}
}

// ExtensionFromURL returns the extension of the URL's path, if any
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

// ExtensionForContentType maps a Content-Type header value to a file
// extension, falling back to ".jpg".
func ExtensionForContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return defaultExtension
	}
	if m := mimetype.Lookup(mediaType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return defaultExtension
}
