package msgcat

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

var supportedTags = []language.Tag{language.English, language.Spanish, language.French}

var matcher = language.NewMatcher(supportedTags)

// Supported lists the locales with embedded catalogs, English first.
func Supported() []string { return []string{"en", "es", "fr"} }

// ResolveLocale maps a POSIX ("fr_CA.UTF-8") or BCP 47 ("es-MX") locale to one
// of the supported codes, falling back to English.
func ResolveLocale(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return Fallback
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Fallback
	}
	base, _ := supportedTags[idx].Base()
	return base.String()
}

// DetectLocale reads LC_ALL, LC_MESSAGES and LANG in that order.
func DetectLocale() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return ResolveLocale(v)
		}
	}
	return Fallback
}
