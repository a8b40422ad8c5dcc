package task

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage derives a BCP 47 tag from the locale environment,
// falling back to English.
func DefaultLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		if tag, ok := parseLocale(os.Getenv(env)); ok {
			return tag
		}
	}
	return language.English.String()
}

// NormalizeLanguage canonicalizes a user supplied language. Unknown input
// yields English.
func NormalizeLanguage(lang string) string {
	if tag, ok := parseLocale(lang); ok {
		return tag
	}
	return language.English.String()
}

// IsChinese reports whether the tag's base language is Chinese.
func IsChinese(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	zh, _ := language.Chinese.Base()
	return base == zh
}

func parseLocale(locale string) (string, bool) {
	// POSIX locales look like zh_CN.UTF-8 or en_US@euro
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "", false
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return "", false
	}
	return tag.String(), true
}
