// Package i18n translates the operator facing messages of archstrap.
package i18n

import (
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
)

// domain is the name of the .po/.mo files below <locales>/<lang>/LC_MESSAGES.
const domain = "archstrap"

// Init loads the translations for the system locale from localesPath. Untranslated messages, or a missing
// localesPath, fall back to the English message id.
func Init(fs afero.Fs, localesPath string) {
	tag := SystemLocale()
	if exists, _ := afero.DirExists(fs, localesPath); !exists {
		logrus.WithField("path", localesPath).Debug("No translations found, using English")
		return
	}

	gotext.Configure(localesPath, tag.String(), domain)
	logrus.WithFields(logrus.Fields{
		"path":     localesPath,
		"language": tag.String(),
	}).Debug("Translations initialized")
}

// T returns the translation of msgid, formatted with vars when given.
func T(msgid string, vars ...interface{}) string {
	return gotext.Get(msgid, vars...)
}

// SystemLocale returns the base language of the operator's locale.
func SystemLocale() language.Tag {
	return localeFrom(os.Getenv)
}

// localeFrom resolves the locale the way libc does for messages: LC_ALL, then LC_MESSAGES, then LANG.
func localeFrom(getenv func(string) string) language.Tag {
	var locale string
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(key); v != "" {
			locale = v
			break
		}
	}

	// Strip the codeset and modifier, "de_DE.UTF-8@euro" becomes "de-DE"
	if idx := strings.IndexAny(locale, ".@"); idx != -1 {
		locale = locale[:idx]
	}
	locale = strings.Replace(locale, "_", "-", 1)

	tag, err := language.Parse(locale)
	if err != nil || locale == "C" || locale == "POSIX" {
		return language.English
	}

	base, _ := tag.Base()
	return language.Make(base.String())
}
