// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package login

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	msgAuthenticationFailed = "The email or password you entered is incorrect."
	msgTooManyAttempts      = "Too many login attempts. Please try again in %d seconds."
)

// supportedLanguages lists catalog languages; the first is the fallback.
var supportedLanguages = []language.Tag{language.English, language.Indonesian}

var (
	messages        = newCatalog()
	languageMatcher = language.NewMatcher(supportedLanguages)
)

func newCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))

	entries := []struct {
		tag  language.Tag
		key  string
		text string
	}{
		{language.English, msgAuthenticationFailed, msgAuthenticationFailed},
		{language.English, msgTooManyAttempts, msgTooManyAttempts},
		{language.Indonesian, msgAuthenticationFailed, "Email atau password yang Anda masukkan salah."},
		{language.Indonesian, msgTooManyAttempts, "Terlalu banyak percobaan login. Silakan coba lagi dalam %d detik."},
	}
	for _, entry := range entries {
		if err := builder.SetString(entry.tag, entry.key, entry.text); err != nil {
			panic(err)
		}
	}

	return builder
}

// printerFor picks the best supported language for an Accept-Language header.
func printerFor(acceptLanguage string) *message.Printer {
	preferred, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	matched, _, _ := languageMatcher.Match(preferred...)

	// Drop region and extensions so the tag hits a catalog entry exactly
	base, _ := matched.Base()
	return message.NewPrinter(language.Make(base.String()), message.Catalog(messages))
}
