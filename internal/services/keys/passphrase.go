package keys

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"seahorse/internal/domain"
)

const minPassphraseRunes = 12

// checkPassphrase returns ErrWeakPassphrase, listing what is missing, unless
// the passphrase is long enough and mixes cases, digits and symbols.
func checkPassphrase(passphrase string) error {
	var missing []string
	if utf8.RuneCountInString(passphrase) < minPassphraseRunes {
		missing = append(missing, fmt.Sprintf("%d characters", minPassphraseRunes))
	}
	classes := []struct {
		name string
		in   func(rune) bool
	}{
		{"an upper-case letter", unicode.IsUpper},
		{"a lower-case letter", unicode.IsLower},
		{"a digit", unicode.IsDigit},
		{"a symbol", func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }},
	}
	for _, c := range classes {
		if strings.IndexFunc(passphrase, c.in) < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", domain.ErrWeakPassphrase, strings.Join(missing, ", "))
	}
	return nil
}
