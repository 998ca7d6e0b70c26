package keys

import (
	"testing"

	"github.com/stretchr/testify/require"

	"seahorse/internal/domain"
)

func TestCheckPassphrase(t *testing.T) {
	cases := map[string]bool{
		"":                  false,
		"Short1!":           false,
		"alllowercase12!":   false,
		"ALLUPPERCASE12!":   false,
		"NoDigitsHere!!":    false,
		"NoSymbols12345":    false,
		"Correct-Horse-42":  true,
		"Ünïcode-Pass-9876": true,
	}
	for in, ok := range cases {
		err := checkPassphrase(in)
		if ok {
			require.NoError(t, err, in)
		} else {
			require.ErrorIs(t, err, domain.ErrWeakPassphrase, in)
		}
	}
}

func TestCheckPassphrase_ListsMissing(t *testing.T) {
	err := checkPassphrase("abc")
	require.ErrorContains(t, err, "12 characters")
	require.ErrorContains(t, err, "a digit")
	require.NotContains(t, err.Error(), "a lower-case letter")
}
