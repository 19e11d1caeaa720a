package speech

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTranscript(t *testing.T) {
	cases := map[string]string{
		"  My Number is:  3305447. ": "my number is 3305447",
		"Café, résumé!!":             "cafe resume",
		"मेरा नंबर है।":              "मेरा नंबर है",
		"don't stop":                 "dont stop",
		"10:30 baje":                 "10:30 baje",
		"10.30 am":                   "10:30 am",
		"330-5447":                   "330-5447",
		"":                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTranscript(in), "input %q", in)
	}
}

func TestExtractDigitsMixedInput(t *testing.T) {
	cases := map[string]string{
		"my machine number is 330 5447":         "3305447",
		"teen teen shunya paanch char char saat": "3305447",
		"तीन तीन शून्य पांच चार चार सात":        "3305447",
		"three three zero five double four seven": "3305447",
		"330/5447":                               "3305447",
		"३३०५४४७":                                "3305447",
		"ji haan 33 aur 05":                      "3305",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractDigits(in), "input %q", in)
	}
}

func TestExtractDigitsIdiomIsNoise(t *testing.T) {
	assert.Equal(t, "", ExtractDigits("haan submit kar do"))
	assert.Equal(t, "", ExtractDigits("कर दो"))
	assert.Equal(t, "", ExtractDigits("ek minute please"))
	assert.Equal(t, "55", ExtractDigits("ek minute 55 kar do"))
}

func TestExtractDigitsFillerOnlyIsEmpty(t *testing.T) {
	var filler []string
	filler = append(filler, stopWords...)
	filler = append(filler, idiomPhrases...)
	filler = append(filler, "submit", "something", "wait")

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(8)
		words := make([]string, n)
		for j := range words {
			words[j] = filler[rng.Intn(len(filler))]
		}
		in := strings.Join(words, " ")
		require.Equal(t, "", ExtractDigits(in), "input %q", in)
	}
}

func TestExtractPhoneDigitsRoundTrip(t *testing.T) {
	english := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	hindi := []string{"shunya", "ek", "do", "teen", "char", "paanch", "chhe", "saat", "aath", "nau"}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var digits strings.Builder
		var spoken []string
		for j := 0; j < 10; j++ {
			d := rng.Intn(10)
			digits.WriteByte(byte('0' + d))
			if rng.Intn(2) == 0 {
				spoken = append(spoken, english[d])
			} else {
				spoken = append(spoken, hindi[d])
			}
		}
		require.Equal(t, digits.String(), ExtractPhoneDigits(strings.Join(spoken, " ")))
	}
}

func TestExtractPhoneDigitsDropsSingleDigit(t *testing.T) {
	assert.Equal(t, "", ExtractPhoneDigits("haan ek"))
	assert.Equal(t, "98", ExtractPhoneDigits("nine eight"))
}

func TestNormalizePhone(t *testing.T) {
	got, ok := NormalizePhone("919876543210")
	require.True(t, ok)
	assert.Equal(t, "9876543210", got)

	got, ok = NormalizePhone("09876543210")
	require.True(t, ok)
	assert.Equal(t, "9876543210", got)

	_, ok = NormalizePhone("1234567890")
	assert.False(t, ok)
	_, ok = NormalizePhone("98765")
	assert.False(t, ok)
}

func TestCandidateWindowsOrder(t *testing.T) {
	assert.Equal(t, []string{"3305447"}, CandidateWindows("3305447", 4, 8))
	assert.Nil(t, CandidateWindows("330", 4, 8))

	got := CandidateWindows("123456789", 4, 8)
	require.NotEmpty(t, got)
	assert.Equal(t, "23456789", got[0], "rightmost longest window first")
	assert.Equal(t, "12345678", got[1], "then the left end")
	assert.Equal(t, "3456789", got[2])
	assert.Equal(t, "1234567", got[3])
	assert.Equal(t, "2345678", got[4])
}

func TestCollapseStutter(t *testing.T) {
	assert.Equal(t, "1233054471", CollapseStutter("12330544471"))
	assert.Equal(t, "3305447", CollapseStutter("3305447"))
}

func TestFirstMatchFindsPaddedIdentifier(t *testing.T) {
	directory := map[string]string{"3305447": "RAMESH"}
	var calls int
	lookup := func(_ context.Context, id string) (string, bool) {
		calls++
		name, ok := directory[id]
		return name, ok
	}
	id, name, ok := FirstMatch(context.Background(), CandidateWindows("12330544471", 4, 8), 0, lookup)
	require.True(t, ok)
	assert.Equal(t, "3305447", id)
	assert.Equal(t, "RAMESH", name)
	assert.LessOrEqual(t, calls, DefaultMaxCandidates)
}

func TestFirstMatchHonoursBudget(t *testing.T) {
	var calls int
	lookup := func(_ context.Context, id string) (struct{}, bool) {
		calls++
		return struct{}{}, false
	}
	_, _, ok := FirstMatch(context.Background(), CandidateWindows("123456789012", 4, 8), 5, lookup)
	assert.False(t, ok)
	assert.Equal(t, 5, calls)
}
