package dialogue

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace so that
// keyword tables can be written in plain ASCII.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(out), " ")
}

type keyword struct {
	word string
	re   *regexp.Regexp
}

// keywords is an ordered list matched on word boundaries against folded text.
type keywords []keyword

func newKeywords(words ...string) keywords {
	out := make(keywords, 0, len(words))
	for _, w := range words {
		out = append(out, keyword{
			word: w,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`),
		})
	}
	return out
}

// first returns the first keyword, in declaration order, present in folded.
func (k keywords) first(folded string) (string, bool) {
	for _, kw := range k {
		if kw.re.MatchString(folded) {
			return kw.word, true
		}
	}
	return "", false
}

func (k keywords) any(folded string) bool {
	_, ok := k.first(folded)
	return ok
}

func (k keywords) has(word string) bool {
	for _, kw := range k {
		if kw.word == word {
			return true
		}
	}
	return false
}

const (
	maxReplyLines = 3
	maxReplyRunes = 320
)

// ClampReply keeps at most three non-empty lines, joined by spaces, and
// cuts the result to 320 runes.
func ClampReply(text string) string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
		if len(lines) == maxReplyLines {
			break
		}
	}
	out := strings.Join(lines, " ")
	if r := []rune(out); len(r) > maxReplyRunes {
		out = string(r[:maxReplyRunes])
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
