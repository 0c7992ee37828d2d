package index

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minCorrectable is the shortest token the corrector will touch.
const minCorrectable = 3

// Vocabulary is the set of tokens seen in the catalog, with counts, used to
// repair misspelt query words.
type Vocabulary struct {
	freq  map[string]int
	byLen map[int][]string // rune length -> tokens, sorted
}

func NewVocabulary(texts []string) *Vocabulary {
	v := &Vocabulary{
		freq:  make(map[string]int),
		byLen: make(map[int][]string),
	}
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			v.freq[tok]++
		}
	}
	for tok := range v.freq {
		n := utf8.RuneCountInString(tok)
		v.byLen[n] = append(v.byLen[n], tok)
	}
	for _, toks := range v.byLen {
		sort.Strings(toks)
	}
	return v
}

func (v *Vocabulary) Len() int {
	return len(v.freq)
}

func (v *Vocabulary) Contains(tok string) bool {
	_, ok := v.freq[tok]
	return ok
}

// Correct tokenizes query and replaces each unknown word by its nearest
// vocabulary word. Words shorter than three runes, numbers and words with no
// close match are kept unchanged.
func (v *Vocabulary) Correct(query string) string {
	toks := Tokenize(query)
	for i, tok := range toks {
		if fix, ok := v.nearest(tok); ok {
			toks[i] = fix
		}
	}
	return strings.Join(toks, " ")
}

// nearest finds the closest known token within the allowed distance: one edit
// for words up to five runes, two beyond. Ties prefer the more frequent token,
// then the lexicographically smaller one.
func (v *Vocabulary) nearest(tok string) (string, bool) {
	n := utf8.RuneCountInString(tok)
	if n < minCorrectable || v.Contains(tok) || isNumber(tok) {
		return "", false
	}

	maxDist := 1
	if n > 5 {
		maxDist = 2
	}

	best, bestDist, bestFreq := "", maxDist+1, 0
	for l := n - maxDist; l <= n+maxDist; l++ {
		for _, cand := range v.byLen[l] {
			d := levenshtein.ComputeDistance(tok, cand)
			if d > maxDist {
				continue
			}
			f := v.freq[cand]
			if d < bestDist || (d == bestDist && (f > bestFreq || (f == bestFreq && cand < best))) {
				best, bestDist, bestFreq = cand, d, f
			}
		}
	}
	return best, best != ""
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
