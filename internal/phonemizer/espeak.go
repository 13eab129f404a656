// Package phonemizer converts target words to reference phoneme
// sequences using the espeak-ng grapheme-to-phoneme engine, with a
// character-split degraded mode when the engine is unavailable.
package phonemizer

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

const (
	defaultBinary = "espeak-ng"
	// Vowels used for the syllable estimate; Turkish is close to one
	// syllable per vowel
	turkishVowels = "aeɛioœöuüyɯı"
)

// WordAnalysis is the phonemizer service response for one word
type WordAnalysis struct {
	Word          string   `json:"word"`
	Phonemes      []string `json:"phonemes"`
	PhonemeCount  int      `json:"phoneme_count"`
	SyllableCount int      `json:"syllable_count"`
	Language      string   `json:"language"`
	Backend       string   `json:"backend"`
}

// EspeakPhonemizer shells out to espeak-ng for IPA phoneme sequences
type EspeakPhonemizer struct {
	binary   string
	voice    string
	language string
	logger   logging.Logger
}

// NewEspeak creates a phonemizer for the given espeak voice (e.g.
// "tr")
func NewEspeak(voice string) *EspeakPhonemizer {
	return &EspeakPhonemizer{
		binary:   defaultBinary,
		voice:    voice,
		language: voice,
		logger: logging.WithFields(logging.Fields{
			"component": "espeak_phonemizer",
			"voice":     voice,
		}),
	}
}

// Available probes whether the espeak binary can run
func (p *EspeakPhonemizer) Available(ctx context.Context) bool {
	err := exec.CommandContext(ctx, p.binary, "--version").Run()
	return err == nil
}

// Phonemize returns the IPA phoneme sequence for a word. When espeak
// fails or is missing, each character of the word becomes a
// pseudo-phoneme instead of returning an error.
func (p *EspeakPhonemizer) Phonemize(ctx context.Context, word string) ([]string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, p.binary, "-v", p.voice, "-q", "--ipa", word)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		p.logger.Warn("espeak failed, using character-split fallback", logging.Fields{
			"word":  word,
			"error": err.Error(),
		})
		return charSplit(word), nil
	}

	phonemes := TokenizeIPA(out.String())
	if len(phonemes) == 0 {
		return charSplit(word), nil
	}

	p.logger.Debug("word phonemized", logging.Fields{
		"word":     word,
		"phonemes": strings.Join(phonemes, " "),
	})

	return phonemes, nil
}

// Analyze returns the full service response including the syllable
// estimate
func (p *EspeakPhonemizer) Analyze(ctx context.Context, word string) (*WordAnalysis, error) {
	phonemes, err := p.Phonemize(ctx, word)
	if err != nil {
		return nil, err
	}

	return &WordAnalysis{
		Word:          word,
		Phonemes:      phonemes,
		PhonemeCount:  len(phonemes),
		SyllableCount: EstimateSyllables(phonemes),
		Language:      p.language,
		Backend:       defaultBinary,
	}, nil
}

// AnalyzeBatch phonemizes several words in one pass
func (p *EspeakPhonemizer) AnalyzeBatch(ctx context.Context, words []string) ([]*WordAnalysis, error) {
	results := make([]*WordAnalysis, 0, len(words))
	for _, word := range words {
		analysis, err := p.Analyze(ctx, word)
		if err != nil {
			return nil, err
		}
		if analysis != nil {
			results = append(results, analysis)
		}
	}
	return results, nil
}

// TokenizeIPA splits an IPA string into phoneme symbols. Affricates
// joined by a tie bar (e.g. d͡ʒ) stay one symbol, combining length and
// stress marks are handled, whitespace separates nothing meaningful.
func TokenizeIPA(ipa string) []string {
	const (
		tieBar     = '͡' // combining double inverted breve
		lengthMark = 'ː'
		stressPri  = 'ˈ'
		stressSec  = 'ˌ'
	)

	runes := []rune(strings.TrimSpace(ipa))
	var tokens []string

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == ' ' || r == '\n' || r == '\t' || r == stressPri || r == stressSec {
			continue
		}

		token := string(r)

		// Tie bar binds this rune with the next one
		if i+2 < len(runes) && runes[i+1] == tieBar {
			token = string(runes[i : i+3])
			i += 2
		}

		// Length mark attaches to the preceding symbol
		if i+1 < len(runes) && runes[i+1] == lengthMark {
			token += string(lengthMark)
			i++
		}

		tokens = append(tokens, token)
	}

	return tokens
}

// EstimateSyllables counts vowel symbols in the sequence
func EstimateSyllables(phonemes []string) int {
	count := 0
	for _, p := range phonemes {
		base := strings.TrimSuffix(p, "ː")
		if strings.ContainsAny(base, turkishVowels) {
			count++
		}
	}
	return count
}

var turkishLower = cases.Lower(language.Turkish)

// charSplit is the degraded mode: each character of the word becomes
// a pseudo-phoneme
func charSplit(word string) []string {
	folded := turkishLower.String(word)
	runes := []rune(folded)
	out := make([]string, 0, len(runes))
	for _, r := range runes {
		if r == ' ' {
			continue
		}
		out = append(out, string(r))
	}
	return out
}
