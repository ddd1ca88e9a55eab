// Package refmorph wraps kagome as a golden-reference tokenizer,
// cross-checked against internal/morph's from-scratch segmentation by
// cmd/suzuri's compare subcommand.
package refmorph

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Token is one kagome-analyzed unit of text.
type Token struct {
	Surface       string
	BaseForm      string
	Reading       string
	PartsOfSpeech []string
	PrimaryPOS    string
}

// Sentence groups the tokens belonging to one sentence.
type Sentence struct {
	Text   string
	Tokens []Token
}

// Analyzer tokenizes text with kagome's bundled IPA dictionary.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// NewAnalyzer builds an Analyzer over kagome's IPA dictionary.
func NewAnalyzer() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze tokenizes text into a flat token sequence.
//
// Kagome IPA feature layout: 0 POS, 1-3 sub-POS, 4 conjugation type,
// 5 conjugation form, 6 base form, 7 reading, 8 pronunciation.
func (a *Analyzer) Analyze(text string) []Token {
	tokens := a.t.Tokenize(text)
	var result []Token

	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		features := token.Features()

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}

		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}

		primaryPOS := ""
		if len(features) > 0 {
			primaryPOS = features[0]
		}

		result = append(result, Token{
			Surface:       token.Surface,
			BaseForm:      base,
			Reading:       reading,
			PartsOfSpeech: features,
			PrimaryPOS:    primaryPOS,
		})
	}

	return result
}

// AnalyzeDocument splits text into sentences and tokenizes each one.
func (a *Analyzer) AnalyzeDocument(text string) []Sentence {
	var result []Sentence
	for _, s := range splitSentences(text) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		result = append(result, Sentence{Text: s, Tokens: a.Analyze(s)})
	}
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '。' || r == '！' || r == '？' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// Surfaces flattens a Sentence slice down to its token surfaces, the
// shape cmd/suzuri's compare subcommand diffs against internal/morph's
// segmentation.
func Surfaces(sentences []Sentence) []string {
	var out []string
	for _, s := range sentences {
		for _, t := range s.Tokens {
			out = append(out, t.Surface)
		}
	}
	return out
}
