package refmorph

import (
	"strings"
	"testing"
)

func TestAnalyzeBasicSentence(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}

	tokens := a.Analyze("これを持っていけ。")
	if len(tokens) == 0 {
		t.Fatal("expected at least one token")
	}

	found := false
	for _, tok := range tokens {
		if tok.Surface == "持っ" {
			found = true
			if tok.BaseForm != "持つ" {
				t.Errorf("BaseForm = %q, want 持つ", tok.BaseForm)
			}
		}
	}
	if !found {
		t.Error("expected to find surface 持っ")
	}
}

func TestPrimaryPOSSet(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}

	tokens := a.Analyze("これを持っていけ。")
	found := false
	for _, tok := range tokens {
		if len(tok.PartsOfSpeech) > 0 && tok.PrimaryPOS == tok.PartsOfSpeech[0] && tok.PrimaryPOS != "" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected at least one token to have PrimaryPOS set and match PartsOfSpeech[0]")
	}
}

func TestAnalyzeDocumentSplitsOnSentenceDelimiters(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}

	sentences := a.AnalyzeDocument("これを持っていけ。それは正しい！")
	if len(sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sentences))
	}
	for _, s := range sentences {
		if len(s.Tokens) == 0 {
			t.Errorf("sentence has no tokens: %q", s.Text)
		}
	}
	if !strings.Contains(sentences[0].Text, "。") {
		t.Errorf("expected first sentence to retain 。, got %q", sentences[0].Text)
	}
}

func TestSurfacesFlattensSentences(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	sentences := a.AnalyzeDocument("これを持っていけ。")
	surfaces := Surfaces(sentences)
	if len(surfaces) == 0 {
		t.Fatal("expected non-empty surfaces")
	}
}
