package keyword

import "testing"

func TestScoreCountsDistinctMatches(t *testing.T) {
	text := "A complex tapestry. Truly complex, a complex tapestry of tapestries."
	score, matched := Score(text, []string{"complex", "tapestry", "symphony"}, nil)
	if score != 2 {
		t.Fatalf("expected score 2, got %d (matched %v)", score, matched)
	}
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	score, _ := Score("NUANCED and Complex", []string{"complex", "nuanced"}, nil)
	if score != 2 {
		t.Fatalf("expected score 2, got %d", score)
	}
}

func TestScoreWholeWordOnly(t *testing.T) {
	// "art" must not match inside "particular" or "artful"
	score, _ := Score("a particular artful reply", []string{"art"}, nil)
	if score != 0 {
		t.Fatalf("expected no match inside larger words, got score %d", score)
	}
	score, _ = Score("state of the art reply", []string{"art"}, nil)
	if score != 1 {
		t.Fatalf("expected whole-word match, got score %d", score)
	}
}

func TestScoreMatchesPhrases(t *testing.T) {
	score, matched := Score("well, it depends on context", []string{"it depends"}, nil)
	if score != 1 {
		t.Fatalf("expected phrase match, got score %d", score)
	}
	if matched[0] != "it depends" {
		t.Fatalf("expected matched phrase, got %v", matched)
	}
}

func TestScorePhraseNeedsBoundaries(t *testing.T) {
	score, _ := Score("audit dependss", []string{"it depends"}, nil)
	if score != 0 {
		t.Fatalf("expected no match without word boundaries, got score %d", score)
	}
}

func TestScoreHonorsExemptions(t *testing.T) {
	exempted := ExemptionSet([]string{"Complex"})
	score, matched := Score("complex complex complex nuanced", []string{"complex", "nuanced"}, exempted)
	if score != 1 {
		t.Fatalf("expected exempted keyword ignored, got score %d", score)
	}
	for _, m := range matched {
		if m == "complex" {
			t.Fatal("exempted keyword must never be reported as matched")
		}
	}
}

func TestScoreEmptyKeywordSet(t *testing.T) {
	score, matched := Score("anything at all", nil, nil)
	if score != 0 || matched != nil {
		t.Fatalf("expected zero score for empty keyword set, got %d %v", score, matched)
	}
}

func TestScorePunctuationBoundaries(t *testing.T) {
	score, _ := Score("It's complex. Really!", []string{"complex"}, nil)
	if score != 1 {
		t.Fatalf("expected punctuation to act as boundary, got score %d", score)
	}
}
