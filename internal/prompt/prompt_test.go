package prompt

import (
	"strings"
	"testing"
)

func TestExplainInterpolatesConcept(t *testing.T) {
	t.Parallel()

	p := Explain("recursion")
	if !strings.Contains(p, `"recursion"`) {
		t.Errorf("expected concept in prompt, got %q", p)
	}
	if !strings.Contains(p, "exactly one short") {
		t.Errorf("expected single-question instruction, got %q", p)
	}
}

func TestCheckAnswerInterpolatesBothParams(t *testing.T) {
	t.Parallel()

	p := CheckAnswer("What is 2+2?", "5")
	for _, want := range []string{`"What is 2+2?"`, `"5"`, "CORRECT", "INCORRECT"} {
		if !strings.Contains(p, want) {
			t.Errorf("expected %q in prompt, got %q", want, p)
		}
	}
}

func TestCorrectInterpolatesConcept(t *testing.T) {
	t.Parallel()

	p := Correct("photosynthesis")
	if !strings.Contains(p, `"photosynthesis"`) {
		t.Errorf("expected concept in prompt, got %q", p)
	}
}

func TestRespondInterpolatesText(t *testing.T) {
	t.Parallel()

	p := Respond("tell me more")
	if !strings.Contains(p, "tell me more") {
		t.Errorf("expected user text in prompt, got %q", p)
	}
}

func TestExampleConceptsNonEmpty(t *testing.T) {
	t.Parallel()

	if len(ExampleConcepts) == 0 {
		t.Fatal("expected example concepts to be populated")
	}
	for i, c := range ExampleConcepts {
		if strings.TrimSpace(c) == "" {
			t.Errorf("concept %d is empty", i)
		}
	}
}
