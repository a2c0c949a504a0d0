package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tripot-labs/companion-engine/core"
)

// cannedCompleter returns a fixed response or error.
type cannedCompleter struct {
	response string
	err      error
}

func (c *cannedCompleter) Complete(_ context.Context, _ core.CompletionRequest) (string, error) {
	return c.response, c.err
}

var scorerQuestion = core.Quiz{ID: 1, QuestionText: "대한민국의 수도는?", Answer: "서울"}

func TestLLMScorerExtractsVerdict(t *testing.T) {
	s := NewLLMScorer(&cannedCompleter{response: "정답이에요! 정말 잘하셨어요! TRUE"}, nil)

	feedback, correct := s.Score(context.Background(), scorerQuestion, "서울이요")
	if !correct {
		t.Fatal("TRUE sentinel should mark the answer correct")
	}
	if strings.Contains(strings.ToUpper(feedback), "TRUE") {
		t.Fatalf("sentinel not stripped from feedback: %q", feedback)
	}
	if !strings.Contains(feedback, "정말 잘하셨어요") {
		t.Fatalf("feedback lost its prose: %q", feedback)
	}
}

func TestLLMScorerFalseVerdict(t *testing.T) {
	s := NewLLMScorer(&cannedCompleter{response: "아쉽지만 틀렸어요. 정답은 서울이었답니다. FALSE"}, nil)

	feedback, correct := s.Score(context.Background(), scorerQuestion, "부산")
	if correct {
		t.Fatal("FALSE sentinel should mark the answer wrong")
	}
	if strings.Contains(strings.ToUpper(feedback), "FALSE") {
		t.Fatalf("sentinel not stripped: %q", feedback)
	}
}

func TestLLMScorerLowercaseSentinel(t *testing.T) {
	s := NewLLMScorer(&cannedCompleter{response: "맞아요! true"}, nil)

	feedback, correct := s.Score(context.Background(), scorerQuestion, "서울")
	if !correct {
		t.Fatal("sentinel matching must be case-insensitive")
	}
	if strings.Contains(strings.ToLower(feedback), "true") {
		t.Fatalf("lowercase sentinel not stripped: %q", feedback)
	}
}

func TestLLMScorerFallbackOnError(t *testing.T) {
	s := NewLLMScorer(&cannedCompleter{err: errors.New("model unavailable")}, nil)

	// Containment fallback: answer mentioning the expected text passes.
	_, correct := s.Score(context.Background(), scorerQuestion, "서울 아닌가요")
	if !correct {
		t.Fatal("fallback should accept an answer containing the expected text")
	}

	feedback, correct := s.Score(context.Background(), scorerQuestion, "부산")
	if correct {
		t.Fatal("fallback should reject an unrelated answer")
	}
	if !strings.Contains(feedback, "서울") {
		t.Fatalf("fallback feedback should reveal the answer: %q", feedback)
	}
}

func TestExactScorer(t *testing.T) {
	s := NewExactScorer(&Prompts{
		IncorrectFeedback: []string{"정답은 '{correct_answer}' 였어요."},
	})
	ctx := context.Background()

	if _, correct := s.Score(ctx, scorerQuestion, "  서울 "); !correct {
		t.Fatal("trimmed exact match should be correct")
	}
	if _, correct := s.Score(ctx, core.Quiz{Answer: "Seoul"}, "sEoUl"); !correct {
		t.Fatal("match must be case-insensitive")
	}

	feedback, correct := s.Score(ctx, scorerQuestion, "서울특별시")
	if correct {
		t.Fatal("non-exact answer must be wrong under exact matching")
	}
	if !strings.Contains(feedback, "서울") {
		t.Fatalf("feedback should interpolate the correct answer: %q", feedback)
	}
}
