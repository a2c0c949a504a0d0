package quiz

import (
	"context"
	"strings"
	"testing"

	"github.com/tripot-labs/companion-engine/core"
)

// stubScorer marks answers correct when they equal the expected answer,
// without any I/O.
type stubScorer struct{}

func (stubScorer) Score(_ context.Context, q core.Quiz, answer string) (string, bool) {
	if answer == q.Answer {
		return "정답이에요!", true
	}
	return "아쉽지만 정답은 '" + q.Answer + "' 였어요.", false
}

func testPool(n int) []core.Quiz {
	pool := make([]core.Quiz, n)
	for i := range pool {
		pool[i] = core.Quiz{
			ID:           int64(i + 1),
			Topic:        "일반상식",
			QuestionText: "질문 " + string(rune('A'+i)),
			Answer:       "답" + string(rune('A'+i)),
		}
	}
	return pool
}

func TestStartSamplesRequestedCount(t *testing.T) {
	e := NewEngine(testPool(5), nil, stubScorer{}, nil)

	msg, first := e.Start("alice", 3)
	if msg == "" || first == "" {
		t.Fatalf("Start returned msg=%q first=%q", msg, first)
	}
	if !e.IsActive() {
		t.Fatal("engine should be active after Start")
	}
	if got := len(e.questions); got != 3 {
		t.Fatalf("sampled %d questions, want 3", got)
	}
	if e.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", e.cursor)
	}

	// Sampling is without replacement.
	seen := map[int64]bool{}
	for _, q := range e.questions {
		if seen[q.ID] {
			t.Fatalf("question %d sampled twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestStartClampsToPoolSize(t *testing.T) {
	e := NewEngine(testPool(2), nil, stubScorer{}, nil)
	e.Start("alice", 10)
	if got := len(e.questions); got != 2 {
		t.Fatalf("sampled %d questions, want 2", got)
	}
}

func TestStartEmptyPool(t *testing.T) {
	e := NewEngine(nil, nil, stubScorer{}, nil)
	msg, first := e.Start("alice", 1)
	if msg != msgPoolEmpty {
		t.Fatalf("msg = %q, want apology", msg)
	}
	if first != "" {
		t.Fatalf("first question = %q, want empty", first)
	}
	if e.IsActive() {
		t.Fatal("engine must stay inactive on empty pool")
	}
}

func TestStartDiscardsPreviousQuiz(t *testing.T) {
	e := NewEngine(testPool(4), nil, stubScorer{}, nil)
	e.Start("alice", 2)
	e.SubmitAnswer(context.Background(), e.questions[0].Answer)
	firstSession := e.sessionID

	e.Start("alice", 2)
	if e.cursor != 0 || e.correct != 0 {
		t.Fatalf("restart kept progress: cursor=%d correct=%d", e.cursor, e.correct)
	}
	if e.sessionID == firstSession {
		t.Fatal("restart must regenerate the quiz session token")
	}
}

func TestSubmitAnswerFullRound(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(testPool(5), nil, stubScorer{}, nil)
	e.Start("alice", 3)

	correctResults := 0
	for i := 0; i < 3; i++ {
		answer := "틀린답"
		if i%2 == 0 {
			answer = e.questions[i].Answer
		}

		msg, result := e.SubmitAnswer(ctx, answer)
		if result == nil {
			t.Fatalf("answer %d produced no result", i)
		}
		if result.UserID != "alice" || result.QuizSessionID != e.sessionID {
			t.Fatalf("result ownership wrong: %+v", result)
		}
		if result.IsCorrect {
			correctResults++
		}

		if i < 2 {
			if !e.IsActive() {
				t.Fatalf("engine inactive after answer %d of 3", i+1)
			}
			if msg == "" {
				t.Fatal("mid-quiz reply empty")
			}
		} else {
			if e.IsActive() {
				t.Fatal("engine must deactivate on the final answer")
			}
			// Final tally reflects produced correctness records.
			want := "3개 중 " + itoa(correctResults) + "개를 맞혔어요"
			if !strings.Contains(msg, want) {
				t.Fatalf("final message %q missing tally %q", msg, want)
			}
		}
	}

	if e.correct != correctResults {
		t.Fatalf("tally %d != correct results %d", e.correct, correctResults)
	}
}

func TestSubmitAnswerWhileInactive(t *testing.T) {
	e := NewEngine(testPool(3), nil, stubScorer{}, nil)
	msg, result := e.SubmitAnswer(context.Background(), "아무거나")
	if msg != msgNotRunning {
		t.Fatalf("msg = %q, want %q", msg, msgNotRunning)
	}
	if result != nil {
		t.Fatal("inactive engine must not produce a result")
	}
}

func TestStopIdempotent(t *testing.T) {
	e := NewEngine(testPool(3), nil, stubScorer{}, nil)

	if msg := e.Stop(); msg != msgNotRunning {
		t.Fatalf("stop while inactive = %q", msg)
	}

	e.Start("alice", 1)
	if msg := e.Stop(); msg != msgStopped {
		t.Fatalf("stop while active = %q", msg)
	}
	if e.IsActive() {
		t.Fatal("engine still active after Stop")
	}
	if msg := e.Stop(); msg != msgNotRunning {
		t.Fatalf("second stop = %q", msg)
	}
}

func TestSamplingDoesNotMutatePool(t *testing.T) {
	pool := testPool(5)
	snapshot := make([]core.Quiz, len(pool))
	copy(snapshot, pool)

	e := NewEngine(pool, nil, stubScorer{}, nil)
	for i := 0; i < 10; i++ {
		e.Start("alice", 4)
	}

	for i := range pool {
		if pool[i] != snapshot[i] {
			t.Fatalf("pool mutated at index %d", i)
		}
	}
}

func TestQuestionTemplateInterpolation(t *testing.T) {
	prompts := &Prompts{
		QuestionTemplate: "{current_quiz_number}/{total_quizzes} {question_text}",
	}
	e := NewEngine(testPool(2), prompts, stubScorer{}, nil)
	_, first := e.Start("alice", 2)
	if !strings.HasPrefix(first, "1/2 ") {
		t.Fatalf("first question %q not formatted with 1-based index", first)
	}
}
