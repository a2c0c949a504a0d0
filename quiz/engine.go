// Package quiz implements the quiz mini-game state machine: question
// sampling, answer scoring through a pluggable judge, and progress
// tracking for one user's session.
package quiz

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
)

// Fixed fallback messages for states outside the phrase pools.
const (
	msgPoolEmpty  = "죄송해요, 아직 퀴즈가 준비되지 않았어요."
	msgNotRunning = "지금은 퀴즈 진행 중이 아니에요."
	msgStopped    = "네, 알겠습니다. 퀴즈를 마칠게요."
)

// Engine tracks one user's quiz progress. It has two states, inactive and
// active; a fresh Start discards any in-progress quiz. An Engine belongs
// to exactly one session and is not safe for concurrent use; the owning
// session's turn loop is strictly sequential.
type Engine struct {
	pool    []core.Quiz
	prompts *Prompts
	scorer  Scorer
	logger  *zap.Logger

	active    bool
	questions []core.Quiz
	cursor    int
	correct   int
	sessionID string
	userID    string
}

// NewEngine builds an engine over the shared, immutable question pool.
func NewEngine(pool []core.Quiz, prompts *Prompts, scorer Scorer, logger *zap.Logger) *Engine {
	if prompts == nil {
		prompts = &Prompts{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{pool: pool, prompts: prompts, scorer: scorer, logger: logger}
}

// IsActive reports whether a quiz is in progress.
func (e *Engine) IsActive() bool { return e.active }

// Start begins a new quiz of count questions sampled without replacement
// from the pool (clamped to pool size). It returns the start message and
// the first question text; the question is empty when the pool is empty
// and the engine stays inactive.
func (e *Engine) Start(userID string, count int) (startMsg, firstQuestion string) {
	if len(e.pool) == 0 {
		return msgPoolEmpty, ""
	}
	if count < 1 {
		count = 1
	}
	if count > len(e.pool) {
		count = len(e.pool)
	}

	e.active = true
	e.cursor = 0
	e.correct = 0
	e.userID = userID
	e.sessionID = uuid.New().String()
	e.questions = sample(e.pool, count)

	e.logger.Info("quiz started",
		zap.String("user_id", userID),
		zap.String("quiz_session_id", e.sessionID),
		zap.Int("questions", len(e.questions)))

	msg := fill(pick(e.prompts.StartPrompts, defaultStartPrompt),
		"{num_quizzes}", itoa(len(e.questions)))
	return msg, e.questionText()
}

// SubmitAnswer scores the transcribed text against the current question,
// advances the cursor, and returns the combined reply plus the result
// record to persist. Inactive engines answer softly with a nil result.
func (e *Engine) SubmitAnswer(ctx context.Context, answerText string) (string, *core.AnswerResult) {
	if !e.active {
		return msgNotRunning, nil
	}

	q := e.questions[e.cursor]
	feedback, correct := e.scorer.Score(ctx, q, answerText)
	if correct {
		e.correct++
	}

	result := &core.AnswerResult{
		UserID:        e.userID,
		QuizID:        q.ID,
		QuestionText:  q.QuestionText,
		UserAnswer:    answerText,
		CorrectAnswer: q.Answer,
		IsCorrect:     correct,
		QuizSessionID: e.sessionID,
	}

	e.cursor++
	return feedback + "\n" + e.nextMessage(), result
}

// Stop ends the quiz if one is running. Idempotent.
func (e *Engine) Stop() string {
	if !e.active {
		return msgNotRunning
	}
	e.active = false
	return msgStopped
}

// questionText formats the current question with its 1-based index.
func (e *Engine) questionText() string {
	q := e.questions[e.cursor]
	template := e.prompts.QuestionTemplate
	if template == "" {
		template = defaultQuestionTemplate
	}
	return fill(template,
		"{current_quiz_number}", itoa(e.cursor+1),
		"{total_quizzes}", itoa(len(e.questions)),
		"{question_text}", q.QuestionText)
}

// nextMessage produces either the next question prompt or, when the
// cursor has reached the question count, the final tally. Reaching the end
// transitions the engine back to inactive.
func (e *Engine) nextMessage() string {
	if e.cursor < len(e.questions) {
		return pick(e.prompts.ContinuePrompts, defaultContinuePrompt) + " " + e.questionText()
	}

	e.active = false
	summary := e.prompts.EndSummary
	if summary == "" {
		summary = defaultEndSummary
	}
	return fill(summary,
		"{total_quizzes}", itoa(len(e.questions)),
		"{correct_count}", itoa(e.correct))
}

// sample draws n distinct questions without mutating the pool.
func sample(pool []core.Quiz, n int) []core.Quiz {
	picked := make([]core.Quiz, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked
}
