package quiz

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Prompts holds the configurable phrase pools for quiz messages. Field
// names mirror the keys of the quiz prompts JSON file. Every pool may be
// empty or missing; pickers fall back to a fixed default per pool.
type Prompts struct {
	StartPrompts      []string `json:"quiz_start_prompts"`
	QuestionTemplate  string   `json:"quiz_question_template"`
	ContinuePrompts   []string `json:"quiz_continue_prompt"`
	CorrectFeedback   []string `json:"quiz_correct_feedback"`
	IncorrectFeedback []string `json:"quiz_incorrect_feedback"`
	EndSummary        string   `json:"quiz_end_summary"`
}

// Per-pool defaults used when the prompts file is missing or a pool is empty.
const (
	defaultStartPrompt      = "퀴즈 시작!"
	defaultQuestionTemplate = "{question_text}"
	defaultContinuePrompt   = "다음 문제!"
	defaultCorrectFeedback  = "정답!"
	defaultIncorrectFeed    = "아쉽네요. 정답은 '{correct_answer}' 였어요."
	defaultEndSummary       = "{total_quizzes}개 중 {correct_count}개를 맞혔어요."
)

// LoadPrompts reads the phrase pools from a JSON file. A missing or
// unreadable file yields empty pools, which every caller tolerates via the
// per-pool defaults.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Prompts{}, fmt.Errorf("read quiz prompts: %w", err)
	}

	var p Prompts
	if err := json.Unmarshal(data, &p); err != nil {
		return &Prompts{}, fmt.Errorf("parse quiz prompts: %w", err)
	}
	return &p, nil
}

// pick selects a random phrase from the pool, falling back when empty.
func pick(pool []string, fallback string) string {
	if len(pool) == 0 {
		return fallback
	}
	return pool[rand.Intn(len(pool))]
}

// fill substitutes the {placeholder} tokens the templates use.
func fill(template string, pairs ...string) string {
	r := strings.NewReplacer(pairs...)
	return r.Replace(template)
}

func itoa(n int) string { return strconv.Itoa(n) }
