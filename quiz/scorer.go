package quiz

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
)

// Scorer judges one quiz answer and produces user-facing feedback. The
// engine selects the implementation at construction: an LLM judge when a
// completer is available, exact matching otherwise.
type Scorer interface {
	Score(ctx context.Context, question core.Quiz, userAnswer string) (feedback string, correct bool)
}

// judgeSystemPrompt instructs the judge to embed a TRUE/FALSE verdict in
// its prose. The sentinel is stripped from the feedback before display.
const judgeSystemPrompt = "당신은 어르신에게 문제 정답 여부를 판단하고 따뜻한 피드백을 제공하는 친절한 AI 말벗입니다. " +
	"사용자의 답변이 정답인지 아닌지 명확하게 판단하여 알려주세요. 추가 질문이나 대화 유도는 절대 하지 마세요. " +
	"정답이라면 칭찬과 함께 답변 마지막에 'TRUE'를, 오답이라면 정답을 알려주고 격려하며 'FALSE'를 반드시 포함해주세요. " +
	"예시: '정답이에요! 정말 잘하셨어요! TRUE', '아쉽지만 틀렸어요. 정답은 OO였답니다. FALSE'"

var sentinelPattern = regexp.MustCompile(`(?i)\s*(TRUE|FALSE)\s*`)

// LLMScorer asks a chat-completion judge for a verdict embedded in its
// free-text response.
type LLMScorer struct {
	completer core.Completer
	logger    *zap.Logger
}

// NewLLMScorer builds a judge-backed scorer.
func NewLLMScorer(completer core.Completer, logger *zap.Logger) *LLMScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMScorer{completer: completer, logger: logger}
}

// Score judges the answer via the LLM. On any completion failure it falls
// back to containment matching with canned feedback; scoring never fails
// the turn.
func (s *LLMScorer) Score(ctx context.Context, question core.Quiz, userAnswer string) (string, bool) {
	raw, err := s.completer.Complete(ctx, core.CompletionRequest{
		System: judgeSystemPrompt,
		Messages: []core.Message{
			{Role: core.RoleUser, Content: "문제: " + question.QuestionText +
				"\n어르신 답변: " + userAnswer +
				"\n정답: " + question.Answer},
		},
		MaxTokens:   100,
		Temperature: 0.5,
	})
	if err != nil {
		s.logger.Warn("quiz judge failed, falling back to containment match",
			zap.Int64("quiz_id", question.ID), zap.Error(err))
		if strings.Contains(strings.ToLower(userAnswer), strings.ToLower(question.Answer)) {
			return "정답이에요! 정말 대단하세요!", true
		}
		return "아쉽지만 정답은 '" + question.Answer + "' 였어요. 다음 문제도 화이팅!", false
	}

	correct := strings.Contains(strings.ToUpper(raw), "TRUE")
	feedback := strings.TrimSpace(sentinelPattern.ReplaceAllString(raw, " "))
	return feedback, correct
}

// ExactScorer compares answers with a case-insensitive exact match. Used
// only when no judge is configured.
type ExactScorer struct {
	prompts *Prompts
}

// NewExactScorer builds the deterministic fallback scorer.
func NewExactScorer(prompts *Prompts) *ExactScorer {
	if prompts == nil {
		prompts = &Prompts{}
	}
	return &ExactScorer{prompts: prompts}
}

// Score compares the trimmed, lower-cased answer against the expected one.
func (s *ExactScorer) Score(_ context.Context, question core.Quiz, userAnswer string) (string, bool) {
	if strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.Answer)) {
		return pick(s.prompts.CorrectFeedback, defaultCorrectFeedback), true
	}
	feedback := pick(s.prompts.IncorrectFeedback, defaultIncorrectFeed)
	return fill(feedback, "{correct_answer}", question.Answer), false
}
