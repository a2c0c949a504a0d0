package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripot-labs/companion-engine/core"
)

const (
	// summaryThreshold is the transcript length (in lines) at or above
	// which consolidation summarizes instead of storing verbatim.
	summaryThreshold = 4

	// DefaultTopK is the candidate count fetched from the index before
	// re-ranking.
	DefaultTopK = 5

	// contextSize is how many ranked memories join into the reply context.
	contextSize = 3

	// recencyWindow is the age span over which the recency score decays
	// from 1 to 0.
	recencyWindow = 30 * 24 * time.Hour

	similarityWeight = 0.7
	recencyWeight    = 0.3
)

// summarySystemPrompt extracts notable experiences, emotions, recurring
// themes and proper nouns from a transcript, forbidding dialogue-style
// phrasing.
const summarySystemPrompt = "당신은 사용자 대화 기록을 분석하여 핵심적인 기억을 추출하고 요약하는 AI입니다.\n" +
	"다음 대화 기록에서 사용자의 중요한 경험, 감정, 반복되는 주제, 특이사항 등을 간결하게 요약해주세요.\n" +
	"요약된 내용은 다른 AI가 사용자의 과거를 회상하고 대화에 활용하는 데 사용됩니다.\n" +
	"존댓말을 사용하고, 대화 형식으로 답변하지 마세요. (예: \"사용자는 오늘 병원에 다녀온 경험에 대해 이야기했습니다.\")\n" +
	"규칙: 지명, 인명 등 모든 고유명사는 반드시 포함시켜야 합니다."

// Manager owns the consolidation and retrieval paths over an Index and an
// Embedder. Safe for concurrent use by many sessions; it holds no
// per-session state.
type Manager struct {
	index      Index
	embedder   Embedder
	summarizer core.Completer
	cache      *ristretto.Cache
	logger     *zap.Logger
}

// NewManager builds a manager. The summarizer is the chat-completion
// collaborator used for long-transcript consolidation.
func NewManager(index Index, embedder Embedder, summarizer core.Completer, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Embedding cache: repeated queries, greetings and short answers
	// re-embed identical text against a paid API.
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("build embedding cache: %w", err)
	}

	return &Manager{
		index:      index,
		embedder:   embedder,
		summarizer: summarizer,
		cache:      cache,
		logger:     logger,
	}, nil
}

// Consolidate stores the session transcript as one memory record: verbatim
// for short sessions, summarized for longer ones. An empty transcript is a
// no-op.
func (m *Manager) Consolidate(ctx context.Context, userID string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	text := strings.Join(lines, "\n")
	kind := KindUtterance

	if len(lines) >= summaryThreshold {
		summary, err := m.summarizer.Complete(ctx, core.CompletionRequest{
			Messages: []core.Message{
				{Role: core.RoleSystem, Content: summarySystemPrompt},
				{Role: core.RoleUser, Content: "--- 대화 내용 ---\n" + text + "\n-----------------\n\n핵심 기억 요약:"},
			},
			MaxTokens:   200,
			Temperature: 0.3,
		})
		if err != nil {
			return fmt.Errorf("summarize transcript: %w", err)
		}
		text = summary
		kind = KindSummary
	}

	embedding, err := m.embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed memory: %w", err)
	}

	rec := Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Kind:      kind,
		Timestamp: time.Now(),
		Embedding: embedding,
	}
	if err := m.index.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("store memory: %w", err)
	}

	m.logger.Info("memory consolidated",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.Int("transcript_lines", len(lines)))
	return nil
}

// Search retrieves up to topK candidates for the query, re-ranks them by
// similarity blended with recency, and returns the top-ranked texts joined
// by newlines. It fails open: any backend failure yields an empty context.
func (m *Manager) Search(ctx context.Context, userID, query string, topK int) string {
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedding, err := m.embed(ctx, query)
	if err != nil {
		m.logger.Warn("memory search: embedding failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}

	candidates, err := m.index.Query(ctx, userID, embedding, topK)
	if err != nil {
		m.logger.Warn("memory search: index query failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	if len(candidates) == 0 {
		return ""
	}

	now := time.Now()
	sort.SliceStable(candidates, func(i, j int) bool {
		return finalScore(candidates[i], now) > finalScore(candidates[j], now)
	})

	n := contextSize
	if n > len(candidates) {
		n = len(candidates)
	}
	texts := make([]string, 0, n)
	for _, c := range candidates[:n] {
		texts = append(texts, c.Text)
	}

	m.logger.Debug("memory search", zap.String("user_id", userID), zap.Int("hits", len(texts)))
	return strings.Join(texts, "\n")
}

// finalScore blends vector similarity with an age-based decay over the
// recency window.
func finalScore(res Result, now time.Time) float64 {
	recency := float64(res.Timestamp.Sub(now.Add(-recencyWindow))) / float64(recencyWindow)
	if recency < 0 {
		recency = 0
	}
	if recency > 1 {
		recency = 1
	}
	return res.Similarity*similarityWeight + recency*recencyWeight
}

// embed converts text to a vector, serving repeats from the cache.
func (m *Manager) embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := m.cache.Get(text); ok {
		if vec, ok := cached.([]float32); ok {
			return vec, nil
		}
	}

	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	m.cache.Set(text, vec, int64(4*len(vec)))
	return vec, nil
}
