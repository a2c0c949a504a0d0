package reply

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PromptConfig is the persona template for ordinary chat replies, loaded
// from the talk prompts JSON file (key "main_chat_prompt").
type PromptConfig struct {
	SystemMessageBase      []string  `json:"system_message_base"`
	CoreConversationRules  []string  `json:"core_conversation_rules"`
	GuidelinesAndReactions []string  `json:"guidelines_and_reactions"`
	StrictProhibitions     []string  `json:"strict_prohibitions"`
	Examples               []Example `json:"examples"`
}

// Example is one few-shot exchange in the persona template.
type Example struct {
	Situation  string `json:"situation"`
	UserInput  string `json:"user_input"`
	AIResponse string `json:"ai_response"`
}

// defaultPersona keeps the conversation going when the prompts file is
// missing or unreadable.
var defaultPersona = PromptConfig{
	SystemMessageBase: []string{
		"당신은 어르신의 다정한 말벗입니다.",
		"항상 존댓말을 사용하고, 짧고 따뜻하게 응답하세요.",
	},
}

// LoadPromptConfig reads the persona template. On any failure it returns
// the built-in default persona along with the error, so callers can log
// and keep going.
func LoadPromptConfig(path string) (*PromptConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := defaultPersona
		return &cfg, fmt.Errorf("read talk prompts: %w", err)
	}

	var wrapper struct {
		MainChatPrompt *PromptConfig `json:"main_chat_prompt"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil || wrapper.MainChatPrompt == nil {
		cfg := defaultPersona
		if err == nil {
			err = fmt.Errorf("talk prompts: missing main_chat_prompt")
		}
		return &cfg, fmt.Errorf("parse talk prompts: %w", err)
	}
	return wrapper.MainChatPrompt, nil
}

// buildPrompt assembles the single free-text prompt for one chat turn:
// persona sections, few-shot examples, retrieved memories, and the
// current message.
func (c *PromptConfig) buildPrompt(memories, userMessage string) string {
	var b strings.Builder

	b.WriteString("# 페르소나\n")
	b.WriteString(strings.Join(c.SystemMessageBase, "\n"))
	if len(c.CoreConversationRules) > 0 {
		b.WriteString("\n# 핵심 대화 규칙\n")
		b.WriteString(strings.Join(c.CoreConversationRules, "\n"))
	}
	if len(c.GuidelinesAndReactions) > 0 {
		b.WriteString("\n# 응답 가이드라인\n")
		b.WriteString(strings.Join(c.GuidelinesAndReactions, "\n"))
	}
	if len(c.StrictProhibitions) > 0 {
		b.WriteString("\n# 절대 금지사항\n")
		b.WriteString(strings.Join(c.StrictProhibitions, "\n"))
	}
	if len(c.Examples) > 0 {
		b.WriteString("\n# 성공적인 대화 예시\n")
		for i, ex := range c.Examples {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString("상황: " + ex.Situation + "\n")
			b.WriteString("사용자 입력: " + ex.UserInput + "\n")
			b.WriteString("AI 응답: " + ex.AIResponse)
		}
	}

	b.WriteString("\n---\n이제 실제 대화를 시작합니다.\n")
	b.WriteString("--- 과거 대화 핵심 기억 ---\n")
	if memories == "" {
		b.WriteString("이전 대화 기록이 없습니다.")
	} else {
		b.WriteString(memories)
	}
	b.WriteString("\n--------------------\n")
	b.WriteString("현재 사용자 메시지: \"" + userMessage + "\"\nAI 답변:")

	return b.String()
}
