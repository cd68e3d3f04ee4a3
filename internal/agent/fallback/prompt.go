package fallback

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// PromptVersion is logged with every generation so answers can be traced to
// the instruction that produced them.
const PromptVersion = "fallback-v1"

//go:embed template/fallback_prompt.txt
var systemPrompt string

func newTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{{.Query}}"),
	)
}

// Refusal is the fixed sentence for off-topic questions.
func Refusal(business string) string {
	return fmt.Sprintf("I'm here to help with %s-related queries 😊.", business)
}

// renderMessages formats the system instruction and the single user query.
// The query is passed as a template variable so its content is never parsed.
func renderMessages(ctx context.Context, tpl prompt.ChatTemplate, business, query string) ([]*schema.Message, error) {
	msgs, err := tpl.Format(ctx, map[string]any{
		"BusinessName": business,
		"Refusal":      Refusal(business),
		"Query":        query,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback prompt render: %w", err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return nil, fmt.Errorf("fallback prompt render: unexpected result")
	}
	return msgs, nil
}
