package draft

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIDrafter phrases emails with a chat model. Any API failure falls
// back to the template drafter so drafting never blocks the workflow.
type OpenAIDrafter struct {
	client      *openai.Client
	model       string
	temperature float32
	fallback    TemplateDrafter
	log         *zap.Logger
}

// NewOpenAIDrafter creates a drafter backed by the OpenAI chat API.
func NewOpenAIDrafter(apiKey, model string, temperature float32, log *zap.Logger) *OpenAIDrafter {
	if model == "" {
		model = openai.GPT4oMini
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAIDrafter{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		log:         log,
	}
}

func (d *OpenAIDrafter) RequestEmail(ctx context.Context, in Input) (Email, error) {
	prompt := fmt.Sprintf(
		"Write a short, professional leave request email from %s to their manager %s. "+
			"Leave type: %s. Dates: %s to %s (%d days). "+
			"Remaining balance after approval would still be within the %d-day annual allowance. "+
			"Reason (optional): %s. "+
			"First line must be 'Subject: ...'; then a blank line; then the body.",
		in.Employee.Name, managerOrDefault(in),
		in.LeaveType, in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"), in.Days,
		in.Balance.QuotaDays, in.Reason)

	return d.complete(ctx, prompt, in, d.fallback.RequestEmail)
}

func (d *OpenAIDrafter) ApprovalNotice(ctx context.Context, in Input) (Email, error) {
	prompt := fmt.Sprintf(
		"Write a short manager notification confirming that %s's %s leave from %s to %s (%d days) "+
			"has been approved and recorded, with %s days of balance remaining. "+
			"First line must be 'Subject: ...'; then a blank line; then the body.",
		in.Employee.Name, in.LeaveType,
		in.Start.Format("2006-01-02"), in.End.Format("2006-01-02"), in.Days,
		in.Balance.RemainingDays().String())

	return d.complete(ctx, prompt, in, d.fallback.ApprovalNotice)
}

func (d *OpenAIDrafter) complete(ctx context.Context, prompt string, in Input, fallback func(context.Context, Input) (Email, error)) (Email, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.model,
		Temperature: d.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are an HR assistant drafting workplace emails. " +
					"Be concise and professional. Never invent policy details.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		d.log.Warn("email draft API call failed, using template", zap.Error(err))
		return fallback(ctx, in)
	}
	if len(resp.Choices) == 0 {
		d.log.Warn("email draft API returned no choices, using template")
		return fallback(ctx, in)
	}

	email, ok := parseEmail(resp.Choices[0].Message.Content)
	if !ok {
		d.log.Warn("email draft response missing subject line, using template")
		return fallback(ctx, in)
	}
	return email, nil
}

// parseEmail splits a "Subject: ..." first line from the body.
func parseEmail(content string) (Email, bool) {
	content = strings.TrimSpace(content)
	lines := strings.SplitN(content, "\n", 2)
	if !strings.HasPrefix(lines[0], "Subject:") {
		return Email{}, false
	}
	subject := strings.TrimSpace(strings.TrimPrefix(lines[0], "Subject:"))
	body := ""
	if len(lines) == 2 {
		body = strings.TrimSpace(lines[1])
	}
	if subject == "" || body == "" {
		return Email{}, false
	}
	return Email{Subject: subject, Body: body}, true
}

func managerOrDefault(in Input) string {
	if in.ManagerName != "" {
		return in.ManagerName
	}
	return "their manager"
}
