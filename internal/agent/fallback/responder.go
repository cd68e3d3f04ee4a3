// Package fallback answers questions the knowledge base could not, using a
// generative model restricted to the business' own topics.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	errx "github.com/bytecode-faq-assistant/server/internal/core/error"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

// Apology is sent whenever generation fails.
const Apology = "Sorry, I'm having trouble answering right now."

var ErrEmptyResponse = errors.New("fallback model returned an empty response")

// Result is either generated Text or the Err that prevented it.
type Result struct {
	Text string
	Err  error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Responder is stateless: every call sees only the one query it is given.
type Responder struct {
	chat      einomodel.BaseChatModel
	tpl       prompt.ChatTemplate
	modelName string
	business  string
	timeout   time.Duration
}

func New(chat einomodel.BaseChatModel, cfg model.FallbackModelConfig, business model.BusinessConfig) *Responder {
	return &Responder{
		chat:      chat,
		tpl:       newTemplate(),
		modelName: cfg.Model,
		business:  business.Name,
		timeout:   cfg.Timeout,
	}
}

// Generate calls the model once within the configured timeout. It never
// panics on a malformed response; every failure is reported in Result.Err.
func (r *Responder) Generate(ctx context.Context, query string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Err: errx.WrapGeneration(fmt.Errorf("fallback model panicked: %v", p))}
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	msgs, err := renderMessages(ctx, r.tpl, r.business, query)
	if err != nil {
		return Result{Err: err}
	}

	out, err := r.chat.Generate(ctx, msgs)
	if err != nil {
		return Result{Err: errx.WrapGeneration(fmt.Errorf("generate: %w", err))}
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return Result{Err: errx.WrapGeneration(ErrEmptyResponse)}
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(r.modelName))
		logx.Debug().
			Str("model", r.modelName).
			Str("prompt_version", PromptVersion).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}

	return Result{Text: strings.TrimSpace(out.Content)}
}

// Respond is Generate with failures replaced by the apology text.
func (r *Responder) Respond(ctx context.Context, query string) string {
	res := r.Generate(ctx, query)
	if !res.OK() {
		logx.Error().Err(res.Err).Str("model", r.modelName).Msg("Fallback generation failed")
		return Apology
	}
	return res.Text
}
