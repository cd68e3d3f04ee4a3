package nodes

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/bytecode-faq-assistant/server/internal/agent/fallback"
	"github.com/bytecode-faq-assistant/server/internal/agent/knowledge"
	"github.com/bytecode-faq-assistant/server/internal/agent/matcher"
	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

const (
	NodeEmbedQuery     = "EmbedQuery"
	NodeTopicRerank    = "TopicRerank"
	NodeKnowledgeMatch = "KnowledgeMatch"
	NodeEscalate       = "Escalate"
	NodeFallback       = "Fallback"
)

// Escalator records a question nobody could answer. It must not block.
type Escalator interface {
	Log(text string) bool
}

// Generator produces a fallback answer for a single query.
type Generator interface {
	Generate(ctx context.Context, query string) fallback.Result
}

// NewEmbedQueryNode normalizes and embeds the query once per turn. An
// embedding failure leaves Vector nil, which every later match treats as
// "no confident match".
func NewEmbedQueryNode(m *matcher.Matcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *model.Resolution) (*model.Resolution, error) {
		normalized, vec, err := m.Embed(ctx, r.Query)
		r.Normalized = normalized
		if err != nil {
			logx.Warn().Err(err).
				Str("turn_id", r.TurnID).
				Str("node", NodeEmbedQuery).
				Msg("Query embedding failed; treating as unmatched")
			return r, nil
		}
		r.Vector = vec
		return r, nil
	})
}

// NewTopicRerankNode answers from the subset tagged with the conversant's
// last topic when one is set and the best score clears threshold.
func NewTopicRerankNode(kb *knowledge.Base, threshold float64) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *model.Resolution) (*model.Resolution, error) {
		if r.Topic == model.TopicNone || r.Vector == nil {
			return r, nil
		}

		candidates := kb.ByTopic(r.Topic)
		res := matcher.Rank(r.Vector, candidates, threshold)
		logx.Debug().
			Str("turn_id", r.TurnID).
			Str("node", NodeTopicRerank).
			Str("topic", string(r.Topic)).
			Float64("score", res.Score).
			Bool("matched", res.Matched).
			Msg("Topic re-rank")
		if res.Matched {
			answer(r, model.SourceTopic, res.Answer, res.Score, candidates[res.Index].Index)
		}
		return r, nil
	})
}

// NewKnowledgeMatchNode matches the query against the whole knowledge base.
func NewKnowledgeMatchNode(kb *knowledge.Base, threshold float64) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *model.Resolution) (*model.Resolution, error) {
		res := matcher.Rank(r.Vector, kb.Entries(), threshold)
		logx.Debug().
			Str("turn_id", r.TurnID).
			Str("node", NodeKnowledgeMatch).
			Float64("score", res.Score).
			Int("index", res.Index).
			Bool("matched", res.Matched).
			Msg("Knowledge match")
		if res.Matched {
			answer(r, model.SourceKnowledge, res.Answer, res.Score, res.Index)
			return r, nil
		}
		r.Score, r.Index = res.Score, res.Index
		return r, nil
	})
}

// NewEscalateNode records the raw query before the fallback runs. Every
// low-confidence query is logged, repeats included.
func NewEscalateNode(e Escalator) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *model.Resolution) (*model.Resolution, error) {
		if !e.Log(r.Query) {
			logx.Warn().Str("turn_id", r.TurnID).Str("node", NodeEscalate).Msg("Unanswered question not recorded")
		}
		return r, nil
	})
}

// NewFallbackNode asks the generative model. Failures become the apology
// text so the turn always has an answer.
func NewFallbackNode(g Generator) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *model.Resolution) (*model.Resolution, error) {
		res := g.Generate(ctx, r.Query)
		if !res.OK() {
			logx.Error().Err(res.Err).
				Str("turn_id", r.TurnID).
				Str("node", NodeFallback).
				Msg("Fallback generation failed")
			r.FallbackErr = res.Err
			r.Answer, r.Source = fallback.Apology, model.SourceFallback
			return r, nil
		}
		r.Answer, r.Source = res.Text, model.SourceFallback
		return r, nil
	})
}

// NewAnsweredCondition ends the graph once an answer exists, otherwise
// routes to next.
func NewAnsweredCondition(next string) func(context.Context, *model.Resolution) (string, error) {
	return func(ctx context.Context, r *model.Resolution) (string, error) {
		if r.Answered() {
			return compose.END, nil
		}
		return next, nil
	}
}

func answer(r *model.Resolution, src model.Source, text string, score float64, index int) {
	r.Answer = text
	r.Source = src
	r.Score = score
	r.Index = index
}
