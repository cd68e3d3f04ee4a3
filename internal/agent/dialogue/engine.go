// Package dialogue is the per-conversant decision engine. It advances the
// guided menu and lead-capture flow and hands free text to the resolution
// graph.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bytecode-faq-assistant/server/internal/agent/fallback"
	"github.com/bytecode-faq-assistant/server/internal/agent/graph"
	"github.com/bytecode-faq-assistant/server/internal/agent/knowledge"
	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

// LeadRecorder persists a completed lead.
type LeadRecorder interface {
	Record(ctx context.Context, lead model.Lead) error
}

type Config struct {
	Store     model.StateRepository
	Resolver  graph.Runner
	Leads     LeadRecorder
	Knowledge *knowledge.Base
	Business  model.BusinessConfig
}

type Engine struct {
	store    model.StateRepository
	resolver graph.Runner
	leads    LeadRecorder
	services string
	messages Messages
	locks    *keyedMutex
}

func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil || cfg.Resolver == nil || cfg.Leads == nil {
		return nil, fmt.Errorf("dialogue: store, resolver and lead recorder are required")
	}
	if cfg.Knowledge == nil || cfg.Knowledge.Len() == 0 {
		return nil, fmt.Errorf("dialogue: knowledge base is empty")
	}
	return &Engine{
		store:    cfg.Store,
		resolver: cfg.Resolver,
		leads:    cfg.Leads,
		services: cfg.Knowledge.First().Answer,
		messages: NewMessages(cfg.Business),
		locks:    newKeyedMutex(),
	}, nil
}

// decision is what one inbound message does. It is computed under the
// sender's lock; side effects other than the state write run after release.
type decision struct {
	reply string
	next  *model.ConversationState
	lead  *model.Lead

	resolve bool
	topic   model.Topic
}

// Handle processes one inbound message and always returns a reply.
func (e *Engine) Handle(ctx context.Context, in model.Inbound) model.Reply {
	turnID := uuid.NewString()
	body := strings.TrimSpace(in.Body)
	log := logx.Debug().Str("turn_id", turnID).Str("sender_id", in.SenderID)

	unlock := e.locks.Lock(in.SenderID)
	state, seen, err := e.store.Get(ctx, in.SenderID)
	if err != nil {
		logx.Error().Err(err).Str("turn_id", turnID).Str("sender_id", in.SenderID).
			Msg("Failed to load conversation state; starting over")
		state, seen = model.ConversationState{}, false
	}

	d := e.decide(state, seen, body)
	switch {
	case d.next != nil:
		if err := e.store.Put(ctx, in.SenderID, *d.next); err != nil {
			logx.Error().Err(err).Str("turn_id", turnID).Str("sender_id", in.SenderID).
				Msg("Failed to save conversation state")
		}
	case seen:
		// Unchanged state still counts as activity.
		if err := e.store.Touch(ctx, in.SenderID); err != nil {
			logx.Error().Err(err).Str("turn_id", turnID).Str("sender_id", in.SenderID).
				Msg("Failed to refresh conversation state")
		}
	}
	unlock()

	if d.next != nil {
		log = log.Stringer("from", state.Step()).Stringer("to", d.next.Step())
	}
	log.Bool("resolve", d.resolve).Msg("Turn decided")

	if d.lead != nil {
		if err := e.leads.Record(ctx, *d.lead); err != nil {
			logx.Error().Err(err).Str("turn_id", turnID).Str("sender_id", in.SenderID).Msg("Failed to record lead")
		}
	}

	if d.resolve {
		return model.Reply{Text: e.resolve(ctx, turnID, in.SenderID, body, d.topic)}
	}
	return model.Reply{Text: d.reply}
}

func (e *Engine) resolve(ctx context.Context, turnID, senderID, query string, topic model.Topic) string {
	out, err := e.resolver.Resolve(ctx, &model.Resolution{
		TurnID:   turnID,
		SenderID: senderID,
		Query:    query,
		Topic:    topic,
		Index:    -1,
	})
	if err != nil || out == nil || out.Answer == "" {
		logx.Error().Err(err).Str("turn_id", turnID).Str("sender_id", senderID).Msg("Resolution failed")
		return fallback.Apology
	}

	logx.Info().
		Str("turn_id", turnID).
		Str("sender_id", senderID).
		Str("source", string(out.Source)).
		Float64("score", out.Score).
		Int("index", out.Index).
		Msg("Question resolved")
	return out.Answer
}

// decide applies the state machine. body is trimmed but keeps its case;
// commands compare against its lowercase form.
func (e *Engine) decide(state model.ConversationState, seen bool, body string) decision {
	msg := strings.ToLower(body)

	if msg == "restart" || msg == "menu" || !seen {
		fresh := model.NewConversationState()
		return decision{reply: e.messages.Menu, next: &fresh}
	}

	switch st := state.Stage.(type) {
	case model.CollectingName:
		if body == "" {
			return decision{reply: e.messages.AskName}
		}
		next := withStage(state, model.CollectingEmail{Name: body})
		return decision{reply: e.messages.AskEmail(body), next: &next}

	case model.CollectingEmail:
		if body == "" {
			return decision{reply: e.messages.AskEmail(st.Name)}
		}
		next := withStage(state, model.CollectingProject{Name: st.Name, Email: body})
		return decision{reply: e.messages.AskProject, next: &next}

	case model.CollectingProject:
		if body == "" {
			return decision{reply: e.messages.AskProject}
		}
		lead := model.Lead{Name: st.Name, Email: st.Email, ProjectDetails: body}
		next := withStage(state, model.OfferingCall{Lead: lead})
		return decision{reply: e.messages.OfferCall(st.Name), next: &next, lead: &lead}

	case model.OfferingCall:
		next := withStage(state, model.Menu{})
		if strings.Contains(msg, "yes") {
			return decision{reply: e.messages.BookCall, next: &next}
		}
		return decision{reply: e.messages.Declined, next: &next}
	}

	return e.decideMenu(state, msg)
}

// decideMenu handles the MENU step, which is also where a zero Stage lands.
// Option 4 has no shortcut and is resolved like any other free text.
func (e *Engine) decideMenu(state model.ConversationState, msg string) decision {
	switch msg {
	case "1", "services":
		next := withStage(state, model.Menu{})
		next.LastTopic = model.TopicServices
		return decision{reply: e.services, next: &next}
	case "2", "quote":
		next := withStage(state, model.CollectingName{})
		return decision{reply: e.messages.AskName, next: &next}
	case "3", "meeting":
		return decision{reply: e.messages.Meeting}
	case "5", "support":
		return decision{reply: e.messages.Support}
	}
	return decision{resolve: true, topic: state.LastTopic}
}

func withStage(state model.ConversationState, stage model.Stage) model.ConversationState {
	return model.ConversationState{Stage: stage, LastTopic: state.LastTopic}
}
