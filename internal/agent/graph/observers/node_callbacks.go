package observers

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

type nodeStartKey struct{}

// newNodeTracer logs each resolution node with its turn id and duration.
func newNodeTracer() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info.Component != compose.ComponentOfLambda {
				return ctx
			}
			return context.WithValue(ctx, nodeStartKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info.Component != compose.ComponentOfLambda {
				return ctx
			}
			ev := logx.Debug().Str("node", info.Name)
			if start, ok := ctx.Value(nodeStartKey{}).(time.Time); ok {
				ev = ev.Dur("elapsed", time.Since(start))
			}
			if r, ok := output.(*model.Resolution); ok && r != nil {
				ev = ev.Str("turn_id", r.TurnID).Str("source", string(r.Source))
			}
			ev.Msg("Node done")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("node", info.Name).Str("component", string(info.Component)).Msg("Node failed")
			return ctx
		}).
		Build()
}
