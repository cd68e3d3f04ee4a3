// Package graph composes the free-text resolution pipeline: embed the query,
// re-rank within the conversant's topic, match the full knowledge base, and
// escalate to the generative fallback when nothing is confident enough.
package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/bytecode-faq-assistant/server/internal/agent/graph/nodes"
	"github.com/bytecode-faq-assistant/server/internal/agent/graph/observers"
	"github.com/bytecode-faq-assistant/server/internal/agent/knowledge"
	"github.com/bytecode-faq-assistant/server/internal/agent/matcher"
	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

// Runner resolves one free-text query to an answer.
type Runner interface {
	Resolve(ctx context.Context, in *model.Resolution) (*model.Resolution, error)
}

// Config holds everything needed to build the resolution graph.
type Config struct {
	Matcher    *matcher.Matcher
	Knowledge  *knowledge.Base
	Escalation nodes.Escalator
	Fallback   nodes.Generator
	Matching   model.MatchingConfig
}

// GraphBuilder handles the construction of the resolution graph
type GraphBuilder struct {
	config *Config
	graph  *compose.Graph[*model.Resolution, *model.Resolution]
}

type graphRunner struct {
	runnable compose.Runnable[*model.Resolution, *model.Resolution]
}

func (r *graphRunner) Resolve(ctx context.Context, in *model.Resolution) (*model.Resolution, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()...))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("resolution graph returned nil")
	}
	return out, nil
}

// BuildResolutionGraph validates cfg, builds the graph and returns a Runner.
func BuildResolutionGraph(ctx context.Context, cfg Config) (Runner, error) {
	runnable, err := BuildGraph(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Resolution graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled resolution graph
func BuildGraph(ctx context.Context, config *Config) (compose.Runnable[*model.Resolution, *model.Resolution], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Matcher == nil || config.Knowledge == nil {
		return nil, fmt.Errorf("matcher and knowledge base are required")
	}
	if config.Knowledge.Len() == 0 {
		return nil, fmt.Errorf("knowledge base is empty")
	}
	if config.Escalation == nil || config.Fallback == nil {
		return nil, fmt.Errorf("escalation logger and fallback are required")
	}
	if config.Matching.KnowledgeThreshold <= 0 {
		config.Matching.KnowledgeThreshold = matcher.KnowledgeThreshold
	}
	if config.Matching.TopicThreshold <= 0 {
		config.Matching.TopicThreshold = matcher.TopicThreshold
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[*model.Resolution, *model.Resolution](),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() error {
	cfg := b.config
	lambdas := []struct {
		key    string
		lambda *compose.Lambda
	}{
		{nodes.NodeEmbedQuery, nodes.NewEmbedQueryNode(cfg.Matcher)},
		{nodes.NodeTopicRerank, nodes.NewTopicRerankNode(cfg.Knowledge, cfg.Matching.TopicThreshold)},
		{nodes.NodeKnowledgeMatch, nodes.NewKnowledgeMatchNode(cfg.Knowledge, cfg.Matching.KnowledgeThreshold)},
		{nodes.NodeEscalate, nodes.NewEscalateNode(cfg.Escalation)},
		{nodes.NodeFallback, nodes.NewFallbackNode(cfg.Fallback)},
	}

	for _, l := range lambdas {
		if err := b.graph.AddLambdaNode(l.key, l.lambda, compose.WithNodeName(l.key)); err != nil {
			return fmt.Errorf("add node %s: %w", l.key, err)
		}
	}
	return nil
}

// addEdges creates the unconditional connections between nodes
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeEmbedQuery},
		{nodes.NodeEmbedQuery, nodes.NodeTopicRerank},
		{nodes.NodeEscalate, nodes.NodeFallback},
		{nodes.NodeFallback, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches short-circuits to END as soon as a node has answered
func (b *GraphBuilder) addBranches() error {
	topicBranch := compose.NewGraphBranch(
		nodes.NewAnsweredCondition(nodes.NodeKnowledgeMatch),
		map[string]bool{
			nodes.NodeKnowledgeMatch: true,
			compose.END:              true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeTopicRerank, topicBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding topic branch")
		return fmt.Errorf("error adding topic branch: %w", err)
	}

	knowledgeBranch := compose.NewGraphBranch(
		nodes.NewAnsweredCondition(nodes.NodeEscalate),
		map[string]bool{
			nodes.NodeEscalate: true,
			compose.END:        true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeKnowledgeMatch, knowledgeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding knowledge branch")
		return fmt.Errorf("error adding knowledge branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.Resolution, *model.Resolution], error) {
	// The longest path visits every node once.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10), compose.WithGraphName("resolution"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
