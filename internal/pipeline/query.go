package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/efebarandurmaz/ragpipe/internal/llm"
	"github.com/efebarandurmaz/ragpipe/internal/observability"
	"github.com/efebarandurmaz/ragpipe/internal/vector"
)

// DefaultTopK is the number of neighbors retrieved per question.
const DefaultTopK = 3

// Query answers questions: embed the question, retrieve the nearest stored
// chunks, and ask the generator to answer from that context alone.
type Query struct {
	embedder  *vector.Embedder
	repo      vector.Repository
	generator llm.Provider
	topK      int
	log       zerolog.Logger
}

// NewQuery creates a query pipeline. A topK of zero or less falls back to
// DefaultTopK.
func NewQuery(embedder *vector.Embedder, repo vector.Repository, generator llm.Provider, topK int, log zerolog.Logger) *Query {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Query{
		embedder:  embedder,
		repo:      repo,
		generator: generator,
		topK:      topK,
		log:       log,
	}
}

// Answer retrieves context for question and returns the generator's reply.
// An empty retrieval result is passed through: the model is still called,
// with no context to work from.
func (q *Query) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &ValidationError{Field: "question", Reason: "must not be empty"}
	}

	start := time.Now()
	requestID := uuid.NewString()
	ctx, span := observability.StartQuerySpan(ctx)
	defer span.End()

	answer, retrieved, err := q.answer(ctx, question)
	duration := time.Since(start)
	observability.Metrics().RecordQuery(duration, retrieved, err)
	if err != nil {
		observability.RecordError(span, err)
		observability.Audit().LogQueryError(ctx, requestID, err)
		return "", err
	}
	observability.Audit().LogQueryComplete(ctx, requestID, retrieved, duration)
	return answer, nil
}

func (q *Query) answer(ctx context.Context, question string) (string, int, error) {
	queryVec, err := q.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", 0, &RetrievalError{Err: err}
	}

	results, err := q.repo.Search(ctx, queryVec, q.topK)
	if err != nil {
		return "", 0, &RetrievalError{Err: err}
	}
	q.log.Debug().Int("results", len(results)).Msg("context retrieved")

	prompt := BuildPrompt(question, results)

	llmStart := time.Now()
	llmCtx, llmSpan := observability.StartLLMSpan(ctx, q.generator.Name(), "")
	resp, err := q.generator.Complete(llmCtx, prompt, nil)
	llmDuration := time.Since(llmStart)
	if err != nil {
		observability.RecordError(llmSpan, err)
		llmSpan.End()
		observability.Metrics().RecordLLMRequest(llmDuration, 0, err)
		observability.Audit().LogLLMError(ctx, q.generator.Name(), "", err)
		return "", len(results), &GenerationError{Provider: q.generator.Name(), Err: err}
	}
	observability.RecordLLMMetrics(llmSpan, resp.InputTokens, resp.OutputTokens, llmDuration)
	llmSpan.End()
	observability.Metrics().RecordLLMRequest(llmDuration, resp.InputTokens+resp.OutputTokens, nil)
	observability.Audit().LogLLMResponse(ctx, q.generator.Name(), resp.Model, llmDuration, resp.InputTokens, resp.OutputTokens)

	return llm.StripThinkingTags(resp.Content), len(results), nil
}
