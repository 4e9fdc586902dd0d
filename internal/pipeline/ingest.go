// Package pipeline orchestrates the two RAG workflows: ingesting a web page
// into the vector store, and answering a question from retrieved context.
// Pipelines never retry and never swallow errors; each failure propagates to
// the caller typed by the step that produced it.
package pipeline

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/efebarandurmaz/ragpipe/internal/chunk"
	"github.com/efebarandurmaz/ragpipe/internal/extract"
	"github.com/efebarandurmaz/ragpipe/internal/observability"
	"github.com/efebarandurmaz/ragpipe/internal/vector"
)

// Ingestion indexes web pages: extract readable text, chunk it, tag each
// chunk with its source URL, embed and write to the vector store.
type Ingestion struct {
	extractor extract.Extractor
	embedder  *vector.Embedder
	chunkCfg  chunk.Config
	log       zerolog.Logger
}

// NewIngestion creates an ingestion pipeline. An invalid chunk config is
// reported on the first Ingest call, not here.
func NewIngestion(extractor extract.Extractor, embedder *vector.Embedder, cfg chunk.Config, log zerolog.Logger) *Ingestion {
	return &Ingestion{
		extractor: extractor,
		embedder:  embedder,
		chunkCfg:  cfg,
		log:       log,
	}
}

// Ingest fetches pageURL, splits its readable text into chunks, and writes
// the embedded chunks to the vector store. It returns the number of
// documents written. A page with no readable content succeeds having
// written nothing.
func (p *Ingestion) Ingest(ctx context.Context, pageURL string) (int, error) {
	if err := validateURL(pageURL); err != nil {
		return 0, err
	}

	start := time.Now()
	requestID := uuid.NewString()
	ctx, span := observability.StartIngestSpan(ctx, pageURL)
	defer span.End()
	observability.Audit().LogIngestStart(ctx, requestID, pageURL)

	docs, err := p.ingest(ctx, pageURL)
	duration := time.Since(start)
	observability.Metrics().RecordIngest(duration, docs, err)
	if err != nil {
		observability.RecordError(span, err)
		observability.Audit().LogIngestError(ctx, requestID, pageURL, err)
		return 0, err
	}
	observability.RecordIngestResult(span, docs, duration)
	observability.Audit().LogIngestComplete(ctx, requestID, pageURL, docs, duration)
	return docs, nil
}

func (p *Ingestion) ingest(ctx context.Context, pageURL string) (int, error) {
	text, err := p.extractor.Extract(ctx, pageURL)
	if err != nil {
		return 0, &ExtractionError{URL: pageURL, Err: err}
	}

	chunks, err := chunk.Split(text, p.chunkCfg)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		p.log.Info().Str("url", pageURL).Msg("no readable content, nothing indexed")
		return 0, nil
	}

	docs := Tag(chunks, map[string]string{"url": pageURL})
	if err := p.embedder.Index(ctx, docs); err != nil {
		return 0, &StoreError{Err: err}
	}

	p.log.Info().Str("url", pageURL).Int("documents", len(docs)).Msg("page indexed")
	return len(docs), nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Reason: "must be an absolute http(s) URL"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Reason: "missing host"}
	}
	return nil
}
