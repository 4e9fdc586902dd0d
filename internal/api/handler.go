// Package api exposes the ingestion and query pipelines over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"github.com/efebarandurmaz/ragpipe/internal/api/middleware"
	"github.com/efebarandurmaz/ragpipe/internal/pipeline"
)

// Ingester indexes a web page and reports how many documents were written.
type Ingester interface {
	Ingest(ctx context.Context, pageURL string) (int, error)
}

// Answerer answers a question from indexed content.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Handler serves the pipeline endpoints.
type Handler struct {
	ingester Ingester
	answerer Answerer
	version  string
	logger   *zerolog.Logger
}

// NewHandler creates an API handler.
func NewHandler(ingester Ingester, answerer Answerer, version string, logger *zerolog.Logger) *Handler {
	return &Handler{
		ingester: ingester,
		answerer: answerer,
		version:  version,
		logger:   logger,
	}
}

// POST /api/v1/index
// Body: IndexRequest
// Returns: IndexResponse
func (h *Handler) Index(req *restful.Request, resp *restful.Response) {
	var indexReq IndexRequest
	if err := req.ReadEntity(&indexReq); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().Str("url", indexReq.URL).Msg("Start ingestion")

	ctx := req.Request.Context()
	docs, err := h.ingester.Ingest(ctx, indexReq.URL)
	if err != nil {
		h.logger.Error().Err(err).Str("url", indexReq.URL).Msg("Ingestion failed")
		middleware.HandleError(resp, err, statusForError(err))
		return
	}

	h.logger.Info().Str("url", indexReq.URL).Int("documents", docs).Msg("Ingestion complete")
	resp.WriteHeaderAndEntity(http.StatusOK, IndexResponse{
		Status:    "indexed",
		URL:       indexReq.URL,
		Documents: docs,
	})
}

// POST /api/v1/ask
// Body: AskRequest
// Returns: AskResponse
func (h *Handler) Ask(req *restful.Request, resp *restful.Response) {
	var askReq AskRequest
	if err := req.ReadEntity(&askReq); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().Int("question_len", len(askReq.Question)).Msg("Start query")

	ctx := req.Request.Context()
	answer, err := h.answerer.Answer(ctx, askReq.Question)
	if err != nil {
		h.logger.Error().Err(err).Msg("Query failed")
		middleware.HandleError(resp, err, statusForError(err))
		return
	}

	h.logger.Info().Int("answer_len", len(answer)).Msg("Query complete")
	resp.WriteHeaderAndEntity(http.StatusOK, AskResponse{Answer: answer})
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// statusForError maps pipeline errors to HTTP status codes: bad input is the
// client's fault, upstream collaborator failures surface as bad gateway,
// anything else is a plain internal error.
func statusForError(err error) int {
	var verr *pipeline.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var eerr *pipeline.ExtractionError
	var serr *pipeline.StoreError
	var rerr *pipeline.RetrievalError
	var gerr *pipeline.GenerationError
	if errors.As(err, &eerr) || errors.As(err, &serr) || errors.As(err, &rerr) || errors.As(err, &gerr) {
		return http.StatusBadGateway
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
