// Package observability provides audit logging for compliance tracking.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// AuditEventType categorizes audit events.
type AuditEventType string

const (
	AuditEventIngestStart    AuditEventType = "ingest.start"
	AuditEventIngestComplete AuditEventType = "ingest.complete"
	AuditEventIngestError    AuditEventType = "ingest.error"
	AuditEventQueryStart     AuditEventType = "query.start"
	AuditEventQueryComplete  AuditEventType = "query.complete"
	AuditEventQueryError     AuditEventType = "query.error"
	AuditEventLLMRequest     AuditEventType = "llm.request"
	AuditEventLLMResponse    AuditEventType = "llm.response"
	AuditEventLLMError       AuditEventType = "llm.error"
	AuditEventStoreWrite     AuditEventType = "store.write"
	AuditEventStoreSearch    AuditEventType = "store.search"
)

// AuditEvent represents a single audit log entry.
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	EventType   AuditEventType         `json:"event_type"`
	SessionID   string                 `json:"session_id"`
	RequestID   string                 `json:"request_id,omitempty"`
	UserID      string                 `json:"user_id,omitempty"`
	Success     bool                   `json:"success"`
	Duration    time.Duration          `json:"duration_ms,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
	ErrorDetail string                 `json:"error_detail,omitempty"`
}

// AuditLogger handles audit event logging.
type AuditLogger struct {
	mu        sync.Mutex
	writer    io.Writer
	sessionID string
	userID    string
	enabled   bool
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	Enabled    bool
	OutputPath string // File path or "stdout"/"stderr"
	SessionID  string
	UserID     string
}

// DefaultAuditConfig returns default audit configuration.
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		Enabled:    true,
		OutputPath: "stdout",
	}
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(config *AuditConfig) (*AuditLogger, error) {
	if config == nil {
		config = DefaultAuditConfig()
	}

	var writer io.Writer
	switch config.OutputPath {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		writer = f
	}

	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}

	return &AuditLogger{
		writer:    writer,
		sessionID: sessionID,
		userID:    config.UserID,
		enabled:   config.Enabled,
	}, nil
}

// Log writes an audit event.
func (l *AuditLogger) Log(event *AuditEvent) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Fill in defaults
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}
	if event.UserID == "" {
		event.UserID = l.userID
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	_, err = fmt.Fprintf(l.writer, "%s\n", data)
	return err
}

// LogIngestStart logs the beginning of a page ingestion.
func (l *AuditLogger) LogIngestStart(ctx context.Context, requestID, pageURL string) {
	l.Log(&AuditEvent{
		EventType: AuditEventIngestStart,
		RequestID: requestID,
		Success:   true,
		Message:   fmt.Sprintf("Ingestion started: %s", pageURL),
		Details: map[string]interface{}{
			"url": pageURL,
		},
	})
}

// LogIngestComplete logs a finished page ingestion.
func (l *AuditLogger) LogIngestComplete(ctx context.Context, requestID, pageURL string, chunks int, duration time.Duration) {
	l.Log(&AuditEvent{
		EventType: AuditEventIngestComplete,
		RequestID: requestID,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("Ingestion completed: %s", pageURL),
		Details: map[string]interface{}{
			"url":         pageURL,
			"chunk_count": chunks,
		},
	})
}

// LogIngestError logs a failed page ingestion.
func (l *AuditLogger) LogIngestError(ctx context.Context, requestID, pageURL string, err error) {
	l.Log(&AuditEvent{
		EventType:   AuditEventIngestError,
		RequestID:   requestID,
		Success:     false,
		Message:     fmt.Sprintf("Ingestion failed: %s", pageURL),
		ErrorDetail: err.Error(),
	})
}

// LogQueryComplete logs a finished question answering run.
func (l *AuditLogger) LogQueryComplete(ctx context.Context, requestID string, retrieved int, duration time.Duration) {
	l.Log(&AuditEvent{
		EventType: AuditEventQueryComplete,
		RequestID: requestID,
		Success:   true,
		Duration:  duration,
		Message:   "Query completed",
		Details: map[string]interface{}{
			"retrieved_docs": retrieved,
		},
	})
}

// LogQueryError logs a failed question answering run.
func (l *AuditLogger) LogQueryError(ctx context.Context, requestID string, err error) {
	l.Log(&AuditEvent{
		EventType:   AuditEventQueryError,
		RequestID:   requestID,
		Success:     false,
		Message:     "Query failed",
		ErrorDetail: err.Error(),
	})
}

// LogLLMResponse logs an LLM response event.
func (l *AuditLogger) LogLLMResponse(ctx context.Context, provider, model string, duration time.Duration, inputTokens, outputTokens int) {
	l.Log(&AuditEvent{
		EventType: AuditEventLLMResponse,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("LLM response from %s/%s", provider, model),
		Details: map[string]interface{}{
			"provider":      provider,
			"model":         model,
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"total_tokens":  inputTokens + outputTokens,
		},
	})
}

// LogLLMError logs an LLM error event.
func (l *AuditLogger) LogLLMError(ctx context.Context, provider, model string, err error) {
	l.Log(&AuditEvent{
		EventType:   AuditEventLLMError,
		Success:     false,
		Message:     fmt.Sprintf("LLM error from %s/%s", provider, model),
		ErrorDetail: err.Error(),
		Details: map[string]interface{}{
			"provider": provider,
			"model":    model,
		},
	})
}

// LogStoreWrite logs a vector store write event.
func (l *AuditLogger) LogStoreWrite(ctx context.Context, collection string, docCount int, duration time.Duration) {
	l.Log(&AuditEvent{
		EventType: AuditEventStoreWrite,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("Wrote %d documents to %s", docCount, collection),
		Details: map[string]interface{}{
			"collection": collection,
			"doc_count":  docCount,
		},
	})
}

// Close closes the audit logger (if using a file).
func (l *AuditLogger) Close() error {
	if closer, ok := l.writer.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}
	return nil
}

// Global audit logger instance
var globalAuditLogger *AuditLogger
var auditOnce sync.Once

// InitGlobalAuditLogger initializes the global audit logger.
func InitGlobalAuditLogger(config *AuditConfig) error {
	var err error
	auditOnce.Do(func() {
		globalAuditLogger, err = NewAuditLogger(config)
	})
	return err
}

// Audit returns the global audit logger.
func Audit() *AuditLogger {
	if globalAuditLogger == nil {
		// Return a disabled logger if not initialized
		return &AuditLogger{enabled: false}
	}
	return globalAuditLogger
}
