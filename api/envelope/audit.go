// Package envelope - Envelope logging and audit
package envelope

import (
	"time"

	"go.uber.org/zap"
)

// AuditEntry is a log entry for an envelope
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	InputHash  string    `json:"input_hash"`
	Kind       string    `json:"kind"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	QuoteID    string    `json:"quote_id,omitempty"`
	Total      string    `json:"total,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// AuditLogger records priced requests for audit and replay
type AuditLogger interface {
	Log(entry AuditEntry) error
}

// ZapAuditLogger writes audit entries as structured log lines
type ZapAuditLogger struct {
	Logger *zap.Logger
}

// Log writes an audit entry at info level, or warn when it failed
func (l *ZapAuditLogger) Log(entry AuditEntry) error {
	fields := []zap.Field{
		zap.String("input_hash", entry.InputHash),
		zap.String("kind", entry.Kind),
		zap.Bool("success", entry.Success),
		zap.Int64("duration_ms", entry.DurationMs),
	}
	if entry.RequestID != "" {
		fields = append(fields, zap.String("request_id", entry.RequestID))
	}
	if entry.ClientIP != "" {
		fields = append(fields, zap.String("client_ip", entry.ClientIP))
	}
	if entry.QuoteID != "" {
		fields = append(fields, zap.String("quote_id", entry.QuoteID))
	}
	if entry.Total != "" {
		fields = append(fields, zap.String("total", entry.Total))
	}
	if !entry.Success {
		l.Logger.Warn("estimate audit", append(fields, zap.String("error", entry.Error))...)
		return nil
	}
	l.Logger.Info("estimate audit", fields...)
	return nil
}

// CreateAuditEntry creates an audit entry from an envelope
func CreateAuditEntry(env *Envelope, requestID, clientIP string) AuditEntry {
	return AuditEntry{
		Timestamp: time.Now().UTC(),
		InputHash: env.InputHash,
		Kind:      string(env.Kind),
		RequestID: requestID,
		ClientIP:  clientIP,
		Success:   true,
	}
}

// MarkFailed marks the audit entry as failed
func (e *AuditEntry) MarkFailed(err error) {
	e.Success = false
	e.Error = err.Error()
}

// SetDuration sets the duration
func (e *AuditEntry) SetDuration(d time.Duration) {
	e.DurationMs = d.Milliseconds()
}
