package history

import (
	"context"
	"time"
)

// ChatLog is one completed conversation turn.
type ChatLog struct {
	ID        string
	TenantID  string
	RequestID string
	Message   string
	Response  string
	Language  string
	Provider  string
	Model     string
	LatencyMs int64
	CreatedAt time.Time
}

type Store interface {
	LogChat(ctx context.Context, log *ChatLog) error
	GetByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]*ChatLog, error)
	CountByTenant(ctx context.Context, tenantID string, from, to time.Time) (int64, error)
}
