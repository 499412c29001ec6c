package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error)
}

type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// Record appends one trail entry, filling request metadata from the
// context when the caller left it blank. A failed append is logged and
// dropped; the operation being audited already happened.
func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) {
	meta := domain.RequestMetaFromContext(ctx)
	if entry.Origin == "" {
		entry.Origin = meta.Origin
	}
	if entry.UserAgent == "" {
		entry.UserAgent = meta.UserAgent
	}

	if _, err := s.repo.Append(ctx, entry); err != nil {
		zap.L().Warn("audit append failed",
			zap.String("action", string(entry.Action)),
			zap.Uint("actor_id", entry.ActorID),
			zap.Error(err))
	}
}

func (s *AuditService) List(ctx context.Context, actor domain.Actor, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	if !actor.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: the audit trail is super admin territory", ErrUnauthorized)
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultAuditPageSize
	}
	if filter.Limit > maxAuditPageSize {
		filter.Limit = maxAuditPageSize
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return entries, nil
}
