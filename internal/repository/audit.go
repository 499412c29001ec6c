package repository

import (
	"context"
	"fmt"

	"github.com/chapterhq/election-api/internal/domain"
	"github.com/chapterhq/election-api/internal/repository/dao"
)

type AuditDAO interface {
	Insert(ctx context.Context, entry dao.AuditEntry) (dao.AuditEntry, error)
	List(ctx context.Context, filter dao.AuditFilter) ([]dao.AuditEntry, error)
}

type AuditFilter struct {
	ActorID    *uint
	Action     domain.AuditAction
	ElectionID *uint
	ChapterID  *uint
	Limit      int
	Offset     int
}

type AuditRepository struct {
	dao AuditDAO
}

func NewAuditRepository(dao AuditDAO) *AuditRepository {
	return &AuditRepository{
		dao: dao,
	}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	created, err := r.dao.Insert(ctx, dao.AuditEntry{
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		ElectionID:   entry.ElectionID,
		ChapterID:    entry.ChapterID,
		Detail:       entry.Detail,
		Origin:       entry.Origin,
		UserAgent:    entry.UserAgent,
		Success:      entry.Success,
	})
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	found, err := r.dao.List(ctx, dao.AuditFilter{
		ActorID:    filter.ActorID,
		Action:     string(filter.Action),
		ElectionID: filter.ElectionID,
		ChapterID:  filter.ChapterID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(found))
	for _, e := range found {
		entries = append(entries, r.daoToDomain(e))
	}

	return entries, nil
}

func (r *AuditRepository) daoToDomain(e dao.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		ID:           e.ID,
		ActorID:      e.ActorID,
		ActorRole:    e.ActorRole,
		Action:       domain.AuditAction(e.Action),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ElectionID:   e.ElectionID,
		ChapterID:    e.ChapterID,
		Detail:       e.Detail,
		Origin:       e.Origin,
		UserAgent:    e.UserAgent,
		Success:      e.Success,
		CreatedAt:    e.CreatedAt,
	}
}
