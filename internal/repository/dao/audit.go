package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type AuditEntry struct {
	ID uint `gorm:"primaryKey"`

	ActorID      uint   `gorm:"not null;index"`
	ActorRole    string `gorm:"not null"`
	Action       string `gorm:"not null;index"`
	ResourceType string `gorm:"not null"`
	ResourceID   uint   `gorm:"not null"`
	ElectionID   *uint  `gorm:"index"`
	ChapterID    *uint  `gorm:"index"`
	Detail       string
	Origin       string
	UserAgent    string
	Success      bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;index"`
}

type AuditFilter struct {
	ActorID    *uint
	Action     string
	ElectionID *uint
	ChapterID  *uint
	Limit      int
	Offset     int
}

type AuditDAO struct {
	db *gorm.DB
}

func NewAuditDAO(db *gorm.DB) *AuditDAO {
	return &AuditDAO{
		db: db,
	}
}

// Insert appends one entry. There is no update or delete path.
func (d *AuditDAO) Insert(ctx context.Context, entry AuditEntry) (AuditEntry, error) {
	result := d.db.WithContext(ctx).Create(&entry)
	if result.Error != nil {
		return AuditEntry{}, result.Error
	}

	return entry, nil
}

func (d *AuditDAO) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	var entries []AuditEntry

	query := d.db.WithContext(ctx).Model(&AuditEntry{})
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ElectionID != nil {
		query = query.Where("election_id = ?", *filter.ElectionID)
	}
	if filter.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filter.ChapterID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	result := query.Order("created_at DESC, id DESC").Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}

	return entries, nil
}
