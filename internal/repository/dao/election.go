package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrPositionNotFound  = errors.New("position not found")
	ErrCandidateNotFound = errors.New("candidate not found")
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusActive   = "active"
	StatusClosed   = "closed"
)

type Election struct {
	ID uint `gorm:"primaryKey"`

	Title     string `gorm:"not null"`
	ChapterID *uint  `gorm:"index"` // NULL means national scope

	StartsAt time.Time `gorm:"not null"`
	EndsAt   time.Time `gorm:"not null"`
	Status   string    `gorm:"not null;default:pending;index"`

	CreatedBy  uint `gorm:"not null"`
	ApprovedBy *uint
	ApprovedAt *time.Time

	RequireVerification bool `gorm:"not null;default:false"`
	PublicResults       bool `gorm:"not null;default:true"`

	EligibleVoters    int     `gorm:"not null;default:0"`
	TotalVotesCast    int     `gorm:"not null;default:0"`
	TurnoutPercentage float64 `gorm:"not null;default:0"`

	Positions []Position `gorm:"foreignKey:ElectionID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Position struct {
	ID         uint   `gorm:"primaryKey"`
	ElectionID uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	OrderIndex int    `gorm:"not null;default:0"`

	TotalCandidates int `gorm:"not null;default:0"`
	TotalVotes      int `gorm:"not null;default:0"`

	Candidates []Candidate `gorm:"foreignKey:PositionID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Candidate struct {
	ID         uint   `gorm:"primaryKey"`
	PositionID uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	Manifesto  string
	MediaURL   string
	OrderIndex int `gorm:"not null;default:0"`

	VotesCount  int  `gorm:"not null;default:0"`
	IsWithdrawn bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ElectionFilter struct {
	Status    string
	ChapterID *uint
	National  bool
}

type ElectionDAO struct {
	db *gorm.DB
}

func NewElectionDAO(db *gorm.DB) *ElectionDAO {
	return &ElectionDAO{
		db: db,
	}
}

func (d *ElectionDAO) Insert(ctx context.Context, election Election) (Election, error) {
	result := d.db.WithContext(ctx).Create(&election)
	if result.Error != nil {
		return Election{}, result.Error
	}

	return election, nil
}

func (d *ElectionDAO) FindByID(ctx context.Context, id uint) (Election, error) {
	var election Election

	result := d.db.WithContext(ctx).First(&election, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Election{}, ErrElectionNotFound
		}

		return Election{}, result.Error
	}

	return election, nil
}

// FindByIDWithRaces loads the election with its positions and candidates
// nested, ordered by explicit order index with ID as tiebreaker.
func (d *ElectionDAO) FindByIDWithRaces(ctx context.Context, id uint, includeWithdrawn bool) (Election, error) {
	var election Election

	result := d.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("positions.order_index ASC, positions.id ASC")
		}).
		Preload("Positions.Candidates", func(db *gorm.DB) *gorm.DB {
			if !includeWithdrawn {
				db = db.Where("is_withdrawn = ?", false)
			}
			return db.Order("candidates.order_index ASC, candidates.id ASC")
		}).
		First(&election, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Election{}, ErrElectionNotFound
		}

		return Election{}, result.Error
	}

	return election, nil
}

func (d *ElectionDAO) List(ctx context.Context, filter ElectionFilter) ([]Election, error) {
	var elections []Election

	query := d.db.WithContext(ctx).Model(&Election{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.National {
		query = query.Where("chapter_id IS NULL")
	} else if filter.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filter.ChapterID)
	}

	result := query.Order("starts_at DESC, id DESC").Find(&elections)
	if result.Error != nil {
		return nil, result.Error
	}

	return elections, nil
}

// TransitionStatus advances the lifecycle with a compare-and-swap: the
// UPDATE only matches when the row still holds the expected status, so
// concurrent transitions cannot skip or regress a state. A false return
// means the row was not in fromStatus (or does not exist).
func (d *ElectionDAO) TransitionStatus(ctx context.Context, id uint, fromStatus, toStatus string) (bool, error) {
	result := d.db.WithContext(ctx).
		Model(&Election{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// Approve is the pending->approved transition; the approver stamp lands
// in the same statement as the status change.
func (d *ElectionDAO) Approve(ctx context.Context, id uint, approverID uint, at time.Time) (bool, error) {
	result := d.db.WithContext(ctx).
		Model(&Election{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusApproved,
			"approved_by": approverID,
			"approved_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// SetTurnout freezes the final participation figure after a close.
func (d *ElectionDAO) SetTurnout(ctx context.Context, id uint, turnout float64) error {
	result := d.db.WithContext(ctx).
		Model(&Election{}).
		Where("id = ?", id).
		Update("turnout_percentage", turnout)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrElectionNotFound
	}

	return nil
}

func (d *ElectionDAO) InsertPosition(ctx context.Context, position Position) (Position, error) {
	result := d.db.WithContext(ctx).Create(&position)
	if result.Error != nil {
		return Position{}, result.Error
	}

	return position, nil
}

func (d *ElectionDAO) FindPosition(ctx context.Context, id uint) (Position, error) {
	var position Position

	result := d.db.WithContext(ctx).First(&position, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Position{}, ErrPositionNotFound
		}

		return Position{}, result.Error
	}

	return position, nil
}

// InsertCandidate creates the row, then bumps the parent position's
// candidate counter with an in-database increment.
func (d *ElectionDAO) InsertCandidate(ctx context.Context, candidate Candidate) (Candidate, error) {
	result := d.db.WithContext(ctx).Create(&candidate)
	if result.Error != nil {
		return Candidate{}, result.Error
	}

	result = d.db.WithContext(ctx).
		Model(&Position{}).
		Where("id = ?", candidate.PositionID).
		UpdateColumn("total_candidates", gorm.Expr("total_candidates + ?", 1))
	if result.Error != nil {
		return Candidate{}, result.Error
	}

	return candidate, nil
}

func (d *ElectionDAO) FindCandidate(ctx context.Context, id uint) (Candidate, error) {
	var candidate Candidate

	result := d.db.WithContext(ctx).First(&candidate, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Candidate{}, ErrCandidateNotFound
		}

		return Candidate{}, result.Error
	}

	return candidate, nil
}

func (d *ElectionDAO) UpdateCandidate(ctx context.Context, candidate Candidate) (Candidate, error) {
	result := d.db.WithContext(ctx).
		Model(&Candidate{}).
		Where("id = ?", candidate.ID).
		Updates(map[string]interface{}{
			"name":        candidate.Name,
			"manifesto":   candidate.Manifesto,
			"media_url":   candidate.MediaURL,
			"order_index": candidate.OrderIndex,
		})
	if result.Error != nil {
		return Candidate{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Candidate{}, ErrCandidateNotFound
	}

	return d.FindCandidate(ctx, candidate.ID)
}

// WithdrawCandidate flips the visibility flag. Votes already recorded
// stay in every counter; withdrawing twice is a no-op.
func (d *ElectionDAO) WithdrawCandidate(ctx context.Context, id uint) (Candidate, error) {
	result := d.db.WithContext(ctx).
		Model(&Candidate{}).
		Where("id = ?", id).
		Update("is_withdrawn", true)
	if result.Error != nil {
		return Candidate{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Candidate{}, ErrCandidateNotFound
	}

	return d.FindCandidate(ctx, id)
}
