package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrValidation = errors.New("validation failed")

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Date     string
	Person   string
	Location string
	Content  string
}

type UpdateInput struct {
	Date     string
	Person   string
	Location string
	Content  string
}

func validateFields(date, person, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content required: %w", ErrValidation)
	}
	if strings.TrimSpace(person) == "" {
		return fmt.Errorf("person required: %w", ErrValidation)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (uint64, error) {
	if err := validateFields(in.Date, in.Person, in.Content); err != nil {
		return 0, err
	}

	r := Report{
		UserID:   userID,
		Date:     in.Date,
		Person:   strings.TrimSpace(in.Person),
		Location: strings.TrimSpace(in.Location),
		Content:  in.Content,
	}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return 0, err
	}
	return r.ID, nil
}

// Get fetches one owned report; the single selectById both selection
// mechanisms (row click, label dropdown) resolve to.
func (s *Service) Get(ctx context.Context, userID, id uint64) (Report, error) {
	var r Report
	err := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	return r, nil
}

// List fetches the user's reports under the filter's date predicate, then
// applies the person/keyword criteria in memory. Results are newest first,
// id descending as the tie-break for equal dates.
func (s *Service) List(ctx context.Context, userID uint64, f Filter) ([]Report, error) {
	pred, err := f.DatePredicate(time.Now())
	if err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	switch {
	case pred.Exact != "":
		q = q.Where("date = ?", pred.Exact)
	case pred.From != "":
		q = q.Where("date >= ? AND date <= ?", pred.From, pred.To)
	default:
		q = q.Where("date LIKE ?", pred.Prefix+"%")
	}

	var rows []Report
	if err := q.Order("date desc, id desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := rows[:0]
	for _, r := range rows {
		if f.MatchesText(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Update replaces all mutable fields of an owned report. ID and UserID never
// change.
func (s *Service) Update(ctx context.Context, userID, id uint64, in UpdateInput) error {
	if err := validateFields(in.Date, in.Person, in.Content); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r Report
		err := tx.Where("id = ? AND user_id = ?", id, userID).First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return tx.Model(&Report{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]any{
				"date":       in.Date,
				"person":     strings.TrimSpace(in.Person),
				"location":   strings.TrimSpace(in.Location),
				"content":    in.Content,
				"updated_at": time.Now(),
			}).Error
	})
}

// Delete removes an owned report permanently. A missing id reports
// ErrNotFound; deleting the same id twice is therefore a 404, never a crash,
// and leaves the store unchanged.
func (s *Service) Delete(ctx context.Context, userID, id uint64) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
