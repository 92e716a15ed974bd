package report

import "time"

// Report is a single daily business report. Every report belongs to exactly
// one user; UserID scopes all reads and writes.
type Report struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	// Date is stored as "YYYY-MM-DD" so prefix and range predicates work
	// as plain string comparisons.
	Date     string `gorm:"type:text;not null"`
	Person   string `gorm:"type:text;not null"`
	Location string `gorm:"type:text;not null;default:''"`
	Content  string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// SelectionLabel is the human-readable handle a dropdown-style client shows
// for a row. Both label selection and row-click selection resolve to ID.
func (r Report) SelectionLabel() string {
	return r.Date + " - " + r.Person
}
