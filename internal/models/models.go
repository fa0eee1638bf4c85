package models

import (
	"time"

	"libranet/internal/money"
)

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "AVAILABLE"
	StatusBorrowed    AvailabilityStatus = "BORROWED"
	StatusReserved    AvailabilityStatus = "RESERVED"
	StatusMaintenance AvailabilityStatus = "MAINTENANCE"
)

type BorrowStatus string

const (
	BorrowStatusActive   BorrowStatus = "ACTIVE"
	BorrowStatusReturned BorrowStatus = "RETURNED"
	// BorrowStatusOverdue is a display label derived from the clock; it is never stored.
	BorrowStatusOverdue BorrowStatus = "OVERDUE"
)

// DefaultBorrowLimit applies when a user is created without an explicit limit.
const DefaultBorrowLimit = 5

type User struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	BorrowLimit int    `json:"borrow_limit"`
}

type BorrowRecord struct {
	ID         int          `json:"id"`
	ItemID     int          `json:"item_id"`
	UserID     int          `json:"user_id"`
	BorrowedAt time.Time    `json:"borrowed_at"`
	DueAt      time.Time    `json:"due_at"`
	ReturnedAt *time.Time   `json:"returned_at,omitempty"`
	Status     BorrowStatus `json:"status"`
}

// NewBorrowRecord returns an ACTIVE record without an id; the repository assigns one on save.
func NewBorrowRecord(itemID, userID int, borrowedAt, dueAt time.Time) *BorrowRecord {
	return &BorrowRecord{
		ItemID:     itemID,
		UserID:     userID,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
		Status:     BorrowStatusActive,
	}
}

// IsOverdue reports whether now is past the due time.
func (r *BorrowRecord) IsOverdue(now time.Time) bool {
	return now.After(r.DueAt)
}

// OverdueDays returns whole days overdue at now, floored, and at least 1 once
// the record is overdue at all.
func (r *BorrowRecord) OverdueDays(now time.Time) int {
	if !r.IsOverdue(now) {
		return 0
	}
	days := int(now.Sub(r.DueAt) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days
}

// DisplayStatus reports OVERDUE for an active record past due, else the stored status.
func (r *BorrowRecord) DisplayStatus(now time.Time) BorrowStatus {
	if r.Status == BorrowStatusActive && r.IsOverdue(now) {
		return BorrowStatusOverdue
	}
	return r.Status
}

func (r *BorrowRecord) Clone() *BorrowRecord {
	c := *r
	if r.ReturnedAt != nil {
		at := *r.ReturnedAt
		c.ReturnedAt = &at
	}
	return &c
}

// Fine is immutable once created.
type Fine struct {
	ID        int         `json:"id"`
	ItemID    int         `json:"item_id"`
	UserID    int         `json:"user_id"`
	Amount    money.Money `json:"amount"`
	Reason    string      `json:"reason"`
	AppliedAt time.Time   `json:"applied_at"`
}
