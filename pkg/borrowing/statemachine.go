package borrowing

import (
	"time"

	"github.com/google/uuid"

	"library-borrowing/pkg/models"
)

// The lifecycle has exactly two states: active and returned. A record is
// created active and transitions once; there is no cancel or un-borrow.

// Today returns the current UTC calendar date.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// newBorrowing stamps the borrow date at creation time and validates the
// expected return date against it. Inventory is the caller's concern: a copy
// must already be reserved before this runs.
func newBorrowing(bookID, userID uint, expectedReturnDate time.Time) (*models.Borrowing, error) {
	borrowDate := Today()
	if expectedReturnDate.Before(borrowDate) {
		return nil, ErrInvalidDates
	}
	return &models.Borrowing{
		BorrowingUid:       uuid.New().String(),
		BorrowDate:         borrowDate,
		ExpectedReturnDate: expectedReturnDate,
		BookID:             bookID,
		UserID:             userID,
		IsActive:           true,
	}, nil
}

// markReturned advances an active borrowing to its terminal state. The actual
// return date and the is_active flag move together, never independently.
func markReturned(b *models.Borrowing) error {
	if !b.IsActive {
		return ErrAlreadyReturned
	}
	now := Today()
	b.ActualReturnDate = &now
	b.IsActive = false
	return nil
}
