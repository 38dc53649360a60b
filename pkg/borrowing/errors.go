package borrowing

import "github.com/pkg/errors"

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrAlreadyReturned   = errors.New("this book is already returned")
	ErrInvalidDates      = errors.New("expected return date precedes borrow date")
)
