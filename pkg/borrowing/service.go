package borrowing

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"library-borrowing/pkg/inventory"
	"library-borrowing/pkg/models"
)

// Notifier delivers a plain-text message to the preconfigured channel.
// Delivery is detached from the borrowing transaction: a failure is the
// notifier's problem, never the caller's.
type Notifier interface {
	Notify(text string)
}

// EventPublisher emits borrowing lifecycle events, best-effort.
type EventPublisher interface {
	Publish(routingKey string, payload interface{})
}

const (
	EventBorrowingCreated  = "borrowing.created"
	EventBorrowingReturned = "borrowing.returned"
)

type BorrowingEvent struct {
	BorrowingUid string `json:"borrowingUid"`
	BookUid      string `json:"bookUid"`
	Username     string `json:"username"`
	Date         string `json:"date"`
}

// Service orchestrates the borrowing lifecycle: the ledger adjustment and the
// state transition run in one transaction, the side channels fire after commit.
type Service struct {
	db        *gorm.DB
	ledger    *inventory.Ledger
	notifier  Notifier
	publisher EventPublisher
}

func NewService(db *gorm.DB, ledger *inventory.Ledger, notifier Notifier, publisher EventPublisher) *Service {
	return &Service{db: db, ledger: ledger, notifier: notifier, publisher: publisher}
}

// Borrow reserves a copy and creates the borrowing record atomically. On
// OutOfStock nothing is persisted. The notification and the event fire only
// after the transaction commits.
func (s *Service) Borrow(p *Principal, bookUid string, expectedReturnDate time.Time) (*models.Borrowing, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}

	var created models.Borrowing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		book, err := s.ledger.Reserve(tx, bookUid)
		if err != nil {
			return err
		}

		b, err := newBorrowing(book.ID, p.ID, expectedReturnDate)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(b).Error; err != nil {
			return errors.Wrap(err, "create borrowing")
		}

		b.Book = *book
		created = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(borrowingCreatedMessage(p, &created))
	}
	if s.publisher != nil {
		s.publisher.Publish(EventBorrowingCreated, BorrowingEvent{
			BorrowingUid: created.BorrowingUid,
			BookUid:      created.Book.BookUid,
			Username:     p.Username,
			Date:         created.BorrowDate.Format("2006-01-02"),
		})
	}
	return &created, nil
}

// Return closes an active borrowing and releases its copy back to stock. A
// second return of the same record fails with ErrAlreadyReturned before any
// inventory change, so the copy is never released twice.
func (s *Service) Return(p *Principal, borrowingUid string) (*models.Borrowing, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}

	var returned models.Borrowing
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b models.Borrowing
		query := scope(tx.Preload("Book"), p)
		if err := query.Where("borrowing_uid = ?", borrowingUid).First(&b).Error; err != nil {
			return ErrBorrowingNotFound
		}

		if err := markReturned(&b); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&b).Error; err != nil {
			return errors.Wrap(err, "save returned borrowing")
		}

		book, err := s.ledger.Release(tx, b.Book.BookUid)
		if err != nil {
			return err
		}

		b.Book = *book
		returned = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(EventBorrowingReturned, BorrowingEvent{
			BorrowingUid: returned.BorrowingUid,
			BookUid:      returned.Book.BookUid,
			Username:     p.Username,
			Date:         returned.ActualReturnDate.Format("2006-01-02"),
		})
	}
	return &returned, nil
}

// List returns the principal's visible borrowings, staff filters applied,
// newest first, paginated.
func (s *Service) List(p *Principal, f Filters, page, size int) ([]models.Borrowing, int64, error) {
	if p == nil {
		return nil, 0, ErrUnauthenticated
	}

	query := scope(s.db.Model(&models.Borrowing{}), p)
	query = applyFilters(query, p, f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count borrowings")
	}

	var items []models.Borrowing
	offset := (page - 1) * size
	err := query.Preload("Book").Preload("User").
		Order("id DESC").Offset(offset).Limit(size).Find(&items).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list borrowings")
	}
	return items, total, nil
}

// Get fetches one borrowing inside the principal's scope. A record that exists
// but belongs to someone else is indistinguishable from a missing one.
func (s *Service) Get(p *Principal, borrowingUid string) (*models.Borrowing, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}

	var b models.Borrowing
	query := scope(s.db.Preload("Book").Preload("User"), p)
	if err := query.Where("borrowing_uid = ?", borrowingUid).First(&b).Error; err != nil {
		return nil, ErrBorrowingNotFound
	}
	return &b, nil
}

func borrowingCreatedMessage(p *Principal, b *models.Borrowing) string {
	return fmt.Sprintf(
		"Created new borrowing!\n\nUser: %s\nBook: %s\nData of borrowing: %s\nExpected return date: %s\n",
		p.FullName,
		b.Book.Describe(),
		b.BorrowDate.Format("2006-01-02"),
		b.ExpectedReturnDate.Format("2006-01-02"),
	)
}
