package inventory

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"library-borrowing/pkg/models"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrOutOfStock   = errors.New("this book is out of stock")
)

// Ledger owns the per-book inventory count. Every adjustment goes through a
// single conditional UPDATE so concurrent callers observe a linearized order:
// two reservations against a stock of one can never both succeed.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Reserve takes one copy of the book. Fails with ErrOutOfStock when the count
// is already zero and with ErrBookNotFound when no such book exists.
func (l *Ledger) Reserve(tx *gorm.DB, bookUid string) (*models.Book, error) {
	if tx == nil {
		tx = l.db
	}

	result := tx.Model(&models.Book{}).
		Where("book_uid = ? AND inventory > 0", bookUid).
		UpdateColumn("inventory", gorm.Expr("inventory - 1"))
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "reserve book copy")
	}
	if result.RowsAffected == 0 {
		// Either the book does not exist or its stock is exhausted.
		var book models.Book
		if err := tx.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
			return nil, ErrBookNotFound
		}
		return nil, ErrOutOfStock
	}

	var book models.Book
	if err := tx.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		return nil, errors.Wrap(err, "load book after reserve")
	}
	return &book, nil
}

// Release puts one copy of the book back.
func (l *Ledger) Release(tx *gorm.DB, bookUid string) (*models.Book, error) {
	if tx == nil {
		tx = l.db
	}

	result := tx.Model(&models.Book{}).
		Where("book_uid = ?", bookUid).
		UpdateColumn("inventory", gorm.Expr("inventory + 1"))
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "release book copy")
	}
	if result.RowsAffected == 0 {
		return nil, ErrBookNotFound
	}

	var book models.Book
	if err := tx.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		return nil, errors.Wrap(err, "load book after release")
	}
	return &book, nil
}
