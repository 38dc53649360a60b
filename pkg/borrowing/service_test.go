package borrowing

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"library-borrowing/pkg/inventory"
	"library-borrowing/pkg/models"
)

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(text string) {
	f.messages = append(f.messages, text)
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(routingKey string, payload interface{}) {
	f.events = append(f.events, routingKey)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect test database")
	}
	db.AutoMigrate(&models.User{}, &models.Book{}, &models.Borrowing{})
	return db
}

func newTestService(db *gorm.DB) (*Service, *fakeNotifier, *fakePublisher) {
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := NewService(db, inventory.NewLedger(db), notifier, publisher)
	return svc, notifier, publisher
}

func createTestUser(t *testing.T, db *gorm.DB, username string, staff bool) *Principal {
	user := models.User{
		Username: username,
		FullName: username + " Full Name",
		Password: "hashed",
		IsStaff:  staff,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &Principal{ID: user.ID, Username: user.Username, FullName: user.FullName, IsStaff: user.IsStaff}
}

func createTestBook(t *testing.T, db *gorm.DB, inventory int) models.Book {
	book := models.Book{
		BookUid:   uuid.New().String(),
		Name:      "Test Book",
		Author:    "Test Author",
		Cover:     models.CoverSoft,
		Inventory: inventory,
		DailyFee:  1.00,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("failed to create test book: %v", err)
	}
	return book
}

func inTwoWeeks() time.Time {
	return Today().AddDate(0, 0, 14)
}

func TestBorrow(t *testing.T) {
	db := setupTestDB(t)
	svc, notifier, publisher := newTestService(db)
	user := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 3)

	b, err := svc.Borrow(user, book.BookUid, inTwoWeeks())

	assert.NoError(t, err)
	assert.True(t, b.IsActive)
	assert.Nil(t, b.ActualReturnDate)
	assert.Equal(t, Today(), b.BorrowDate)
	assert.Equal(t, 2, b.Book.Inventory)

	var stored models.Borrowing
	assert.NoError(t, db.Where("borrowing_uid = ?", b.BorrowingUid).First(&stored).Error)
	assert.Equal(t, user.ID, stored.UserID)

	assert.Equal(t, 1, len(notifier.messages))
	assert.Contains(t, notifier.messages[0], "Created new borrowing!")
	assert.Contains(t, notifier.messages[0], "User: alice Full Name")
	assert.Contains(t, notifier.messages[0], "Book: Test Book - Test Author")

	assert.Equal(t, []string{EventBorrowingCreated}, publisher.events)
}

func TestBorrowAnonymous(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	book := createTestBook(t, db, 3)

	_, err := svc.Borrow(nil, book.BookUid, inTwoWeeks())

	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestBorrowOutOfStock(t *testing.T) {
	db := setupTestDB(t)
	svc, notifier, _ := newTestService(db)
	user := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 0)

	_, err := svc.Borrow(user, book.BookUid, inTwoWeeks())

	assert.ErrorIs(t, err, inventory.ErrOutOfStock)

	var count int64
	db.Model(&models.Borrowing{}).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Empty(t, notifier.messages)
}

func TestBorrowUnknownBook(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	user := createTestUser(t, db, "alice", false)

	_, err := svc.Borrow(user, "no-such-book", inTwoWeeks())

	assert.ErrorIs(t, err, inventory.ErrBookNotFound)
}

func TestBorrowInvalidDates(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	user := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 3)

	_, err := svc.Borrow(user, book.BookUid, Today().AddDate(0, 0, -1))

	assert.ErrorIs(t, err, ErrInvalidDates)

	// The reserved copy must come back with the rollback.
	var stored models.Book
	db.Where("book_uid = ?", book.BookUid).First(&stored)
	assert.Equal(t, 3, stored.Inventory)

	var count int64
	db.Model(&models.Borrowing{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestReturn(t *testing.T) {
	db := setupTestDB(t)
	svc, _, publisher := newTestService(db)
	user := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 1)

	b, err := svc.Borrow(user, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	returned, err := svc.Return(user, b.BorrowingUid)

	assert.NoError(t, err)
	assert.False(t, returned.IsActive)
	assert.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, Today(), *returned.ActualReturnDate)
	assert.Equal(t, 1, returned.Book.Inventory)

	assert.Equal(t, []string{EventBorrowingCreated, EventBorrowingReturned}, publisher.events)
}

func TestReturnTwice(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	user := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 1)

	b, err := svc.Borrow(user, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	_, err = svc.Return(user, b.BorrowingUid)
	assert.NoError(t, err)

	_, err = svc.Return(user, b.BorrowingUid)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	// Inventory went up exactly once.
	var stored models.Book
	db.Where("book_uid = ?", book.BookUid).First(&stored)
	assert.Equal(t, 1, stored.Inventory)
}

func TestReturnSomeoneElsesBorrowing(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	book := createTestBook(t, db, 1)

	b, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	_, err = svc.Return(bob, b.BorrowingUid)
	assert.ErrorIs(t, err, ErrBorrowingNotFound)
}

func TestReturnByStaff(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	admin := createTestUser(t, db, "admin", true)
	book := createTestBook(t, db, 1)

	b, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	returned, err := svc.Return(admin, b.BorrowingUid)
	assert.NoError(t, err)
	assert.False(t, returned.IsActive)
}

func TestBorrowAfterReturn(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	book := createTestBook(t, db, 1)

	b, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	assert.Equal(t, 0, b.Book.Inventory)

	_, err = svc.Borrow(bob, book.BookUid, inTwoWeeks())
	assert.ErrorIs(t, err, inventory.ErrOutOfStock)

	_, err = svc.Return(alice, b.BorrowingUid)
	assert.NoError(t, err)

	b2, err := svc.Borrow(bob, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	assert.Equal(t, 0, b2.Book.Inventory)
}

func TestListScoping(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	admin := createTestUser(t, db, "admin", true)
	book := createTestBook(t, db, 5)

	_, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	_, err = svc.Borrow(bob, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	own, total, err := svc.List(alice, Filters{}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, alice.ID, own[0].UserID)

	all, total, err := svc.List(admin, Filters{}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 2, len(all))
}

func TestListFilters(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	admin := createTestUser(t, db, "admin", true)
	book := createTestBook(t, db, 5)

	b1, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	_, err = svc.Borrow(bob, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	_, err = svc.Return(alice, b1.BorrowingUid)
	assert.NoError(t, err)

	active, total, err := svc.List(admin, Filters{IsActive: "true"}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, bob.ID, active[0].UserID)

	inactive, total, err := svc.List(admin, Filters{IsActive: "false"}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, alice.ID, inactive[0].UserID)

	// Both predicates AND together.
	none, total, err := svc.List(admin, Filters{IsActive: "true", UserID: itoa(alice.ID)}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)

	both, total, err := svc.List(admin, Filters{UserID: itoa(alice.ID)}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, alice.ID, both[0].UserID)

	// A garbage is_active value means the filter is absent.
	garbage, total, err := svc.List(admin, Filters{IsActive: "yes"}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, 2, len(garbage))
}

func TestFiltersIgnoredForRegularUsers(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	book := createTestBook(t, db, 5)

	_, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)
	_, err = svc.Borrow(bob, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	// A regular user asking for someone else's records still gets only their own.
	items, total, err := svc.List(alice, Filters{UserID: itoa(bob.ID)}, 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, alice.ID, items[0].UserID)
}

func TestGetScoping(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	admin := createTestUser(t, db, "admin", true)
	book := createTestBook(t, db, 5)

	b, err := svc.Borrow(alice, book.BookUid, inTwoWeeks())
	assert.NoError(t, err)

	got, err := svc.Get(alice, b.BorrowingUid)
	assert.NoError(t, err)
	assert.Equal(t, b.BorrowingUid, got.BorrowingUid)

	// Someone else's record is not found, never forbidden.
	_, err = svc.Get(bob, b.BorrowingUid)
	assert.ErrorIs(t, err, ErrBorrowingNotFound)

	_, err = svc.Get(admin, b.BorrowingUid)
	assert.NoError(t, err)
}

func TestGetRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc, _, _ := newTestService(db)
	alice := createTestUser(t, db, "alice", false)
	book := createTestBook(t, db, 5)

	expected := inTwoWeeks()
	b, err := svc.Borrow(alice, book.BookUid, expected)
	assert.NoError(t, err)

	got, err := svc.Get(alice, b.BorrowingUid)
	assert.NoError(t, err)
	assert.Equal(t, expected.Format("2006-01-02"), got.ExpectedReturnDate.Format("2006-01-02"))
	assert.Equal(t, book.BookUid, got.Book.BookUid)
}

func itoa(v uint) string {
	return strconv.Itoa(int(v))
}
