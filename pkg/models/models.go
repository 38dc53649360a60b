package models

import (
	"fmt"
	"time"
)

const (
	CoverHard = "HARD"
	CoverSoft = "SOFT"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"size:80;not null;uniqueIndex"`
	FullName  string `gorm:"size:160"`
	Password  string `gorm:"not null"` // bcrypt hash, never serialized
	IsStaff   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Book struct {
	ID        uint    `gorm:"primaryKey"`
	BookUid   string  `gorm:"type:uuid;uniqueIndex;not null"`
	Name      string  `gorm:"size:255;not null"`
	Author    string  `gorm:"size:255;not null"`
	Cover     string  `gorm:"size:4;not null"`
	Inventory int     `gorm:"not null;check:inventory >= 0"`
	DailyFee  float64 `gorm:"type:decimal(7,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Describe renders the book the way notifications present it.
func (b Book) Describe() string {
	return fmt.Sprintf("%s - %s", b.Name, b.Author)
}

type Borrowing struct {
	ID                 uint      `gorm:"primaryKey"`
	BorrowingUid       string    `gorm:"type:uuid;uniqueIndex;not null"`
	BorrowDate         time.Time `gorm:"not null"`
	ExpectedReturnDate time.Time `gorm:"not null"`
	ActualReturnDate   *time.Time
	BookID             uint `gorm:"not null;index"`
	UserID             uint `gorm:"not null;index"`
	IsActive           bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Book Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
