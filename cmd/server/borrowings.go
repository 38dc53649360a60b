package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-borrowing/pkg/borrowing"
	"library-borrowing/pkg/inventory"
	"library-borrowing/pkg/models"
)

func borrowingListItem(b models.Borrowing, includeBorrower bool) gin.H {
	item := gin.H{
		"borrowingUid":       b.BorrowingUid,
		"borrowDate":         b.BorrowDate.Format("2006-01-02"),
		"expectedReturnDate": b.ExpectedReturnDate.Format("2006-01-02"),
		"actualReturnDate":   formatDate(b.ActualReturnDate),
		"isActive":           b.IsActive,
		"book":               b.Book.Name,
	}
	if includeBorrower {
		item["user"] = b.User.FullName
	}
	return item
}

func borrowingDetail(b models.Borrowing, includeBorrower bool) gin.H {
	item := gin.H{
		"borrowingUid":       b.BorrowingUid,
		"borrowDate":         b.BorrowDate.Format("2006-01-02"),
		"expectedReturnDate": b.ExpectedReturnDate.Format("2006-01-02"),
		"actualReturnDate":   formatDate(b.ActualReturnDate),
		"isActive":           b.IsActive,
		"book":               bookResponse(b.Book),
	}
	if includeBorrower {
		item["user"] = b.User.FullName
	}
	return item
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func getBorrowings(c *gin.Context) {
	p := currentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	page, size := pagination(c)

	filters := borrowing.Filters{
		IsActive: c.Query("is_active"),
		UserID:   c.Query("user_id"),
	}

	items, total, err := svc.List(p, filters, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	includeBorrower := borrowing.IncludeBorrower(p)
	results := make([]gin.H, len(items))
	for i, b := range items {
		results[i] = borrowingListItem(b, includeBorrower)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": total,
		"results":       results,
	})
}

func getBorrowing(c *gin.Context) {
	p := currentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	b, err := svc.Get(p, c.Param("borrowingUid"))
	if err != nil {
		respondBorrowingError(c, err)
		return
	}
	c.JSON(http.StatusOK, borrowingDetail(*b, borrowing.IncludeBorrower(p)))
}

func createBorrowing(c *gin.Context) {
	p := currentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var request struct {
		BookUid            string `json:"bookUid" binding:"required"`
		ExpectedReturnDate string `json:"expectedReturnDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	expectedReturnDate, err := time.Parse("2006-01-02", request.ExpectedReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	b, err := svc.Borrow(p, request.BookUid, expectedReturnDate)
	if err != nil {
		respondBorrowingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, borrowingDetail(*b, borrowing.IncludeBorrower(p)))
}

func returnBorrowing(c *gin.Context) {
	p := currentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if _, err := svc.Return(p, c.Param("borrowingUid")); err != nil {
		respondBorrowingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "The book returned successfully."})
}

func respondBorrowingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, borrowing.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, borrowing.ErrBorrowingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "borrowing not found"})
	case errors.Is(err, inventory.ErrBookNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
	case errors.Is(err, inventory.ErrOutOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "This book is out of stock."})
	case errors.Is(err, borrowing.ErrAlreadyReturned):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "This book is already returned."})
	case errors.Is(err, borrowing.ErrInvalidDates):
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected return date must not precede borrow date"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
