package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-borrowing/pkg/models"
)

type bookRequest struct {
	Name      string  `json:"name" binding:"required"`
	Author    string  `json:"author" binding:"required"`
	Cover     string  `json:"cover" binding:"required"`
	Inventory int     `json:"inventory"`
	DailyFee  float64 `json:"dailyFee"`
}

func (r bookRequest) validate() string {
	if r.Cover != models.CoverHard && r.Cover != models.CoverSoft {
		return "cover must be HARD or SOFT"
	}
	if r.Inventory < 0 {
		return "inventory must not be negative"
	}
	if r.DailyFee < 0 {
		return "dailyFee must not be negative"
	}
	return ""
}

func bookResponse(b models.Book) gin.H {
	return gin.H{
		"bookUid":   b.BookUid,
		"name":      b.Name,
		"author":    b.Author,
		"cover":     b.Cover,
		"inventory": b.Inventory,
		"dailyFee":  b.DailyFee,
	}
}

func getBooks(c *gin.Context) {
	page, size := pagination(c)

	var total int64
	db.Model(&models.Book{}).Count(&total)

	var books []models.Book
	offset := (page - 1) * size
	err := db.Order("name, author").Offset(offset).Limit(size).Find(&books).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	results := make([]gin.H, len(books))
	for i, b := range books {
		results[i] = bookResponse(b)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": total,
		"results":       results,
	})
}

func getBook(c *gin.Context) {
	bookUid := c.Param("bookUid")

	var book models.Book
	if err := db.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, bookResponse(book))
}

func createBook(c *gin.Context) {
	if requireStaff(c) == nil {
		return
	}

	var request bookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if msg := request.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	book := models.Book{
		BookUid:   uuid.New().String(),
		Name:      request.Name,
		Author:    request.Author,
		Cover:     request.Cover,
		Inventory: request.Inventory,
		DailyFee:  request.DailyFee,
	}
	if err := db.Create(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create book"})
		return
	}
	c.JSON(http.StatusCreated, bookResponse(book))
}

func updateBook(c *gin.Context) {
	if requireStaff(c) == nil {
		return
	}
	bookUid := c.Param("bookUid")

	var book models.Book
	if err := db.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	var request bookRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if msg := request.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	book.Name = request.Name
	book.Author = request.Author
	book.Cover = request.Cover
	book.Inventory = request.Inventory
	book.DailyFee = request.DailyFee
	if err := db.Save(&book).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
		return
	}
	c.JSON(http.StatusOK, bookResponse(book))
}

// deleteBook removes the book and its borrowings. The cascade is done
// explicitly in one transaction rather than trusting the store's FK pragma.
func deleteBook(c *gin.Context) {
	if requireStaff(c) == nil {
		return
	}
	bookUid := c.Param("bookUid")

	var book models.Book
	if err := db.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", book.ID).Delete(&models.Borrowing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete book"})
		return
	}
	c.Status(http.StatusNoContent)
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}
	return page, size
}
