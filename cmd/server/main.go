package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"library-borrowing/pkg/borrowing"
	"library-borrowing/pkg/config"
	"library-borrowing/pkg/database"
	"library-borrowing/pkg/events"
	"library-borrowing/pkg/inventory"
	"library-borrowing/pkg/notifier"
)

var (
	db  *gorm.DB
	svc *borrowing.Service
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	log.Info().Msg("starting library borrowing service")

	cfg := config.Load()

	var err error
	db, err = database.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	if cfg.SeedData {
		seedData()
	}

	telegram := notifier.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramAPIURL)
	telegram.Start()
	defer telegram.Stop()

	rabbit, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connection failed")
	}
	defer rabbit.Close()

	ledger := inventory.NewLedger(db)
	svc = borrowing.NewService(db, ledger, telegram, rabbit)

	server := gin.Default()
	server.Use(principalMiddleware())

	server.POST("/api/v1/users", createUser)

	server.GET("/api/v1/books", getBooks)
	server.GET("/api/v1/books/:bookUid", getBook)
	server.POST("/api/v1/books", createBook)
	server.PUT("/api/v1/books/:bookUid", updateBook)
	server.DELETE("/api/v1/books/:bookUid", deleteBook)

	server.GET("/api/v1/borrowings", getBorrowings)
	server.GET("/api/v1/borrowings/:borrowingUid", getBorrowing)
	server.POST("/api/v1/borrowings", createBorrowing)
	server.POST("/api/v1/borrowings/:borrowingUid/return", returnBorrowing)

	server.GET("/manage/health", healthCheck)

	handler := cors.Default().Handler(server)
	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func healthCheck(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
