package main

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"library-borrowing/pkg/models"
)

func seedData() {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Warn().Err(err).Msg("failed to hash seed password, skipping user seed")
	} else {
		users := []models.User{
			{Username: "admin", FullName: "Library Admin", Password: string(hash), IsStaff: true},
			{Username: "alice", FullName: "Alice Reader", Password: string(hash)},
		}
		for _, u := range users {
			var existing models.User
			if err := db.Where("username = ?", u.Username).First(&existing).Error; err != nil {
				if err := db.Create(&u).Error; err != nil {
					log.Warn().Err(err).Str("username", u.Username).Msg("failed to seed user")
				}
			}
		}
	}

	books := []models.Book{
		{Name: "The Go Programming Language", Author: "Alan Donovan", Cover: models.CoverHard, Inventory: 5, DailyFee: 1.50},
		{Name: "Clean Code", Author: "Robert Martin", Cover: models.CoverSoft, Inventory: 3, DailyFee: 1.00},
	}
	for _, b := range books {
		var existing models.Book
		if err := db.Where("name = ? AND author = ?", b.Name, b.Author).First(&existing).Error; err != nil {
			b.BookUid = uuid.New().String()
			if err := db.Create(&b).Error; err != nil {
				log.Warn().Err(err).Str("name", b.Name).Msg("failed to seed book")
			}
		}
	}
	log.Info().Msg("seed data loaded")
}
