package main

import (
	"log"
	"os"
	"time"

	"ai-canvas-be/internal/model"
	"ai-canvas-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a verified demo account with one sample document. Intended for local
// development only.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	email := "demo@canvas.local"

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("Demo user already exists (%s), nothing to do.", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: bcrypt failed: %v", err)
	}
	hashStr := string(hash)

	user := model.User{
		Id:            uuid.New(),
		Email:         email,
		FullName:      "Demo User",
		PasswordHash:  &hashStr,
		Role:          "user",
		Status:        "active",
		EmailVerified: true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: failed to create demo user: %v", err)
	}

	doc := model.Document{
		Id:        uuid.New(),
		CreatedAt: time.Now(),
		Title:     "Welcome to Canvas",
		Content:   "# Welcome\n\nThis document was seeded for local development. Create a new document from chat to see streaming generation.",
		Kind:      "text",
		UserId:    user.Id,
	}
	if err := db.Create(&doc).Error; err != nil {
		log.Fatalf("Error: failed to create sample document: %v", err)
	}

	color.Green("Seeded demo user %s (password: demo12345) with one sample document.", email)
}
