package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"ophiuchus-be/internal/model"
	"ophiuchus-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type bankEntry struct {
	Prompt   string
	Answer   string
	Accepted []string
}

// fallbackBank is the generic music-trivia pool drawn from when
// per-session question generation is unavailable.
var fallbackBank = []bankEntry{
	{"Which decade saw the release of the first commercial compact disc?", "1980s", []string{"80s", "eighties"}},
	{"What four-letter word names the speed of a piece of music?", "tempo", nil},
	{"How many strings does a standard concert violin have?", "four", []string{"4"}},
	{"Which voice type sits highest: soprano, alto, tenor or bass?", "soprano", nil},
	{"What Italian word on a score tells players to perform very quietly?", "pianissimo", nil},
	{"Which instrument family does the timpani belong to?", "percussion", nil},
	{"What is the name for a group of five performing musicians?", "quintet", nil},
	{"Which clef is also known as the G clef?", "treble", []string{"treble clef"}},
	{"How many semitones make up one octave?", "twelve", []string{"12"}},
	{"What do the letters BPM stand for in music production?", "beats per minute", nil},
}

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

	color.Cyan("Seeding quiz question bank...")

	created := 0
	for _, entry := range fallbackBank {
		var existing model.QuizQuestion
		if err := db.Where("prompt = ?", entry.Prompt).First(&existing).Error; err == nil {
			continue
		}

		accepted, _ := json.Marshal(entry.Accepted)
		q := model.QuizQuestion{
			Id:              uuid.New(),
			Prompt:          entry.Prompt,
			Answer:          entry.Answer,
			AcceptedAnswers: datatypes.JSON(accepted),
			CreatedAt:       time.Now(),
		}
		if err := db.Create(&q).Error; err != nil {
			color.Red("Error creating question %q: %v", entry.Prompt, err)
			continue
		}
		created++
	}
	color.Green("Quiz bank ready (%d new, %d total in pool)", created, len(fallbackBank))

	seedDemoUser(db)
}

func seedDemoUser(db *gorm.DB) {
	email := "stargazer@example.com"

	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("Demo user %s already exists, skipping", email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("constellation"), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Error hashing demo password: %v", err)
		return
	}
	hashStr := string(hash)

	user := model.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		DisplayName:  "Stargazer",
		Role:         "user",
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		color.Red("Error creating demo user: %v", err)
		return
	}
	color.Green("Demo user ready: %s / constellation", email)
}
