// SewaBot is the Sikkim government-services assistant: a Matrix bot that
// answers questions about disaster relief and walks citizens through the
// ex-gratia application form in English, Hindi, Nepali or Hinglish.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/smartgov-sikkim/sewabot/common/environment"
	"github.com/smartgov-sikkim/sewabot/common/version"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/app"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/gateway"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/matrix"
)

func main() {
	fmt.Printf("SewaBot - Sikkim SmartGov assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bot, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize SewaBot: %v\n", err)
		os.Exit(1)
	}
	defer bot.Stop()

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running SewaBot: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables. The Matrix
// credentials are required; everything else has a working default.
func loadConfig() (*app.Config, error) {
	homeserver, err := environment.RequiredString("MATRIX_HOMESERVER")
	if err != nil {
		return nil, err
	}
	userID, err := environment.RequiredString("MATRIX_USER_ID")
	if err != nil {
		return nil, err
	}
	accessToken, err := environment.RequiredString("MATRIX_ACCESS_TOKEN")
	if err != nil {
		return nil, err
	}

	return &app.Config{
		DatabasePath: environment.StringOr("DATABASE_PATH", "./sewabot.db"),
		Matrix: matrix.Config{
			Homeserver:   homeserver,
			UserID:       userID,
			AccessToken:  accessToken,
			AllowedRooms: environment.StringSliceOr("MATRIX_ALLOWED_ROOMS", nil),
		},
		Gateway: gateway.Config{
			BaseURL: environment.StringOr("OLLAMA_URL", ""),
			Model:   environment.StringOr("OLLAMA_MODEL", ""),
			Timeout: environment.DurationOr("OLLAMA_TIMEOUT", 0),
		},
		HTTPAddr:    environment.StringOr("HTTP_ADDR", ""),
		RateLimit:   environment.IntOr("RATE_LIMIT_PER_MINUTE", 0),
		CacheTTL:    environment.DurationOr("CACHE_TTL", 0),
		TurnTimeout: environment.DurationOr("TURN_TIMEOUT", 30*time.Second),
	}, nil
}
