package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Dosada05/tournament-runner/storage"
)

// Config holds every setting of the tournament runner.
type Config struct {
	ServerPort int

	// DataDir holds current_tournament.json and the tournament_<n>.json reports
	// when no database is configured.
	DataDir          string
	ParticipantsFile string
	RequirementsFile string

	// DatabaseURL switches tournament persistence to PostgreSQL when set.
	DatabaseURL string

	JWTSecretKey          string
	OrganizerPasswordHash string
	CORSAllowedOrigins    []string

	R2 storage.CloudflareR2UploaderConfig
}

// Load reads the configuration from environment variables, loading a .env
// file first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	passwordHash := os.Getenv("ORGANIZER_PASSWORD_HASH")
	if passwordHash == "" {
		return nil, fmt.Errorf("ORGANIZER_PASSWORD_HASH environment variable is not set")
	}

	portStr := getEnvOrDefault("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if !r2.IsZero() && (r2.AccountID == "" || r2.AccessKeyID == "" || r2.SecretAccessKey == "" || r2.BucketName == "") {
		return nil, fmt.Errorf("R2 archive is partially configured: R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are all required")
	}

	cfg := &Config{
		ServerPort:            port,
		DataDir:               getEnvOrDefault("DATA_DIR", "tournaments"),
		ParticipantsFile:      getEnvOrDefault("PARTICIPANTS_FILE", "participants.txt"),
		RequirementsFile:      getEnvOrDefault("REQUIREMENTS_FILE", "tournament_req.txt"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTSecretKey:          jwtKey,
		OrganizerPasswordHash: passwordHash,
		CORSAllowedOrigins:    splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		R2:                    r2,
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
