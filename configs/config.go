package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// CommissionRate returns the platform commission as a fraction (0.15 by
// default). Callers pass it into the pricing code explicitly.
func CommissionRate() float64 {
	raw := Config("COMMISSION_PERCENTAGE")
	if raw == "" {
		return 0.15
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ Invalid COMMISSION_PERCENTAGE %q, using default 15", raw)
		return 0.15
	}
	return pct / 100
}
