package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN       string
	RedisURL       string
	JWTSecret      string
	GatewaySecret  string
	Port           string
	AllowedOrigins []string
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPass       string
	MailFrom       string
	BaseURL        string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))
	return Config{
		MySQLDSN:       getenv("MYSQL_DSN", "participa:participa@tcp(localhost:3306)/participa?parseTime=true"),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:      getenv("JWT_SECRET", "insecure-dev-secret-change-me"),
		GatewaySecret:  os.Getenv("GATEWAY_SECRET"),
		Port:           getenv("PORT", "3000"),
		AllowedOrigins: []string{getenv("FRONTEND_ORIGIN", "http://localhost:3000")},
		SMTPHost:       getenv("SMTP_HOST", "localhost"),
		SMTPPort:       smtpPort,
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		MailFrom:       getenv("MAIL_FROM", "participa@da.upm.es"),
		BaseURL:        getenv("BASE_URL", "http://localhost:3000"),
	}
}
