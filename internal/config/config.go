package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Gemini   GeminiConfig
	Booking  BookingConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN builds the connection string pgxpool expects.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

type AuthConfig struct {
	Secret     string
	AdminUsers []string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// BookingConfig drives the slot grid and the caches around it.
type BookingConfig struct {
	Location        *time.Location
	TimeSlots       []string
	BlockedSlots    []string
	SessionTTL      time.Duration
	CatalogTTL      time.Duration
	AvailabilityTTL time.Duration
}

type LimitsConfig struct {
	Rate   int
	Window time.Duration
}

const (
	defaultTimeSlots    = "09:00,09:45,10:30,11:15,13:00,13:45,14:30,15:15,16:00,16:45,17:30,18:15,19:00"
	defaultBlockedSlots = "13:00"
)

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	postgresPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     stringEnv("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     stringEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}

	authCfg := AuthConfig{
		Secret:     secret,
		AdminUsers: listEnv("ADMIN_USERS", ""),
	}

	geminiCfg := GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  stringEnv("GEMINI_MODEL", "gemini-1.5-flash"),
	}

	loc, err := time.LoadLocation(stringEnv("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid TIMEZONE: %w", op, err)
	}

	timeSlots := listEnv("TIME_SLOTS", defaultTimeSlots)
	for _, label := range timeSlots {
		if _, err := time.Parse("15:04", label); err != nil {
			return nil, fmt.Errorf("%s: invalid TIME_SLOTS entry %q: %w", op, label, err)
		}
	}
	if len(timeSlots) == 0 {
		return nil, fmt.Errorf("%s: TIME_SLOTS is empty", op)
	}

	sessionTTL, err := durationEnv("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	catalogTTL, err := durationEnv("CATALOG_TTL", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	availabilityTTL, err := durationEnv("AVAILABILITY_TTL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bookingCfg := BookingConfig{
		Location:        loc,
		TimeSlots:       timeSlots,
		BlockedSlots:    listEnv("BLOCKED_SLOTS", defaultBlockedSlots),
		SessionTTL:      sessionTTL,
		CatalogTTL:      catalogTTL,
		AvailabilityTTL: availabilityTTL,
	}

	rate, err := intEnv("RATE_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	window, err := durationEnv("RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Auth:     authCfg,
		Gemini:   geminiCfg,
		Booking:  bookingCfg,
		Limits:   LimitsConfig{Rate: rate, Window: window},
	}, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}

// listEnv splits a comma separated value, dropping blanks.
func listEnv(key, def string) []string {
	raw := stringEnv(key, def)

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
