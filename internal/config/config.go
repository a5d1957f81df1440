package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	GigaChat GigaChatConfig `mapstructure:"gigachat"`
	Quiz     QuizConfig
	CORS     CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GigaChatConfig содержит настройки клиента GigaChat.
// Credentials обязательны; остальные поля имеют рабочие умолчания.
type GigaChatConfig struct {
	Credentials    string  `mapstructure:"credentials"`
	Model          string  `mapstructure:"model"`
	Scope          string  `mapstructure:"scope"`
	Temperature    float64 `mapstructure:"temperature"`
	VerifySSLCerts bool    `mapstructure:"verify_ssl_certs"`
	AuthURL        string  `mapstructure:"auth_url"`
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSec     int     `mapstructure:"timeout_sec"`
}

// QuizConfig содержит настройки квиза
type QuizConfig struct {
	PassScore     int    `mapstructure:"pass_score"`
	QuestionsPath string `mapstructure:"questions_path"`
	DefaultQuizID string `mapstructure:"default_quiz_id"`
	// Debug: в 5xx-ответах показывается детальная причина ошибки.
	Debug bool `mapstructure:"debug"`
}

// CORSConfig содержит настройки CORS
type CORSConfig struct {
	FrontendOrigin string `mapstructure:"frontend_origin"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из .env, файла (опционально) и переменных окружения
func Load(configPath string) (*Config, error) {
	// Подхватываем .env, если он есть рядом с бинарником (как делает бэкенд при локальной разработке)
	if err := godotenv.Load(); err == nil {
		log.Println("Загружен .env файл")
	}

	vip := viper.New() // Отдельный экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8000")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 60)
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("gigachat.model", "GigaChat-Pro")
	vip.SetDefault("gigachat.scope", "GIGACHAT_API_PERS")
	vip.SetDefault("gigachat.temperature", 0.0)
	vip.SetDefault("gigachat.verify_ssl_certs", false)
	vip.SetDefault("gigachat.timeout_sec", 60)
	vip.SetDefault("quiz.pass_score", 13)
	vip.SetDefault("quiz.questions_path", "questions.json")
	vip.SetDefault("quiz.default_quiz_id", "quiz1")
	vip.SetDefault("cors.frontend_origin", "http://localhost:5173")

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")

	// Имена совпадают с переменными, которые читал исходный бэкенд
	vip.BindEnv("gigachat.credentials", "GIGACHAT_CREDENTIALS")
	vip.BindEnv("gigachat.model", "GIGACHAT_MODEL")
	vip.BindEnv("gigachat.scope", "GIGACHAT_SCOPE")
	vip.BindEnv("gigachat.temperature", "GIGACHAT_TEMPERATURE")
	vip.BindEnv("gigachat.verify_ssl_certs", "GIGACHAT_VERIFY_SSL_CERTS")
	vip.BindEnv("gigachat.auth_url", "GIGACHAT_AUTH_URL")
	vip.BindEnv("gigachat.base_url", "GIGACHAT_BASE_URL")

	vip.BindEnv("quiz.pass_score", "PASS_SCORE")
	vip.BindEnv("quiz.questions_path", "QUESTIONS_PATH")
	vip.BindEnv("quiz.default_quiz_id", "DEFAULT_QUIZ_ID")
	vip.BindEnv("quiz.debug", "DEBUG")

	vip.BindEnv("cors.frontend_origin", "FRONTEND_ORIGIN")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит файл, env и умолчания)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только вне release-режима)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("GigaChat Model: %s", cfg.GigaChat.Model)
		log.Printf("GigaChat Credentials Set: %t", cfg.GigaChat.Credentials != "")
		log.Printf("Pass Score: %d", cfg.Quiz.PassScore)
		log.Printf("Questions Path: %s", cfg.Quiz.QuestionsPath)
		log.Printf("Debug: %t", cfg.Quiz.Debug)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.GigaChat.Credentials == "" {
		return nil, fmt.Errorf("GIGACHAT_CREDENTIALS is not set (set it in environment or .env)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Quiz.PassScore < 0 {
		return nil, fmt.Errorf("quiz pass_score must be non-negative, got %d", cfg.Quiz.PassScore)
	}

	return &cfg, nil
}
