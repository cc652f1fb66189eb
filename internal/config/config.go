// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig       `yaml:"http"`
	Auth     AuthConfig       `yaml:"auth"`
	DB       DBConfig         `yaml:"db"`
	Redis    RedisConfig      `yaml:"redis"`
	S3       S3Config         `yaml:"s3"`
	Avatar   AvatarConfig     `yaml:"avatar"`
	Limits   LimitsConfig     `yaml:"limits"`
	Pages    PaginationConfig `yaml:"pages"`
	Timeouts TimeoutConfig    `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// Отсутствие JWTSecret — фатальная ошибка конфигурации: процесс не стартует.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"168h"`
	Issuer    string        `yaml:"issuer"   env:"ISSUER" env-default:"blog-service"`
	Audience  []string      `yaml:"audience" env:"AUDIENCE" env-default:"blog-api"`
}

// DBConfig — настройки подключения к базам данных.
// Пользователи живут в PostgreSQL, посты и комментарии — в MongoDB.
type DBConfig struct {
	PostgresURL string `yaml:"postgres_url" env:"POSTGRES_URL" env-required:"true"`
	MongoURL    string `yaml:"mongo_url" env:"MONGO_URL" env-required:"true"`
}

// RedisConfig — опциональный кэш постов. Пустой URL отключает кэш.
type RedisConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	PostTTL  time.Duration `yaml:"post_ttl" env:"REDIS_POST_TTL" env-default:"5m"`
}

// S3Config — настройки MinIO/S3 для аватаров. Пустой Endpoint отключает
// функциональность аватаров целиком.
type S3Config struct {
	Endpoint      string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	RootUser      string        `yaml:"root_user" env:"S3_ROOT_USER"`
	RootPassword  string        `yaml:"root_password" env:"S3_ROOT_PASSWORD"`
	Bucket        string        `yaml:"bucket" env:"S3_BUCKET" env-default:"avatars"`
	PresignTTL    time.Duration `yaml:"presign_ttl" env:"S3_PRESIGN_TTL" env-default:"10m"`
	PublicBaseURL string        `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// AvatarConfig — ограничения на загружаемые аватары.
type AvatarConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes" env:"AVATAR_MAX_SIZE_BYTES" env-default:"5242880"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"AVATAR_ALLOWED_CONTENT_TYPES" env-default:"image/jpeg,image/png,image/webp"`
}

// PolicyConfig — одна политика rate limit: окно и потолок запросов.
type PolicyConfig struct {
	Window time.Duration `yaml:"window"`
	Max    int64         `yaml:"max"`
}

// LimitsConfig — политики rate limit по классам трафика.
// Значения по умолчанию повторяют исходную систему:
// general 100/15m, auth 5/15m, посты 10/1h, комментарии 20/1h.
type LimitsConfig struct {
	General         PolicyConfig  `yaml:"general"`
	Auth            PolicyConfig  `yaml:"auth"`
	PostCreation    PolicyConfig  `yaml:"post_creation"`
	CommentCreation PolicyConfig  `yaml:"comment_creation"`
	SweepInterval   time.Duration `yaml:"sweep_interval" env:"LIMITS_SWEEP_INTERVAL" env-default:"10m"`
}

// PaginationConfig — границы размера страницы для списочных выдач.
type PaginationConfig struct {
	Default int64 `yaml:"default" env:"PAGE_DEFAULT" env-default:"10"`
	Max     int64 `yaml:"max" env:"PAGE_MAX" env-default:"100"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// applyLimitDefaults проставляет политики, не заданные ни файлом, ни ENV.
// cleanenv не умеет env-default для вложенных структур без тегов на полях,
// поэтому нулевые политики добиваем вручную.
func (c *Config) applyLimitDefaults() {
	def := func(p *PolicyConfig, window time.Duration, max int64) {
		if p.Window <= 0 {
			p.Window = window
		}
		if p.Max <= 0 {
			p.Max = max
		}
	}

	def(&c.Limits.General, 15*time.Minute, 100)
	def(&c.Limits.Auth, 15*time.Minute, 5)
	def(&c.Limits.PostCreation, time.Hour, 10)
	def(&c.Limits.CommentCreation, time.Hour, 20)
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		cfg.applyLimitDefaults()

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	cfg.applyLimitDefaults()

	return &cfg, nil
}
