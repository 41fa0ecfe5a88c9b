package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Media    MediaConfig    `mapstructure:"media"`
	CORS     CORSConfig     `mapstructure:"cors"`
	App      AppConfig      `mapstructure:"app"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Push     PushConfig     `mapstructure:"push"`
}

type ServerConfig struct {
	Port      string  `mapstructure:"port"`
	Mode      string  `mapstructure:"mode"`
	RateLimit float64 `mapstructure:"rate_limit"` // 每个 IP 每秒请求数
	RateBurst int     `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
	TTLHours   int64  `mapstructure:"ttl_hours"` // 默认 7 天
	Secure     bool   `mapstructure:"secure"`
	Domain     string `mapstructure:"domain"`
}

// TTL 会话有效期
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

type RemoteConfig struct {
	Endpoint       string `mapstructure:"endpoint"`        // GraphQL 地址
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 单次请求超时
	// SnapshotSeconds 全量帖子快照缓存时间，0 表示不缓存
	SnapshotSeconds int `mapstructure:"snapshot_seconds"`
}

// SnapshotTTL 全量帖子快照有效期
func (r RemoteConfig) SnapshotTTL() time.Duration {
	return time.Duration(r.SnapshotSeconds) * time.Second
}

// DefaultMaxUploadBytes 单个媒体文件（含语音评论）默认上限
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

type UploadConfig struct {
	Backend     string `mapstructure:"backend"`  // http, oss
	Endpoint    string `mapstructure:"endpoint"` // multipart 上传地址
	MaxBytes    int64  `mapstructure:"max_bytes"`
	Concurrency int    `mapstructure:"concurrency"`
}

// Limit 单个文件上限，未配置时取默认值
func (u UploadConfig) Limit() int64 {
	if u.MaxBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return u.MaxBytes
}

type MediaConfig struct {
	ThumbnailWidth int    `mapstructure:"thumbnail_width"`
	FullWidth      int    `mapstructure:"full_width"`
	Placeholder    string `mapstructure:"placeholder"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

type PushConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AppKey          int64  `mapstructure:"app_key"`
	RegionID        string `mapstructure:"region_id"` // e.g., "cn-hangzhou"
	Workers         int    `mapstructure:"workers"`
	QueueSize       int    `mapstructure:"queue_size"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Session.Secret == "" || c.Session.Secret == "change_me" {
		return errors.New("please set a secure session secret")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("session secret should be at least 32 characters")
	}
	if c.Session.TTLHours <= 0 {
		return errors.New("session ttl must be positive")
	}

	if c.Remote.Endpoint == "" {
		return errors.New("remote graphql endpoint is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return errors.New("database configuration is incomplete")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("sqlite path is required")
		}
	default:
		return errors.New("unsupported database driver: " + c.Database.Driver)
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	switch c.Upload.Backend {
	case "http":
		if c.Upload.Endpoint == "" {
			return errors.New("upload endpoint is required for http backend")
		}
	case "oss":
		if c.OSS.Endpoint == "" || c.OSS.BucketName == "" {
			return errors.New("oss configuration is incomplete")
		}
	default:
		return errors.New("unsupported upload backend: " + c.Upload.Backend)
	}

	return nil
}

// SetDefaults 设置默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl_hours", 7*24)
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("remote.snapshot_seconds", 15)
	v.SetDefault("upload.backend", "http")
	v.SetDefault("upload.max_bytes", DefaultMaxUploadBytes)
	v.SetDefault("upload.concurrency", 5)
	v.SetDefault("media.thumbnail_width", 400)
	v.SetDefault("media.full_width", 1200)
	v.SetDefault("media.placeholder", "/static/placeholder.png")
	v.SetDefault("push.workers", 2)
	v.SetDefault("push.queue_size", 256)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
}

// LoadConfig 加载配置
func LoadConfig() *Config {
	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量，例如 SESSION_SECRET -> session.secret
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		GlobalConfig.Session.Secret = secret
	}
	if endpoint := os.Getenv("REMOTE_ENDPOINT"); endpoint != "" {
		GlobalConfig.Remote.Endpoint = endpoint
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
	return &GlobalConfig
}
