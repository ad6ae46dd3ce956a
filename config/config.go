package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置结构体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Async     AsyncConfig     `yaml:"async"`
	Recommend RecommendConfig `yaml:"recommend"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`         // 服务器监听端口
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // 读取超时时间
	WriteTimeout time.Duration `yaml:"writeTimeout"` // 写入超时时间
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // 空闲超时时间
}

// DatabaseConfig 数据库配置
// Driver 为 sqlite 时 Database 字段表示数据库文件路径
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // 数据库驱动类型 mysql/postgres/sqlite
	Host     string `yaml:"host"`     // 数据库主机地址
	Port     int    `yaml:"port"`     // 数据库端口
	Username string `yaml:"username"` // 数据库用户名
	Password string `yaml:"password"` // 数据库密码
	Database string `yaml:"database"` // 数据库名称
	Charset  string `yaml:"charset"`  // 字符集
	MaxIdle  int    `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen  int    `yaml:"maxOpen"`  // 最大打开连接数
	SSLMode  string `yaml:"sslMode"`  // postgres 的 sslmode
	LogSQL   bool   `yaml:"logSQL"`   // 是否打印SQL
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // JWT密钥
	ExpireTime time.Duration `yaml:"expireTime"` // JWT过期时间
	Issuer     string        `yaml:"issuer"`     // JWT签发者
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`      // 日志级别
	Filename   string `yaml:"filename"`   // 日志文件名
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`   // 是否压缩
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // 是否启用（关闭时在线状态不可用）
	Host     string `yaml:"host"`     // Redis主机地址
	Port     int    `yaml:"port"`     // Redis端口
	Password string `yaml:"password"` // Redis密码
	DB       int    `yaml:"db"`       // Redis数据库编号
}

// AsyncConfig 协程池配置，只用于异步任务执行，不负责定时/调度
type AsyncConfig struct {
	PoolSize         int           `yaml:"poolSize"`         // 协程池容量
	MaxBlockingTasks int           `yaml:"maxBlockingTasks"` // 最大阻塞任务数（0 表示不限制）
	ExpiryDuration   time.Duration `yaml:"expiryDuration"`   // 空闲 worker 过期时间
	Nonblocking      bool          `yaml:"nonblocking"`      // 是否非阻塞提交
	ReleaseTimeout   time.Duration `yaml:"releaseTimeout"`   // 优雅释放等待时间
}

// RecommendConfig 好友推荐配置
type RecommendConfig struct {
	DefaultLimit    int `yaml:"defaultLimit"`    // 默认返回条数
	MaxLimit        int `yaml:"maxLimit"`        // 单次请求最大返回条数
	MoodHistorySize int `yaml:"moodHistorySize"` // 参与计算的最近心情条数
	MaxCandidates   int `yaml:"maxCandidates"`   // 单次请求最多参与打分的候选人数
}

// RateLimitConfig 限流配置（按用户）
type RateLimitConfig struct {
	RecommendPerMinute int `yaml:"recommendPerMinute"` // 推荐接口每分钟请求数
	Burst              int `yaml:"burst"`              // 令牌桶容量
}

// CORSConfig 跨域配置，AllowOrigins 为空时放行所有来源
type CORSConfig struct {
	AllowOrigins []string      `yaml:"allowOrigins"` // 允许的来源
	MaxAge       time.Duration `yaml:"maxAge"`       // 预检结果缓存时间
}

// LoadConfig 加载配置（混合方式：.env + YAML文件 + 环境变量）
func LoadConfig() *Config {
	// .env 只补充尚未设置的环境变量，文件不存在时忽略
	_ = godotenv.Load()
	return LoadConfigFrom(getEnv("CONFIG_FILE", "config/config.yaml"))
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(filePath string) *Config {
	// 1. 首先从YAML文件加载默认配置
	config := loadFromYAML(filePath)

	// 2. 用环境变量覆盖配置（环境变量优先级更高）
	overrideWithEnvVars(config)

	return config
}

// loadFromYAML 从YAML文件加载配置，未配置的字段沿用默认值
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		// 如果文件不存在，返回默认配置
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		// 如果解析失败，返回默认配置
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	// 服务器配置
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	// 数据库配置
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	if sslMode := getEnv("DB_SSLMODE", ""); sslMode != "" {
		config.Database.SSLMode = sslMode
	}
	config.Database.LogSQL = getEnvBool("DB_LOG_SQL", config.Database.LogSQL)

	// JWT配置
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// 协程池配置
	if size := getEnvInt("ASYNC_POOL_SIZE", 0); size > 0 {
		config.Async.PoolSize = size
	}
	if d := getEnvDuration("ASYNC_EXPIRY", 0); d > 0 {
		config.Async.ExpiryDuration = d
	}
	config.Async.Nonblocking = getEnvBool("ASYNC_NONBLOCKING", config.Async.Nonblocking)

	// 推荐配置
	if n := getEnvInt("RECOMMEND_DEFAULT_LIMIT", 0); n > 0 {
		config.Recommend.DefaultLimit = n
	}
	if n := getEnvInt("RECOMMEND_MAX_LIMIT", 0); n > 0 {
		config.Recommend.MaxLimit = n
	}
	if n := getEnvInt("RECOMMEND_MOOD_HISTORY", 0); n > 0 {
		config.Recommend.MoodHistorySize = n
	}
	if n := getEnvInt("RECOMMEND_MAX_CANDIDATES", 0); n > 0 {
		config.Recommend.MaxCandidates = n
	}

	// 限流配置
	if n := getEnvInt("RATE_LIMIT_RECOMMEND_PER_MINUTE", 0); n > 0 {
		config.RateLimit.RecommendPerMinute = n
	}
	if n := getEnvInt("RATE_LIMIT_BURST", 0); n > 0 {
		config.RateLimit.Burst = n
	}

	// 跨域配置，多个来源用逗号分隔
	if origins := getEnv("CORS_ORIGIN", ""); origins != "" {
		config.CORS.AllowOrigins = splitList(origins)
	}
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "moodmeal",
			Password: "moodmeal",
			Database: "moodmeal",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
			SSLMode:  "disable",
		},
		JWT: JWTConfig{
			Secret:     "your-secret-key",
			ExpireTime: 24 * time.Hour,
			Issuer:     "moodmeal",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Enabled:  true,
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Async: AsyncConfig{
			PoolSize:         256,
			MaxBlockingTasks: 0,
			ExpiryDuration:   10 * time.Second,
			Nonblocking:      false,
			ReleaseTimeout:   5 * time.Second,
		},
		Recommend: RecommendConfig{
			DefaultLimit:    10,
			MaxLimit:        50,
			MoodHistorySize: 30,
			MaxCandidates:   5000,
		},
		RateLimit: RateLimitConfig{
			RecommendPerMinute: 30,
			Burst:              10,
		},
		CORS: CORSConfig{
			MaxAge: 12 * time.Hour,
		},
	}
}

// 辅助函数：获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// 辅助函数：获取时间环境变量
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// 辅助函数：拆分逗号分隔的列表
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
