package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Host         HostConfig         `yaml:"host"`
	Sync         SyncConfig         `yaml:"sync"`
	Model        ModelConfig        `yaml:"model"`
	ModelFactory ModelFactoryConfig `yaml:"model_factory"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql, postgres
	DSN  string `yaml:"dsn"`
}

// HostConfig 宿主 CMS 的安装状态
type HostConfig struct {
	// ConfigurationStatus 安装完成后写入的版本号，为空表示尚未安装
	ConfigurationStatus string `yaml:"configuration_status"`
}

// Installed 宿主是否已完成安装
func (h HostConfig) Installed() bool {
	return strings.TrimSpace(h.ConfigurationStatus) != ""
}

type SyncConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ModelConfig struct {
	Dir string `yaml:"dir"` // 声明文件目录
}

// ModelFactoryConfig 内容类型 alias 到模型类型的显式映射，优先于声明中的映射
type ModelFactoryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Mappings []TypeMapping `yaml:"mappings"`
}

type TypeMapping struct {
	Alias string `yaml:"alias"`
	Type  string `yaml:"type"`
}

var (
	cfg    *Config
	cfgErr error
	once   sync.Once
)

// GetConfig 加载一次全局配置，配置文件解析失败时返回错误
func GetConfig() (*Config, error) {
	once.Do(func() {
		cfg, cfgErr = loadConfig()
	})
	return cfg, cfgErr
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/codefirst.db",
		},
		Sync: SyncConfig{
			Enabled: true,
		},
		Model: ModelConfig{
			Dir: "./models",
		},
		ModelFactory: ModelFactoryConfig{
			Enabled: true,
		},
	}
}

// loadConfig 配置文件不存在时使用默认值，存在但无法解析时报错
func loadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		config := defaultConfig()
		applyEnv(config)
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// Load 从指定文件加载配置，文件必须存在且格式正确
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

// parse yaml.v3 遇到类型不匹配时仍会部分解码，这里任何错误都视为失败
func parse(data []byte) (*Config, error) {
	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyEnv(config)
	return config, nil
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if enabled := os.Getenv("SYNC_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			config.Sync.Enabled = v
		}
	}
	if status := os.Getenv("CONFIGURATION_STATUS"); status != "" {
		config.Host.ConfigurationStatus = status
	}
	if modelDir := os.Getenv("MODEL_DIR"); modelDir != "" {
		config.Model.Dir = modelDir
	}
}

// Validate 检查模型映射，格式错误的映射属于配置错误
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.ModelFactory.Mappings))
	for i, m := range c.ModelFactory.Mappings {
		if strings.TrimSpace(m.Alias) == "" {
			return fmt.Errorf("model_factory.mappings[%d]: alias cannot be empty", i)
		}
		if strings.TrimSpace(m.Type) == "" {
			return fmt.Errorf("model_factory.mappings[%d]: type cannot be empty for alias %q", i, m.Alias)
		}
		if seen[m.Alias] {
			return fmt.Errorf("model_factory.mappings[%d]: duplicate alias %q", i, m.Alias)
		}
		seen[m.Alias] = true
	}
	return nil
}

func UpdateConfig(newCfg *Config) {
	cfg = newCfg
}
