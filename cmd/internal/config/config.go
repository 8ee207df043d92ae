package config

import (
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/zhukovvlad/designfee-go/cmd/pkg/logging"
)

const defaultConfigPath = "./cmd/config/config.yml"

// SourcesConfig описывает внешние табличные источники (опубликованные CSV).
type SourcesConfig struct {
	// Norms: design phase -> URL таблицы базовых трудозатрат
	Norms        map[string]string `yaml:"norms"`
	WagesURL     string            `yaml:"wages_url" env:"WAGES_URL" env-required:"true"`
	InsuranceURL string            `yaml:"insurance_url" env:"INSURANCE_URL" env-required:"true"`
	Timeout      time.Duration     `yaml:"timeout" env-default:"15s"`
	CacheTTL     time.Duration     `yaml:"cache_ttl" env-default:"1h"`
	// RequestsPerSecond ограничивает обращения к источникам
	RequestsPerSecond int `yaml:"requests_per_second" env-default:"5"`
}

// PolicyConfig - настраиваемые константы расчёта, которые расходились между ревизиями методики.
type PolicyConfig struct {
	LandscapeTechFeeIncludesExpense     bool `yaml:"landscape_tech_fee_includes_expense" env-default:"true"`
	EnvironmentalTechFeeIncludesExpense bool `yaml:"environmental_tech_fee_includes_expense" env-default:"false"`
	DefaultDurationDays                 int  `yaml:"default_duration_days" env-default:"2"`
	MinPeriod                           int  `yaml:"min_period" env-default:"1"`
}

type ExportConfig struct {
	TemplatePath string `yaml:"template_path" env:"EXPORT_TEMPLATE" env-default:"./template.xlsx"`
}

// SessionsConfig - хранилище пошаговых сессий расчёта в памяти.
type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl" env-default:"12h"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env-default:"postgres"`
	// Пустой Source - счётчик посещений хранится в памяти
	Source string `yaml:"source" env:"DATABASE_URL" env-default:""`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type InternalConfig struct {
	APIKey            string `yaml:"api_key" env:"GO_SERVER_API_KEY" env-default:""`
	RequestsPerSecond int    `yaml:"requests_per_second" env-default:"10"`
	Burst             int    `yaml:"burst" env-default:"20"`
}

type Config struct {
	IsDebug *bool `yaml:"is_debug" env-required:"true"`
	Listen  struct {
		Type   string `yaml:"type" env-default:"port"`
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"8080"`
	} `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	Policy   PolicyConfig   `yaml:"policy"`
	Export   ExportConfig   `yaml:"export"`
	Sessions SessionsConfig `yaml:"sessions"`
	CORS     CORSConfig     `yaml:"cors"`
	Internal InternalConfig `yaml:"internal"`
}

var instance *Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		logger := logging.GetLogger()
		logger.Info("read application configuration")
		cfg, err := ReadConfig(defaultConfigPath)
		if err != nil {
			help, _ := cleanenv.GetDescription(&Config{}, nil)
			logger.Info(help)
			logger.Fatal(err)
		}
		instance = cfg
	})

	return instance
}

// ReadConfig читает конфигурацию из указанного файла (с переопределением через env).
func ReadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
