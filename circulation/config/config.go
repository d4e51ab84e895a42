package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/Astemirdum/circulation-service/pkg/logger"
	"github.com/Astemirdum/circulation-service/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
}

type Storage struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER" default:"postgres"`
}

type Auth struct {
	// JWTSecret enables HS256 bearer tokens; empty trusts the gateway X-User-* headers.
	JWTSecret string `yaml:"jwtSecret" envconfig:"JWT_SECRET" json:"-"`
}

type Sweeper struct {
	Interval time.Duration `yaml:"interval" envconfig:"SWEEP_INTERVAL" default:"1m"`
}

type Retry struct {
	Attempts  int           `yaml:"attempts" envconfig:"RETRY_ATTEMPTS" default:"3"`
	BaseDelay time.Duration `yaml:"baseDelay" envconfig:"RETRY_BASE_DELAY" default:"5ms"`
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Database postgres.DB `yaml:"db"`
	Storage  Storage     `yaml:"storage"`
	Kafka    kafka.Config
	Auth     Auth
	Sweeper  Sweeper
	Retry    Retry
	SeedFile string     `yaml:"seedFile" envconfig:"SEED_FILE"`
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options are applied on top of it.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config, err := load(ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func load(ops ...Option) (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	for _, op := range ops {
		op(&config)
	}
	switch config.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}
	return &config, nil
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
