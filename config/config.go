package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/xor-shift/prng/util/rng"
)

type Config struct {
	Seed0 uint64 `mapstructure:"PRNG_SEED0"`
	Seed1 uint64 `mapstructure:"PRNG_SEED1"`

	HTTPPort     uint16 `mapstructure:"PRNG_HTTP_PORT"`
	StreamName   string `mapstructure:"PRNG_STREAM_NAME"`
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"PRNG_AMQP_EXCHANGE"`

	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBAddress  string `mapstructure:"DB_ADDRESS"`
	DBName     string `mapstructure:"DB_NAME"`
}

func Default() Config {
	return Config{
		Seed0:        rng.DefaultSeed[0],
		Seed1:        rng.DefaultSeed[1],
		HTTPPort:     8080,
		StreamName:   "default",
		AMQPExchange: "prng_samples",
	}
}

// Decode overlays the recognised keys of env onto Default. Numbers may be
// given in decimal or with a 0x prefix.
func Decode(env map[string]string) (Config, error) {
	cfg := Default()

	input := map[string]interface{}{}
	for k, v := range env {
		if v == "" {
			continue
		}
		input[k] = strings.TrimSpace(v)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}

	if err = decoder.Decode(input); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Seed0 == 0 && cfg.Seed1 == 0 {
		return cfg, fmt.Errorf("PRNG_SEED0/PRNG_SEED1: %w", rng.ErrZeroState)
	}

	return cfg, nil
}

// Load reads the given dotenv files (".env" if none) into the process
// environment, then decodes the environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading dotenv %q: %w", file, err)
		}
	}

	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return Decode(env)
}

// ReadFile decodes a dotenv file without touching the process environment.
func ReadFile(file string) (Config, error) {
	env, err := godotenv.Read(file)
	if err != nil {
		return Config{}, err
	}

	return Decode(env)
}

func (cfg Config) Seed() (uint64, uint64) {
	return cfg.Seed0, cfg.Seed1
}

func (cfg Config) NewGenerator() (*rng.Xoroshiro128PState, error) {
	return rng.NewXoroshiro128P(cfg.Seed0, cfg.Seed1)
}

func (cfg Config) HasDB() bool {
	return cfg.DBAddress != ""
}

func (cfg Config) HasAMQP() bool {
	return cfg.AMQPURL != ""
}

func (cfg Config) MySQL() mysql.Config {
	return mysql.Config{
		User:                 cfg.DBUser,
		Passwd:               cfg.DBPassword,
		Addr:                 cfg.DBAddress,
		DBName:               cfg.DBName,
		Collation:            "utf8mb4_general_ci",
		Net:                  "tcp",
		AllowNativePasswords: true,
	}
}
