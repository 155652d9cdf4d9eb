package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string `json:"addr"`
	DatabaseDriver      string `json:"databaseDriver"`
	DatabaseDSN         string `json:"databaseDSN"`
	SessionLifetimeHour int    `json:"sessionLifetimeHours"`
	ProductSeedPath     string `json:"productSeedPath"`
	ProductSeedCharset  string `json:"productSeedCharset"`
}

var (
	cfg = Defaults()
	mu  sync.RWMutex
)

// ConfigFilePath は LoadConfig の前に変更できます (CLI の --config)。
var ConfigFilePath = "./shopfront_config.json"

func Defaults() Config {
	return Config{
		Addr:                ":8080",
		DatabaseDriver:      "sqlite3",
		DatabaseDSN:         "./shopfront.db",
		SessionLifetimeHour: 24,
		ProductSeedPath:     "./seed/products.csv",
	}
}

// LoadConfig は設定ファイルを読み込み、.env と環境変数で上書きします。
// ファイルがなければデフォルト値を使います。
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	loaded := Defaults()
	file, err := os.ReadFile(ConfigFilePath)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := json.Unmarshal(file, &loaded); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: Failed to read .env: %v", err)
	}
	applyEnv(&loaded)
	applyDefaults(&loaded)

	cfg = loaded
	return cfg, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("SHOPFRONT_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("SHOPFRONT_DB_DRIVER"); v != "" {
		c.DatabaseDriver = v
	}
	if v := os.Getenv("SHOPFRONT_DB_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("SHOPFRONT_SESSION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			c.SessionLifetimeHour = hours
		} else {
			log.Printf("WARN: ignoring SHOPFRONT_SESSION_HOURS=%q: %v", v, err)
		}
	}
}

func applyDefaults(c *Config) {
	d := Defaults()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = d.DatabaseDriver
	}
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = d.DatabaseDSN
	}
	if c.SessionLifetimeHour <= 0 {
		c.SessionLifetimeHour = d.SessionLifetimeHour
	}
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(ConfigFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

// SetConfig はファイルに書かずにメモリ上の設定だけを置き換えます。
func SetConfig(c Config) {
	mu.Lock()
	defer mu.Unlock()
	applyDefaults(&c)
	cfg = c
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}
