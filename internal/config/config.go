package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	PriceHistoryStoreFile     = "file"
	PriceHistoryStorePostgres = "postgres"
)

type Application struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port"`
	Frontend      Frontend      `koanf:"frontend"`
	Cors          Cors          `koanf:"cors"`
	CoinMarketCap CoinMarketCap `koanf:"coinmarketcap"`
	PriceHistory  PriceHistory  `koanf:"pricehistory"`
	Scheduler     Scheduler     `koanf:"scheduler"`
	Database      Database      `koanf:"db"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type CoinMarketCap struct {
	BaseURL    string        `koanf:"baseurl"`
	ApiKey     string        `koanf:"apikey"`
	BitcoinId  int           `koanf:"bitcoinid"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"maxretries"`
	MinBackoff time.Duration `koanf:"minbackoff"`
	MaxBackoff time.Duration `koanf:"maxbackoff"`
}

type PriceHistory struct {
	// Store is either "file" (JSON lines) or "postgres".
	Store string `koanf:"store"`
	File  string `koanf:"file"`
}

type Scheduler struct {
	Enabled bool          `koanf:"enabled"`
	Spec    string        `koanf:"spec"`
	Timeout time.Duration `koanf:"timeout"`
}

type Database struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Pass     string `koanf:"pass"`
	Name     string `koanf:"name"`
	Schema   string `koanf:"schema"`
	MaxConns int32  `koanf:"maxconns"`
}

func Defaults() Application {
	return Application{
		Host: "http://localhost:8181",
		Port: 8181,
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend",
		},
		Cors: Cors{
			AllowedOrigins: []string{"*"},
		},
		CoinMarketCap: CoinMarketCap{
			BaseURL:    "https://pro-api.coinmarketcap.com",
			BitcoinId:  1,
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			MinBackoff: 500 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
		PriceHistory: PriceHistory{
			Store: PriceHistoryStoreFile,
			File:  "data/btc-usd.jsonl",
		},
		Scheduler: Scheduler{
			Enabled: true,
			Spec:    "0 0 1 * *",
			Timeout: time.Minute,
		},
		Database: Database{
			Host:     "localhost",
			Port:     5432,
			User:     "btcrunway",
			Pass:     "",
			Name:     "btcrunway",
			Schema:   "btcrunway",
			MaxConns: 10,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "BTCRUNWAY_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BTCRUNWAY_")), "_", ".")
			if k == "cors.allowedorigins" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
