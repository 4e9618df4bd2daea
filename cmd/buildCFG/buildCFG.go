package buildCFG

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"neksa/internal/mailer"
)

type ServerConfig struct {
	Port       string
	AdminToken string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	token := cfg.GetString("server.admin_token")
	if token == "" {
		log.Warn().Msg("server.admin_token not set: admin routes will reject every request")
	}
	return ServerConfig{Port: port, AdminToken: token}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("db.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("db.master_dsn is required")
	}

	slaveDSNs := cfg.GetStringSlice("db.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns: cfg.GetInt("db.max_open_conns"),
		MaxIdleConns: cfg.GetInt("db.max_idle_conns"),
	}
	log.Info().Int("slaves", len(slaveDSNs)).Msg("database config assembled")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url is required")
	}
	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "registrations"
	}
	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "registration-events"
	}
	return RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) mailer.Config {
	mc := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetString("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
	if mc.Host == "" {
		mc.Host = "smtp.gmail.com"
	}
	if mc.Port == "" {
		mc.Port = "587"
	}
	if mc.From == "" {
		log.Warn().Msg("smtp.from not set: notification mail will fail")
	}
	return mc
}
