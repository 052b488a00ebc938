// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"extend-lobby-server" envDocs:"service name reported to the tracer"`
	HTTPPort    int    `env:"HTTP_PORT"    envDefault:"6060"                envDocs:"port serving bridge and client websockets and /metrics"`
	GRPCPort    int    `env:"GRPC_PORT"    envDefault:"6565"                envDocs:"port serving the grpc health service"`

	LogLevel          string `env:"LOG_LEVEL"             envDefault:"info" envDocs:"logrus level"`
	LogFormat         string `env:"LOG_FORMAT"            envDefault:"text" envDocs:"text or json"`
	LogFile           string `env:"LOG_FILE"              envDefault:""     envDocs:"when set, logs are also written to this rotating file"`
	LogFileMaxSizeMB  int    `env:"LOG_FILE_MAX_SIZE_MB"  envDefault:"100"  envDocs:"size in megabytes before the log file is rotated"`
	LogFileMaxBackups int    `env:"LOG_FILE_MAX_BACKUPS"  envDefault:"5"    envDocs:"number of rotated log files kept"`
	LogFileMaxAgeDays int    `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"14"   envDocs:"days a rotated log file is kept"`

	ZipkinCollectorURL string `env:"ZIPKIN_COLLECTOR_URL" envDefault:"" envDocs:"zipkin endpoint, spans are not exported when empty"`

	RedisAddr        string        `env:"REDIS_ADDR"         envDefault:""     envDocs:"redis address for accounts and game history, in-memory store when empty"`
	RedisPassword    string        `env:"REDIS_PASSWORD"     envDefault:""     envDocs:"redis password"`
	RedisDB          int           `env:"REDIS_DB"           envDefault:"0"    envDocs:"redis database index"`
	AccountCacheTTL  time.Duration `env:"ACCOUNT_CACHE_TTL"  envDefault:"30s"  envDocs:"how long an account read from the store is served from memory"`
	GameHistoryLimit int64         `env:"GAME_HISTORY_LIMIT" envDefault:"1000" envDocs:"number of game reports kept in redis"`

	WorkerPoolSize int `env:"WORKER_POOL_SIZE" envDefault:"64" envDocs:"goroutines available for asynchronous game work"`
	GroupMaxSize   int `env:"GROUP_MAX_SIZE"   envDefault:"4"  envDocs:"players allowed in one group"`

	StatusInterval time.Duration `env:"STATUS_INTERVAL" envDefault:"10s" envDocs:"time between two lobby status reports"`

	MatchAbandoningPenalty bool          `env:"MATCH_ABANDONING_PENALTY" envDefault:"true" envDocs:"apply queue penalties to players leaving a found match"`
	ReconnectGracePeriod   time.Duration `env:"RECONNECT_GRACE_PERIOD"   envDefault:"5m"   envDocs:"how long a disconnected session can be resumed"`
	ResultsDelay           time.Duration `env:"RESULTS_DELAY"            envDefault:"5s"   envDocs:"wait before match results are sent to players"`
	ShutdownDelay          time.Duration `env:"SHUTDOWN_DELAY"           envDefault:"60s"  envDocs:"wait after a game stopped before the game server is told to shut down"`
	StopGracePeriod        time.Duration `env:"STOP_GRACE_PERIOD"        envDefault:"60s"  envDocs:"window after a game stopped in which leaving still counts as abandoning"`
	CharacterSelectTimeout time.Duration `env:"CHARACTER_SELECT_TIMEOUT" envDefault:"30s"  envDocs:"time players get to resolve duplicate freelancer picks"`

	QueuesConfig string `env:"QUEUES_CONFIG" envDefault:"" envDocs:"json list of matchmaking queues, a single PvP 4v4 queue when empty"`

	Matchmaking MatchmakingConfig
}

// MatchmakingConfig holds the ranked matchmaker limits and score weights.
type MatchmakingConfig struct {
	Interval                       time.Duration `env:"MATCHMAKING_INTERVAL"               envDefault:"5s"   envDocs:"time between two matchmaking scans"`
	MaxTeamEloDifferenceStart      int           `env:"MAX_TEAM_ELO_DIFFERENCE_START"      envDefault:"20"   envDocs:"allowed team elo gap for groups that just queued"`
	MaxTeamEloDifference           int           `env:"MAX_TEAM_ELO_DIFFERENCE"            envDefault:"200"  envDocs:"allowed team elo gap once the reference wait time is reached"`
	MaxTeamEloDifferenceWaitTime   time.Duration `env:"MAX_TEAM_ELO_DIFFERENCE_WAIT_TIME"  envDefault:"5m"   envDocs:"wait time at which the team elo gap reaches its maximum"`
	TeamEloDifferenceWeight        float64       `env:"TEAM_ELO_DIFFERENCE_WEIGHT"         envDefault:"1"    envDocs:"score weight of the team elo difference factor"`
	TeammateEloDifferenceWeight    float64       `env:"TEAMMATE_ELO_DIFFERENCE_WEIGHT"     envDefault:"0.2"  envDocs:"score weight of the teammate elo spread factor"`
	TeammateEloDifferenceWeightCap float64       `env:"TEAMMATE_ELO_DIFFERENCE_WEIGHT_CAP" envDefault:"500"  envDocs:"elo spread at which the teammate factor bottoms out"`
	WaitingTimeWeight              float64       `env:"WAITING_TIME_WEIGHT"                envDefault:"2"    envDocs:"score weight of the queue time factor"`
	WaitingTimeWeightCap           time.Duration `env:"WAITING_TIME_WEIGHT_CAP"            envDefault:"10m"  envDocs:"queue time at which the queue time factor saturates"`
	TeamCompositionWeight          float64       `env:"TEAM_COMPOSITION_WEIGHT"            envDefault:"0.3"  envDocs:"score weight of the team role composition factor"`
	TeamBlockWeight                float64       `env:"TEAM_BLOCK_WEIGHT"                  envDefault:"0.5"  envDocs:"score weight of the blocked teammates factor"`
	TeamConfidenceBalanceWeight    float64       `env:"TEAM_CONFIDENCE_BALANCE_WEIGHT"     envDefault:"0.2"  envDocs:"score weight of the elo confidence balance factor"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse environment variables: %w", err)
	}
	if err := env.Parse(&cfg.Matchmaking); err != nil {
		return nil, fmt.Errorf("unable to parse matchmaking environment variables: %w", err)
	}
	return cfg, nil
}
