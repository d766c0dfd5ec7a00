package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"task-dispatch/tasks/runners"
)

// Runner names accepted in RUNNER
const (
	RunnerSequential  = "sequential"
	RunnerPool        = "pool"
	RunnerArrayJob    = "arrayjob"
	RunnerDistributed = "distributed"
	RunnerHTTP        = "http"
)

// Config holds all application configuration
type Config struct {
	ConfigFile      string        `json:"config_file,omitempty"`
	Runner          string        `json:"runner"`
	Job             string        `json:"job"`
	RunID           string        `json:"run_id,omitempty"`
	LogLevel        string        `json:"log_level"`
	Version         string        `json:"version"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// pool and distributed runners
	WorkerCount int `json:"worker_count"`

	// http runner
	ServerPort int `json:"server_port"`

	// distributed runner
	RedisURL        string        `json:"redis_url"`
	QueueName       string        `json:"queue_name"`
	DistributedRole runners.Role  `json:"distributed_role"`
	DequeueTimeout  time.Duration `json:"dequeue_timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Runner:          RunnerArrayJob,
		Job:             "hello",
		LogLevel:        "INFO",
		Version:         "1.0.0",
		ShutdownTimeout: 15 * time.Second,
		WorkerCount:     3,
		ServerPort:      8080,
		RedisURL:        "redis://localhost:6379",
		QueueName:       "task-dispatch",
		DistributedRole: runners.RoleAll,
		DequeueTimeout:  5 * time.Second,
	}
}

// LoadConfig builds the configuration from defaults, then the HCL file named
// by CONFIG_FILE if any, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := getEnvString("CONFIG_FILE", ""); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.Runner = getEnvString("RUNNER", cfg.Runner)
	cfg.Job = getEnvString("JOB", cfg.Job)
	cfg.RunID = getEnvString("RUN_ID", cfg.RunID)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)
	cfg.Version = getEnvString("VERSION", cfg.Version)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.WorkerCount = getEnvInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.ServerPort = getEnvInt("PORT", cfg.ServerPort)
	cfg.RedisURL = getEnvString("REDIS_URL", cfg.RedisURL)
	cfg.QueueName = getEnvString("QUEUE_NAME", cfg.QueueName)
	cfg.DistributedRole = runners.Role(getEnvString("DISTRIBUTED_ROLE", string(cfg.DistributedRole)))
	cfg.DequeueTimeout = getEnvDuration("DEQUEUE_TIMEOUT", cfg.DequeueTimeout)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Jobs splits Job on commas; each name is submitted in turn.
func (c *Config) Jobs() []string {
	var names []string
	for name := range strings.SplitSeq(c.Job, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Address returns the server address in host:port format
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// validate checks and normalizes the configuration
func (c *Config) validate() error {
	c.Runner = strings.ToLower(strings.TrimSpace(c.Runner))
	names := []string{RunnerSequential, RunnerPool, RunnerArrayJob, RunnerDistributed, RunnerHTTP}
	if !slices.Contains(names, c.Runner) {
		return fmt.Errorf("invalid runner '%s': must be one of %s", c.Runner, strings.Join(names, ", "))
	}

	c.Job = strings.TrimSpace(c.Job)
	if len(c.Jobs()) == 0 {
		return fmt.Errorf("job cannot be empty")
	}

	validLevels := map[string]bool{
		"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
	}
	upperLevel := strings.ToUpper(strings.TrimSpace(c.LogLevel))
	if !validLevels[upperLevel] {
		return fmt.Errorf("invalid log level '%s': must be DEBUG, INFO, WARN, or ERROR", c.LogLevel)
	}
	c.LogLevel = upperLevel

	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("version cannot be empty")
	}
	c.Version = strings.TrimSpace(c.Version)

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout)
	}
	if c.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("invalid shutdown timeout %v: must not exceed 5 minutes", c.ShutdownTimeout)
	}

	switch c.Runner {
	case RunnerPool:
		if c.WorkerCount < 1 {
			return fmt.Errorf("worker count must be at least 1 for the pool runner")
		}
	case RunnerHTTP:
		if c.ServerPort < 1 || c.ServerPort > 65535 {
			return fmt.Errorf("invalid server port %d: must be between 1 and 65535", c.ServerPort)
		}
	case RunnerDistributed:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("redis URL cannot be empty for the distributed runner")
		}
		if strings.TrimSpace(c.QueueName) == "" {
			return fmt.Errorf("queue name cannot be empty for the distributed runner")
		}
		c.DistributedRole = runners.Role(strings.ToLower(strings.TrimSpace(string(c.DistributedRole))))
		if !c.DistributedRole.Valid() {
			return fmt.Errorf("invalid distributed role '%s': must be one of %v", c.DistributedRole, runners.Roles)
		}
		if c.DistributedRole.RunsWorkers() && c.WorkerCount < 1 {
			return fmt.Errorf("worker count must be at least 1 when the distributed role runs workers")
		}
		if c.DequeueTimeout < time.Second {
			return fmt.Errorf("invalid dequeue timeout %v: must be at least 1s", c.DequeueTimeout)
		}
		// producer and worker processes derive the same job IDs from it
		if strings.TrimSpace(c.RunID) == "" {
			c.RunID = c.QueueName
		}
	}

	return nil
}
