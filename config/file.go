package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"task-dispatch/tasks/runners"
)

// fileConfig mirrors the HCL config file. Every field is optional; unset
// fields leave the current value alone.
//
//	runner = "distributed"
//	job    = "hello,second"
//	run_id = "nightly-42"
//
//	pool {
//	  workers = 4
//	}
//
//	redis {
//	  url   = "redis://${env.REDIS_HOST}:6379"
//	  queue = "arrays"
//	  role  = "worker"
//	}
type fileConfig struct {
	Runner          *string     `hcl:"runner,optional"`
	Job             *string     `hcl:"job,optional"`
	RunID           *string     `hcl:"run_id,optional"`
	LogLevel        *string     `hcl:"log_level,optional"`
	Version         *string     `hcl:"version,optional"`
	ShutdownTimeout *string     `hcl:"shutdown_timeout,optional"`
	Pool            *poolBlock  `hcl:"pool,block"`
	HTTP            *httpBlock  `hcl:"http,block"`
	Redis           *redisBlock `hcl:"redis,block"`
}

type poolBlock struct {
	Workers *int `hcl:"workers,optional"`
}

type httpBlock struct {
	Port *int `hcl:"port,optional"`
}

type redisBlock struct {
	URL            *string `hcl:"url,optional"`
	Queue          *string `hcl:"queue,optional"`
	Role           *string `hcl:"role,optional"`
	DequeueTimeout *string `hcl:"dequeue_timeout,optional"`
}

// LoadFile parses the HCL file at path and applies it onto cfg.
func LoadFile(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %s", path, diags.Error())
	}
	return decodeBody(path, file.Body, cfg)
}

// loadSource is LoadFile for in-memory sources.
func loadSource(src []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %s", filename, diags.Error())
	}
	return decodeBody(filename, file.Body, cfg)
}

func decodeBody(filename string, body hcl.Body, cfg *Config) error {
	var fc fileConfig
	if diags := gohcl.DecodeBody(body, evalContext(), &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %s", filename, diags.Error())
	}
	return fc.apply(cfg)
}

// evalContext exposes the process environment as the object variable env.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func (fc *fileConfig) apply(cfg *Config) error {
	setString(&cfg.Runner, fc.Runner)
	setString(&cfg.Job, fc.Job)
	setString(&cfg.RunID, fc.RunID)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Version, fc.Version)
	if err := setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout, "shutdown_timeout"); err != nil {
		return err
	}

	if fc.Pool != nil && fc.Pool.Workers != nil {
		cfg.WorkerCount = *fc.Pool.Workers
	}
	if fc.HTTP != nil && fc.HTTP.Port != nil {
		cfg.ServerPort = *fc.HTTP.Port
	}
	if fc.Redis != nil {
		setString(&cfg.RedisURL, fc.Redis.URL)
		setString(&cfg.QueueName, fc.Redis.Queue)
		if fc.Redis.Role != nil {
			cfg.DistributedRole = runners.Role(*fc.Redis.Role)
		}
		if err := setDuration(&cfg.DequeueTimeout, fc.Redis.DequeueTimeout, "redis.dequeue_timeout"); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	*dst = d
	return nil
}
