// Package config loads and validates the helmsman.yaml configuration:
// server settings, model endpoints, infrastructure toggles, and the
// per-session orchestration defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/helmsman-ai/helmsman/pkg/llm"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the umbrella configuration object returned by Load.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Model    llm.Config     `yaml:"model"`
	Database DatabaseConfig `yaml:"database"`
	Docker   DockerConfig   `yaml:"docker"`
	Memory   MemoryConfig   `yaml:"memory"`
	Queue    QueueConfig    `yaml:"queue"`
	Session  SessionConfig  `yaml:"session"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	AllowedWSOrigins []string `yaml:"allowed_ws_origins"`
	WSWriteTimeout   Duration `yaml:"ws_write_timeout"`
}

// DatabaseConfig holds the optional Postgres checkpoint store settings.
// When disabled, sentinel state lives only in memory.
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// DockerConfig holds the code-executor container settings.
type DockerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Image         string `yaml:"image"`
	ContainerName string `yaml:"container_name"`
	WorkDir       string `yaml:"work_dir"`
}

// MemoryConfig holds the plan memory (vector store) settings.
type MemoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// QueueConfig holds the session worker pool settings.
type QueueConfig struct {
	Workers        int `yaml:"workers"`
	MaxQueuedTasks int `yaml:"max_queued_tasks"`
}

// Plan memory retrieval modes.
const (
	RetrievePlansOff   = "off"
	RetrievePlansReuse = "reuse"
	RetrievePlansHint  = "hint"
)

// SessionConfig carries the per-session orchestration options. Values here
// are server-wide defaults; API callers may override them per session.
// Default-true booleans are pointers so an explicit false survives merging.
type SessionConfig struct {
	CooperativePlanning *bool `yaml:"cooperative_planning"`
	AutonomousExecution bool  `yaml:"autonomous_execution"`
	AllowFollowUpInput  *bool `yaml:"allow_follow_up_input"`

	AllowedWebsites []string `yaml:"allowed_websites"`

	MaxStallsBeforeReplan int `yaml:"max_stalls_before_replan"`
	MaxReplans            int `yaml:"max_replans"`
	MaxJSONRetries        int `yaml:"max_json_retries"`

	ModelContextTokenLimit int `yaml:"model_context_token_limit"`

	SentinelTasksEnabled bool `yaml:"sentinel_tasks_enabled"`
	MinSleepSeconds      int  `yaml:"min_sleep_seconds"`
	MaxSleepSeconds      int  `yaml:"max_sleep_seconds"`

	RetrieveRelevantPlans string `yaml:"retrieve_relevant_plans"`
	MemoryControllerKey   string `yaml:"memory_controller_key"`

	FinalAnswerPrompt string `yaml:"final_answer_prompt"`

	PerAgentTimeout Duration `yaml:"per_agent_timeout"`
	PerLLMTimeout   Duration `yaml:"per_llm_timeout"`

	Language string `yaml:"language"`
}

// CooperativePlanningEnabled resolves the pointer with its default (true).
func (s *SessionConfig) CooperativePlanningEnabled() bool {
	return s.CooperativePlanning == nil || *s.CooperativePlanning
}

// FollowUpInputAllowed resolves the pointer with its default (true).
func (s *SessionConfig) FollowUpInputAllowed() bool {
	return s.AllowFollowUpInput == nil || *s.AllowFollowUpInput
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Model.Model == "" {
		return fmt.Errorf("%w: model.model is required", ErrInvalidConfig)
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("%w: database.url is required when database.enabled", ErrInvalidConfig)
	}
	if c.Docker.Enabled && c.Docker.Image == "" {
		return fmt.Errorf("%w: docker.image is required when docker.enabled", ErrInvalidConfig)
	}
	if c.Queue.Workers <= 0 {
		return fmt.Errorf("%w: queue.workers must be positive", ErrInvalidConfig)
	}
	return c.Session.Validate()
}

// Validate checks the session option block.
func (s *SessionConfig) Validate() error {
	switch s.RetrieveRelevantPlans {
	case RetrievePlansOff, RetrievePlansReuse, RetrievePlansHint:
	default:
		return fmt.Errorf("%w: retrieve_relevant_plans %q (want off, reuse, or hint)", ErrInvalidConfig, s.RetrieveRelevantPlans)
	}
	if s.Language != "en" && s.Language != "zh" {
		return fmt.Errorf("%w: language %q (want en or zh)", ErrInvalidConfig, s.Language)
	}
	if s.MaxStallsBeforeReplan <= 0 {
		return fmt.Errorf("%w: max_stalls_before_replan must be positive", ErrInvalidConfig)
	}
	if s.MaxReplans < 0 {
		return fmt.Errorf("%w: max_replans must not be negative", ErrInvalidConfig)
	}
	if s.MaxJSONRetries <= 0 {
		return fmt.Errorf("%w: max_json_retries must be positive", ErrInvalidConfig)
	}
	if s.MinSleepSeconds < 0 {
		return fmt.Errorf("%w: min_sleep_seconds must not be negative", ErrInvalidConfig)
	}
	if s.MaxSleepSeconds < s.MinSleepSeconds {
		return fmt.Errorf("%w: max_sleep_seconds %d below min_sleep_seconds %d", ErrInvalidConfig, s.MaxSleepSeconds, s.MinSleepSeconds)
	}
	return nil
}
