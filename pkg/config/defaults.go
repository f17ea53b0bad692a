package config

import "time"

// Defaults returns the built-in configuration. User YAML values are merged
// on top of these.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			WSWriteTimeout: Duration(10 * time.Second),
		},
		Docker: DockerConfig{
			Image:         "python:3.12-slim",
			ContainerName: "helmsman-executor",
			WorkDir:       "/workspace",
		},
		Memory: MemoryConfig{
			Path: "./data/plans",
		},
		Queue: QueueConfig{
			Workers:        4,
			MaxQueuedTasks: 64,
		},
		Session: SessionConfig{
			MaxStallsBeforeReplan:  3,
			MaxReplans:             3,
			MaxJSONRetries:         3,
			ModelContextTokenLimit: 110000,
			MinSleepSeconds:        1,
			MaxSleepSeconds:        86400,
			RetrieveRelevantPlans:  RetrievePlansOff,
			PerAgentTimeout:        Duration(5 * time.Minute),
			PerLLMTimeout:          Duration(2 * time.Minute),
			Language:               "en",
		},
	}
}
