package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled      bool
	FailureLimit int
	Cooldown     time.Duration
	ProbeLimit   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:      true,
		FailureLimit: 5,
		Cooldown:     15 * time.Second,
		ProbeLimit:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureLimit < 1 {
		cfg.FailureLimit = defaults.FailureLimit
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if cfg.ProbeLimit < 1 {
		cfg.ProbeLimit = defaults.ProbeLimit
	}
	return cfg
}
