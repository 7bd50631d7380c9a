// Package config holds the device configuration: pin assignment, the
// fixed scheduling delays, access-point credentials and the power-on
// pulse parameters. Values are JSON with defaults applied for anything
// missing, so a partial config stays valid.
package config

import (
	"encoding/json"
	"time"
)

// Config is the top-level device configuration.
type Config struct {
	Pins   PinConfig    `json:"pins"`
	Timing TimingConfig `json:"timing"`
	Wifi   WifiConfig   `json:"wifi"`
	Pulse  PulseConfig  `json:"pulse"`
}

// PinConfig assigns the three hardware pins.
type PinConfig struct {
	Button   uint8 `json:"button"`   // falling-edge trigger input, pulled up
	Positive uint8 `json:"positive"` // output channel idling low
	Negative uint8 `json:"negative"` // output channel idling high
}

// TimingConfig names the fixed delays around an emission, in
// milliseconds.
type TimingConfig struct {
	PreTriggerMS uint32 `json:"pre_trigger_ms"`
	SettleMS     uint32 `json:"settle_ms"`
	CooldownMS   uint32 `json:"cooldown_ms"`
}

// PreTrigger returns the pre-trigger delay as a duration.
func (t TimingConfig) PreTrigger() time.Duration {
	return time.Duration(t.PreTriggerMS) * time.Millisecond
}

// Settle returns the buffer-settle delay as a duration.
func (t TimingConfig) Settle() time.Duration {
	return time.Duration(t.SettleMS) * time.Millisecond
}

// Cooldown returns the post-trigger cooldown as a duration.
func (t TimingConfig) Cooldown() time.Duration {
	return time.Duration(t.CooldownMS) * time.Millisecond
}

// WifiConfig holds the access-point parameters.
type WifiConfig struct {
	SSID       string `json:"ssid"`
	Passphrase string `json:"passphrase"`
}

// PulseConfig holds the power-on pulse parameters in microseconds.
type PulseConfig struct {
	P1HighUS uint32 `json:"p1_high_us"`
	P1LowUS  uint32 `json:"p1_low_us"`
	P2HighUS uint32 `json:"p2_high_us"`
	P2LowUS  uint32 `json:"p2_low_us"`
}

// Load parses a JSON configuration and applies defaults for missing
// values.
func Load(jsonData []byte) (*Config, error) {
	var config Config

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

// Default returns the compiled-in configuration.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values.
func applyDefaults(config *Config) {
	if config.Pins.Positive == 0 {
		config.Pins.Positive = 7
	}
	if config.Pins.Negative == 0 {
		config.Pins.Negative = 8
	}
	if config.Pins.Button == 0 {
		config.Pins.Button = 2
	}

	if config.Timing.PreTriggerMS == 0 {
		config.Timing.PreTriggerMS = 1000
	}
	if config.Timing.SettleMS == 0 {
		config.Timing.SettleMS = 500
	}
	if config.Timing.CooldownMS == 0 {
		config.Timing.CooldownMS = 200
	}

	if config.Wifi.SSID == "" {
		config.Wifi.SSID = "dpt_test"
	}
	if config.Wifi.Passphrase == "" {
		config.Wifi.Passphrase = "12345678"
	}

	if config.Pulse.P1HighUS == 0 {
		config.Pulse.P1HighUS = 5
	}
	if config.Pulse.P1LowUS == 0 {
		config.Pulse.P1LowUS = 1
	}
	if config.Pulse.P2HighUS == 0 {
		config.Pulse.P2HighUS = 3
	}
	if config.Pulse.P2LowUS == 0 {
		config.Pulse.P2LowUS = 10000
	}
}
