package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Pins.Positive != 7 || cfg.Pins.Negative != 8 || cfg.Pins.Button != 2 {
		t.Errorf("unexpected default pins: %+v", cfg.Pins)
	}
	if cfg.Timing.PreTrigger() != time.Second {
		t.Errorf("pre-trigger = %v, expected 1s", cfg.Timing.PreTrigger())
	}
	if cfg.Timing.Settle() != 500*time.Millisecond {
		t.Errorf("settle = %v, expected 500ms", cfg.Timing.Settle())
	}
	if cfg.Timing.CooldownMS != 200 {
		t.Errorf("cooldown = %dms, expected 200", cfg.Timing.CooldownMS)
	}
	if cfg.Wifi.SSID != "dpt_test" {
		t.Errorf("ssid = %q, expected dpt_test", cfg.Wifi.SSID)
	}
	if cfg.Pulse.P2LowUS != 10000 {
		t.Errorf("p2_low = %d, expected 10000", cfg.Pulse.P2LowUS)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	jsonData := []byte(`{
		"pins": {"positive": 10, "negative": 11},
		"timing": {"cooldown_ms": 50},
		"wifi": {"ssid": "bench_dpt"}
	}`)

	cfg, err := Load(jsonData)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Pins.Positive != 10 || cfg.Pins.Negative != 11 {
		t.Errorf("configured pins not applied: %+v", cfg.Pins)
	}
	if cfg.Pins.Button != 2 {
		t.Errorf("button pin default not applied: %d", cfg.Pins.Button)
	}
	if cfg.Timing.CooldownMS != 50 {
		t.Errorf("cooldown = %d, expected 50", cfg.Timing.CooldownMS)
	}
	if cfg.Timing.PreTriggerMS != 1000 {
		t.Errorf("pre-trigger default not applied: %d", cfg.Timing.PreTriggerMS)
	}
	if cfg.Wifi.SSID != "bench_dpt" {
		t.Errorf("ssid = %q, expected bench_dpt", cfg.Wifi.SSID)
	}
	if cfg.Wifi.Passphrase != "12345678" {
		t.Errorf("passphrase default not applied: %q", cfg.Wifi.Passphrase)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load([]byte(`{"pins":`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
