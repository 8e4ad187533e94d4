package config

import (
	"reflect"
	"testing"
)

func TestMissingKeysStableOrder(t *testing.T) {
	cfg := &Config{}
	want := []string{"SOLSCAN_API_KEY", "BIRDEYE_API_KEY", "OPENAI_API_KEY", "TWITTER_BEARER_TOKEN"}
	for i := 0; i < 5; i++ {
		if got := cfg.MissingKeys(); !reflect.DeepEqual(got, want) {
			t.Fatalf("MissingKeys() = %v, want %v", got, want)
		}
	}
}

func TestConfiguredKeys(t *testing.T) {
	cfg := &Config{OpenAIAPIKey: "sk-test", SolscanAPIKey: "abc"}

	configured := cfg.ConfiguredKeys()
	want := []string{"SOLSCAN_API_KEY", "OPENAI_API_KEY"}
	if !reflect.DeepEqual(configured, want) {
		t.Errorf("ConfiguredKeys() = %v, want %v", configured, want)
	}

	missing := cfg.MissingKeys()
	if len(missing) != 2 {
		t.Errorf("MissingKeys() = %v, want 2 entries", missing)
	}
	if cfg.AllConfigured() {
		t.Error("AllConfigured() = true with 2 keys missing")
	}
}

func TestKeyListsNeverNil(t *testing.T) {
	// JSON-encoded nil slices render as null; the dashboard expects arrays.
	empty := &Config{}
	if empty.ConfiguredKeys() == nil {
		t.Error("ConfiguredKeys() returned nil")
	}
	full := &Config{
		SolscanAPIKey:      "a",
		BirdeyeAPIKey:      "b",
		OpenAIAPIKey:       "c",
		TwitterBearerToken: "d",
	}
	if full.MissingKeys() == nil {
		t.Error("MissingKeys() returned nil")
	}
	if !full.AllConfigured() {
		t.Error("AllConfigured() = false with every key set")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err == nil {
		t.Error("Validate() = nil with zero credentials")
	}
	if err := (&Config{BirdeyeAPIKey: "x"}).Validate(); err != nil {
		t.Errorf("Validate() = %v with one credential", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MEME_PULSE_TEST_STR", "hello")
	t.Setenv("MEME_PULSE_TEST_INT", "42")
	t.Setenv("MEME_PULSE_TEST_BAD", "not-a-number")

	if got := envOr("MEME_PULSE_TEST_STR", "fallback"); got != "hello" {
		t.Errorf("envOr = %q", got)
	}
	if got := envOr("MEME_PULSE_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("envOr = %q", got)
	}
	if got := envInt("MEME_PULSE_TEST_INT", 7); got != 42 {
		t.Errorf("envInt = %d", got)
	}
	if got := envInt("MEME_PULSE_TEST_BAD", 7); got != 7 {
		t.Errorf("envInt = %d for unparseable value", got)
	}
}
