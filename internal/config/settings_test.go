package config

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewSettingsHolderDefaults(t *testing.T) {
	holder, err := NewSettingsHolder(zap.NewNop())
	if err != nil {
		t.Fatalf("new settings holder: %v", err)
	}

	got := holder.Get()
	want := DefaultSettings()
	if got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestStaticSettingsHolder(t *testing.T) {
	cfg := Settings{StrictTransitions: true, Currency: "EUR", ReceiptFooter: "Danke"}
	holder := NewStaticSettingsHolder(cfg)
	if got := holder.Get(); got != cfg {
		t.Errorf("settings = %+v, want %+v", got, cfg)
	}
}
