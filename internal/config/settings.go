package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are the POS runtime knobs an operator may tune without a restart.
type Settings struct {
	// StrictTransitions enables the guarded status workflow. The permissive
	// default allows any known status to be set directly, which existing
	// front-of-house clients depend on.
	StrictTransitions bool   `mapstructure:"strictTransitions"`
	Currency          string `mapstructure:"currency"`
	ReceiptFooter     string `mapstructure:"receiptFooter"`
}

func DefaultSettings() Settings {
	return Settings{
		StrictTransitions: false,
		Currency:          "USD",
		ReceiptFooter:     "Thank you for dining with us",
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func NewSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	log = log.Named("pos.settings")

	v := viper.New()

	v.SetConfigName("pos")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/expediter")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EXPEDITER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSettings()
		v.SetDefault("pos.strictTransitions", defaults.StrictTransitions)
		v.SetDefault("pos.currency", defaults.Currency)
		v.SetDefault("pos.receiptFooter", defaults.ReceiptFooter)
	}

	var cfg Settings
	if err := v.UnmarshalKey("pos", &cfg); err != nil {
		return nil, err
	}
	if err := validateSettings(cfg); err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Settings
		if err := v.UnmarshalKey("pos", &updated); err != nil {
			log.Warn("settings reload failed", zap.Error(err))
			return
		}
		if err := validateSettings(updated); err != nil {
			log.Warn("invalid settings ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticSettingsHolder returns a holder pinned to the given settings.
// Used by tests and by callers that do not want file watching.
func NewStaticSettingsHolder(cfg Settings) *SettingsHolder {
	holder := &SettingsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func validateSettings(cfg Settings) error {
	if strings.TrimSpace(cfg.Currency) == "" {
		return errors.New("pos.currency cannot be empty")
	}
	return nil
}
