package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the tunable billing knobs. It is reloaded at
// runtime when the config file changes.
type BillingConfig struct {
	DueDays          int    `mapstructure:"dueDays"`
	Currency         string `mapstructure:"currency"`
	OverdueSweepHour int    `mapstructure:"overdueSweepHour"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DueDays:          10,
		Currency:         "USD",
		OverdueSweepHour: 2,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/support-center/config")
	v.AddConfigPath("/etc/support-center")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SUPPORT_CENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.dueDays", defaults.DueDays)
	v.SetDefault("billing.currency", defaults.Currency)
	v.SetDefault("billing.overdueSweepHour", defaults.OverdueSweepHour)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

// NewStaticBillingConfigHolder returns a holder pinned to cfg. Tests use
// it to avoid touching the filesystem.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DueDays < 0 {
		return errors.New("billing.dueDays cannot be negative")
	}
	if cfg.Currency == "" {
		return errors.New("billing.currency cannot be empty")
	}
	if cfg.OverdueSweepHour < 0 || cfg.OverdueSweepHour > 23 {
		return errors.New("billing.overdueSweepHour must be between 0 and 23")
	}
	return nil
}
