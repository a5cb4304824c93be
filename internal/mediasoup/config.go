package mediasoup

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL             string        `mapstructure:"base_url"`
	HealthInterval      time.Duration `mapstructure:"health_interval"`
	HealthMaxFailures   int           `mapstructure:"health_max_failures"`
	ShutdownGraceOnDown time.Duration `mapstructure:"shutdown_grace_on_down"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("base_url"), "http://127.0.0.1:3500")
	v.SetDefault(p("health_interval"), "5s")
	v.SetDefault(p("health_max_failures"), 3)
	v.SetDefault(p("shutdown_grace_on_down"), "2s")
}
