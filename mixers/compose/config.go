package compose

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HLSDir           string        `mapstructure:"hls_dir"`
	SDPDir           string        `mapstructure:"sdp_dir"`
	ResumeDelay      time.Duration `mapstructure:"resume_delay"`
	ForceKillTimeout time.Duration `mapstructure:"force_kill_timeout"`
}

func Setup(v *viper.Viper, prefix string) {
	p := func(key string) string { return prefix + "." + key }

	v.SetDefault(p("hls_dir"), "/var/lib/sfu/hls")
	v.SetDefault(p("sdp_dir"), "/tmp/sdp")
	v.SetDefault(p("resume_delay"), "2s")
	v.SetDefault(p("force_kill_timeout"), "3s")
}
