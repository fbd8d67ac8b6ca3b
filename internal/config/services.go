package config

type Redis struct {
	Address     string `env:"REDIS_ADDRESS"`
	Username    string `env:"REDIS_USERNAME"`
	Password    string `env:"REDIS_PASSWORD" json:"-"`
	DB          int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int    `env:"REDIS_POOL_SIZE" envDefault:"4"`
	SnapshotKey string `env:"REDIS_SNAPSHOT_KEY" envDefault:"dealve:result-cache"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}

type Bot struct {
	Token  string `env:"BOT_TOKEN" json:"-"`
	ChatID int64  `env:"BOT_CHAT_ID" validate:"required_with=Token"`
}

func (b Bot) Enabled() bool {
	return b.Token != ""
}

// Servers lists optional listeners; an empty address disables one.
type Servers struct {
	StatusAddress  string `env:"STATUS_LISTEN_ADDRESS"`
	MetricsAddress string `env:"METRICS_LISTEN_ADDRESS"`
	ProbeAddress   string `env:"PROBE_LISTEN_ADDRESS"`
}

type Log struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	File        string `env:"LOG_FILE"`
	FieldMaxLen int    `env:"LOG_FIELD_MAX_LEN" envDefault:"2048"`
}
