package config

// QuotaConfig bounds how many calls one API key may make per UTC day.
type QuotaConfig struct {
	MaxPerDay int `env:"API_MAX" envDefault:"100"`
}

func NewQuotaConfig(maxPerDay int) *QuotaConfig {
	return &QuotaConfig{MaxPerDay: maxPerDay}
}
