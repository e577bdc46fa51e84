package internal

// Option configures the Lectern application before Run starts it.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the configuration Run requires. The CLI loads
// it from the config file; tests build it directly.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
