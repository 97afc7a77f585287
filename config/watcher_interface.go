package config

// Watcher is the source of live configuration. The server subscribes to it
// to apply reloadable settings such as the log level.
type Watcher interface {
	GetCurrentConfig() *Config
	Subscribe() <-chan *Config
	Close() error
}
