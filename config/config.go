package config

import (
	"github.com/namsral/flag"
)

type Config struct {
	BindAddr         string
	DBConnURI        string
	DBMigrationsPath string
	SecretKey        string
	LogLevel         string

	MaxBatchEnqueue int
	MaxSessionSize  int
}

// Load reads configuration from flags or matching environment variables
// (BIND_ADDR, DB_CONN_URI, and so on).
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("reviewserver", flag.ContinueOnError)

	fs.StringVar(&c.BindAddr, "bind-addr", ":8280", "address to listen on")
	fs.StringVar(&c.DBConnURI, "db-conn-uri", "", "postgres connection URI")
	fs.StringVar(&c.DBMigrationsPath, "db-migrations-path", "file://db/migrations", "migrations source URL")
	fs.StringVar(&c.SecretKey, "secret-key", "", "JWT signing secret")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level")

	fs.IntVar(&c.MaxBatchEnqueue, "max-batch-enqueue", 500, "max questions per batch enqueue")
	fs.IntVar(&c.MaxSessionSize, "max-session-size", 100, "max items in a review session")

	err := fs.Parse(args)
	return err
}
