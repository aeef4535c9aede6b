package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	ServerURL           string        `hcl:"server_url" env:"SERVER_URL" default:"https://liste.mediathekview.de"`
	ListFileName        string        `hcl:"list_file_name" env:"LIST_FILE_NAME" default:"Filmliste-akt.xz"`
	DatabasePath        string        `hcl:"database_path" env:"DATABASE_PATH"`
	BaseDirectory       string        `hcl:"base_directory" env:"BASE_DIRECTORY"`
	SubscriptionsDir    string        `hcl:"subscriptions_dir" env:"SUBSCRIPTIONS_DIR"`
	DownloadConcurrency int           `hcl:"download_concurrency" env:"DOWNLOAD_CONCURRENCY" default:"4"`
	DownloadTimeout     time.Duration `hcl:"download_timeout" env:"DOWNLOAD_TIMEOUT" default:"30m"`
}

var (
	cfg  Config
	once sync.Once
)

// Get loads the configuration exactly once; callers may read it from
// anywhere in any order.
func Get() Config {
	once.Do(func() {
		loader := aconfig.LoaderFor(&cfg, aconfig.Config{
			EnvPrefix: "MEDIATHEK",
			Files:     []string{"./config.hcl", "./config.local.hcl"},
			FileDecoders: map[string]aconfig.FileDecoder{
				".hcl": aconfighcl.New(),
			},
		})

		if err := loader.Load(); err != nil {
			log.Printf("[ERROR] failed to load config: %v", err)
		}

		fillDefaultPaths(&cfg)
	})

	return cfg
}

// fillDefaultPaths resolves the path settings that depend on the user's
// home directory and so cannot be static struct-tag defaults.
func fillDefaultPaths(c *Config) {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("[ERROR] failed to resolve home directory: %v", err)
		return
	}

	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(home, ".local", "share", "mediathekdl", "mediathek.db")
	}
	if c.SubscriptionsDir == "" {
		c.SubscriptionsDir = filepath.Join(home, ".config", "mediathekdl", "subscriptions")
	}
	if c.BaseDirectory == "" {
		c.BaseDirectory = filepath.Join(home, "Downloads", "mediathek")
	}
}
