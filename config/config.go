package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration holds the static settings needed to run the server,
// loaded from config/env/<GO_ENV>.env and the process environment.
type Configuration struct {
	InitMode  bool   `env:"INITMODE" envDefault:"false"` // seed default data and exit
	Address   string `env:"ADDRESS" envDefault:":8080"`
	JwtSecret string `env:"JWT_SECRET,required"`

	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`

	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"` // comma separated, * = all
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`

	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"` // max requests per window, 0 disables
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"` // seconds
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// Rendering defaults. RenderMaxDepth caps how many levels of object
	// references the render engine resolves.
	RenderMaxDepth int `env:"RENDER_MAX_DEPTH" envDefault:"3"`

	// TLS/HTTPS
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"`
	TLSCertFile string `env:"TLS_CERT_FILE"` // .crt or .pem
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// getEnvPath returns the env file path for the current GO_ENV, walking
// up from the working directory to find the config/env directory.
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// fmt here because the logger may not be initialized yet.
		fmt.Printf("could not determine working directory: %v\n", err)
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig loads the configuration from the environment file. Returns
// nil when the file is missing or a required variable is unset.
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		fmt.Printf("config/env directory not found\n")
		return nil
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Printf("could not load env file at %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("failed to parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
