package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Address            string
		DebugAddress       string
		SessionCookie      string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	EmailConfig struct {
		DefaultFrom     mail.Address
		SendgridApiKey  string
		AlertRecipients []string // used when no active teacher can be found
	}

	OfflineConfig struct {
		DataDir        string
		APIBaseURL     string
		RequestTimeout time.Duration
		CheckInterval  time.Duration
		MetricsAddress string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		SecretKey    string
		WorkDir      string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Email    EmailConfig
		Offline  OfflineConfig
	}
)

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func newViper(env string) *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Nabha")
	v.SetDefault("secretKey", "h7$k2-wq)zn^e!4@c9r=dx&uoxb2(t!m)#*a1(#yp4j^$cega7emk")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.sessionCookie", "session")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "nabha")
	v.SetDefault("database.user", "nabha")
	v.SetDefault("database.password", "nabha")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("email.defaultFromName", "Nabha")
	v.SetDefault("email.defaultFromAddress", "noreply@localhost")
	v.SetDefault("email.sendgridApiKey", "")
	v.SetDefault("email.alertRecipients", "")

	v.SetDefault("offline.dataDir", filepath.Join(os.TempDir(), "nabha"))
	v.SetDefault("offline.apiBaseURL", "http://localhost:8000/api")
	v.SetDefault("offline.requestTimeout", 15*time.Second)
	v.SetDefault("offline.checkInterval", 10*time.Second)
	v.SetDefault("offline.metricsAddress", "")

	switch env {
	case "TEST":
		v.SetDefault("testMode", true)
	default:
		v.SetDefault("testMode", false)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewConfig loads the Config from defaults, the environment and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	conf := loadConfig(newViper(env))
	conf.Env = env
	conf.WorkDir = wd
	return conf
}

func loadConfig(v *viper.Viper) *Config {
	return &Config{
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugAddress:       v.GetString("server.debugAddress"),
			SessionCookie:      v.GetString("server.sessionCookie"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Email: EmailConfig{
			DefaultFrom: mail.Address{
				Name:    v.GetString("email.defaultFromName"),
				Address: v.GetString("email.defaultFromAddress"),
			},
			SendgridApiKey:  v.GetString("email.sendgridApiKey"),
			AlertRecipients: splitList(v.GetString("email.alertRecipients")),
		},
		Offline: OfflineConfig{
			DataDir:        v.GetString("offline.dataDir"),
			APIBaseURL:     strings.TrimRight(v.GetString("offline.apiBaseURL"), "/"),
			RequestTimeout: v.GetDuration("offline.requestTimeout"),
			CheckInterval:  v.GetDuration("offline.checkInterval"),
			MetricsAddress: v.GetString("offline.metricsAddress"),
		},
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// NewTestConfig returns the Config used by tests: TEST defaults only, no environment nor .env file.
func NewTestConfig() *Config {
	v := newViper("TEST")
	conf := loadConfig(v)
	conf.Env = "TEST"
	conf.Debug = false
	conf.SecretKey = "secret"
	return conf
}
