package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		DebugHost       string
		FrontendOrigin  string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only
	}

	StoreConfig struct {
		Driver        string // memory | database | redis
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	CameraConfig struct {
		Source      string // webcam | file
		Device      string
		FilePath    string
		Width       int
		Height      int
		FPS         int
		OpenTimeout time.Duration
	}

	CaptureConfig struct {
		Interval        time.Duration
		Tick            time.Duration
		ClassifyTimeout time.Duration
		WriteTimeout    time.Duration
		AutoStart       bool
	}

	ClassifierConfig struct {
		Endpoint    string
		Timeout     time.Duration
		JPEGQuality int
		MaxWidth    int
		Strict      bool
	}

	GeneratorConfig struct {
		APIKey  string
		BaseURL string
		Model   string
		Timeout time.Duration
	}

	Config struct {
		Debug        bool
		TestMode     bool
		Env          string
		Build        string
		AppName      string
		RollbarToken string

		Server     ServerConfig
		Database   DatabaseConfig
		Store      StoreConfig
		Camera     CameraConfig
		Capture    CaptureConfig
		Classifier ClassifierConfig
		Generator  GeneratorConfig
	}
)

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Neuro")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", ":5050")
	v.SetDefault("server.debugHost", ":5051")
	v.SetDefault("server.frontendOrigin", "http://localhost:3000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "neuro")
	v.SetDefault("database.user", "neuro")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "neuro.sqlite")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.redisAddr", "localhost:6379")
	v.SetDefault("store.redisPassword", "")
	v.SetDefault("store.redisDB", 0)

	v.SetDefault("camera.source", "webcam")
	v.SetDefault("camera.device", "/dev/video0")
	v.SetDefault("camera.filePath", "")
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.fps", 5)
	v.SetDefault("camera.openTimeout", 5*time.Second)

	v.SetDefault("capture.interval", 20*time.Second)
	v.SetDefault("capture.tick", time.Second)
	v.SetDefault("capture.classifyTimeout", 10*time.Second)
	v.SetDefault("capture.writeTimeout", 2*time.Second)
	v.SetDefault("capture.autoStart", false)

	v.SetDefault("classifier.endpoint", "http://localhost:5000/analyze_image_sentiment")
	v.SetDefault("classifier.timeout", 15*time.Second)
	v.SetDefault("classifier.jpegQuality", 85)
	v.SetDefault("classifier.maxWidth", 640)
	v.SetDefault("classifier.strict", false)

	v.SetDefault("generator.apiKey", "")
	v.SetDefault("generator.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("generator.model", "gemini-1.5-flash")
	v.SetDefault("generator.timeout", 20*time.Second)
}

// NewConfig reads the configuration from defaults, config/.env.<env> (if present) and the environment.
// Environment variables are prefixed by the current ENV, eg: DEV_CAPTURE_INTERVAL=30s.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			FrontendOrigin:  v.GetString("server.frontendOrigin"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
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
			Path:          v.GetString("database.path"),
		},
		Store: StoreConfig{
			Driver:        v.GetString("store.driver"),
			RedisAddr:     v.GetString("store.redisAddr"),
			RedisPassword: v.GetString("store.redisPassword"),
			RedisDB:       v.GetInt("store.redisDB"),
		},
		Camera: CameraConfig{
			Source:      v.GetString("camera.source"),
			Device:      v.GetString("camera.device"),
			FilePath:    v.GetString("camera.filePath"),
			Width:       v.GetInt("camera.width"),
			Height:      v.GetInt("camera.height"),
			FPS:         v.GetInt("camera.fps"),
			OpenTimeout: v.GetDuration("camera.openTimeout"),
		},
		Capture: CaptureConfig{
			Interval:        v.GetDuration("capture.interval"),
			Tick:            v.GetDuration("capture.tick"),
			ClassifyTimeout: v.GetDuration("capture.classifyTimeout"),
			WriteTimeout:    v.GetDuration("capture.writeTimeout"),
			AutoStart:       v.GetBool("capture.autoStart"),
		},
		Classifier: ClassifierConfig{
			Endpoint:    v.GetString("classifier.endpoint"),
			Timeout:     v.GetDuration("classifier.timeout"),
			JPEGQuality: v.GetInt("classifier.jpegQuality"),
			MaxWidth:    v.GetInt("classifier.maxWidth"),
			Strict:      v.GetBool("classifier.strict"),
		},
		Generator: GeneratorConfig{
			APIKey:  v.GetString("generator.apiKey"),
			BaseURL: v.GetString("generator.baseURL"),
			Model:   v.GetString("generator.model"),
			Timeout: v.GetDuration("generator.timeout"),
		},
	}
}
