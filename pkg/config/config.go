package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chenBenjamin97/lunge-classifier/pkg/utils"
	"github.com/spf13/viper"
)

//ErrMissingCritical is returned by Load when a setting the program cannot run without is empty
var ErrMissingCritical = errors.New("missing critical configurations")

var serverModes = []string{"debug", "release", "test"}

type Config struct {
	Capture    CaptureConfig    `mapstructure:"capture"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

type CaptureConfig struct {
	Source       string        `mapstructure:"source"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BufferSize   int           `mapstructure:"buffer_size"`
	WindowTitle  string        `mapstructure:"window_title"`
	RecordPath   string        `mapstructure:"record_path"`
}

type DetectorConfig struct {
	Command   string        `mapstructure:"command"`
	Script    string        `mapstructure:"script"`
	ModelPath string        `mapstructure:"model_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ClassifierConfig struct {
	CorrectedRightBound bool `mapstructure:"corrected_right_bound"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

//Load reads "config.yaml" from given directories (the working directory if none given), fills in defaults and validates the result.
//A missing config file is not an error, defaults are used instead.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("lunge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Load: could not read config file, got '%w'", err)
		}
	}

	return unmarshal(v)
}

//LoadFile reads configuration from given file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("LoadFile: could not read '%s', got '%w'", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

//Validate makes sure the settings the live loop depends on are present
func (c *Config) Validate() error {
	if c.Capture.Source == "" || c.Detector.Command == "" || c.Detector.Script == "" || c.Detector.ModelPath == "" {
		return ErrMissingCritical
	}

	if c.Capture.PollInterval <= 0 {
		return fmt.Errorf("capture.poll_interval must be positive, got %v", c.Capture.PollInterval)
	}

	if c.HTTP.Enabled && !utils.InSlice(c.HTTP.Mode, serverModes) {
		return fmt.Errorf("http.mode must be one of %v, got '%s'", serverModes, c.HTTP.Mode)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("capture.source", "0")
	v.SetDefault("capture.poll_interval", utils.DefaultPollInterval)
	v.SetDefault("capture.buffer_size", utils.CaptureBufferSize)
	v.SetDefault("capture.window_title", "Pose Detection")
	v.SetDefault("capture.record_path", "")

	v.SetDefault("detector.command", "python3")
	v.SetDefault("detector.script", "scripts/pose_landmarker.py")
	v.SetDefault("detector.model_path", "models/pose_landmarker_heavy.task")
	v.SetDefault("detector.timeout", 5*time.Second)

	v.SetDefault("classifier.corrected_right_bound", false)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.mode", "release")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("log.mode", "debug")
}
