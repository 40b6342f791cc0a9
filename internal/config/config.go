// Package config defines the application configuration and the layered
// resolution of booking inputs. Precedence is explicit and testable without
// I/O: flags and environment (already merged by viper) beat the config file,
// which beats the saved profile, which beats built-in defaults.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the whole application configuration.
type Config struct {
	Logger     LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Network    NetworkConfig `mapstructure:"network" yaml:"network"`
	Captcha    CaptchaConfig `mapstructure:"captcha" yaml:"captcha"`
	OCR        OCRConfig     `mapstructure:"ocr" yaml:"ocr"`
	Booking    BookingConfig `mapstructure:"booking" yaml:"booking"`
	ProfileDir string        `mapstructure:"profile_dir" yaml:"profile_dir"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color per level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// NetworkConfig configures the booking-site transport.
type NetworkConfig struct {
	BaseURL         string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	StepDelay       time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// CaptchaConfig bounds the captcha retry cycle.
type CaptchaConfig struct {
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	ImageDir   string        `mapstructure:"image_dir" yaml:"image_dir"`
}

// OCRConfig points at the captcha recognition service. An empty endpoint
// disables automatic solving; every challenge then goes to the terminal.
type OCRConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BookingConfig is the raw, human-readable booking input before resolution.
type BookingConfig struct {
	StartStation string         `mapstructure:"start_station" yaml:"start_station"`
	DestStation  string         `mapstructure:"dest_station" yaml:"dest_station"`
	OutboundDate string         `mapstructure:"outbound_date" yaml:"outbound_date"` // yyyy/MM/dd
	OutboundTime string         `mapstructure:"outbound_time" yaml:"outbound_time"` // HH:MM
	Tickets      map[string]int `mapstructure:"tickets" yaml:"tickets"`
	PersonalID   string         `mapstructure:"personal_id" yaml:"personal_id"`
	Phone        string         `mapstructure:"phone" yaml:"phone"`
	Email        string         `mapstructure:"email" yaml:"email"`
	PassengerIDs []string       `mapstructure:"passenger_ids" yaml:"passenger_ids"`
	Auto         bool           `mapstructure:"auto" yaml:"auto"`
}

// SetDefaults registers the built-in defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "thsrbook")
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "red")
	v.SetDefault("logger.colors.panic", "red")
	v.SetDefault("logger.colors.fatal", "red")

	v.SetDefault("network.request_timeout", 30*time.Second)
	v.SetDefault("network.step_delay", 200*time.Millisecond)

	v.SetDefault("captcha.max_retries", 3)
	v.SetDefault("captcha.retry_delay", time.Second)

	v.SetDefault("ocr.timeout", 10*time.Second)
}
