package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	EventLogName      = "events.jsonl"
)

// Color modes.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configurationDir string

	Color            string      `json:"color" validate:"oneof=always auto never"`
	NotifyBackground bool        `json:"notify_background"`
	RedirectFileMode os.FileMode `json:"redirect_file_mode" validate:"lte=511"`
	HeredocPattern   string      `json:"heredoc_pattern" validate:"required,excludes=/"`
	EventLog         string      `json:"event_log"`
	SignalStatusBase int         `json:"signal_status_base" validate:"gte=0,lte=255"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Dir is the directory the configuration was loaded from, empty for the
// built-in default.
func (c *Configuration) Dir() string {
	return c.configurationDir
}

// EventLogPath returns the absolute path of the event log or the empty string
// if event logging is disabled.
func (c *Configuration) EventLogPath() string {
	switch {
	case c.EventLog == "":
		return ""
	case filepath.IsAbs(c.EventLog) || c.configurationDir == "":
		return c.EventLog
	default:
		return filepath.Join(c.configurationDir, c.EventLog)
	}
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (*os.File, error) {
	return os.OpenFile(c.EventLogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (*os.File, error) {
	return os.Open(c.EventLogPath())
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
