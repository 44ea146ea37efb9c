package config

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyAPIURL       = "api.url"
	KeyAPIToken     = "api.token"
	KeyAPICompanyID = "api.company_id"
	KeyAPITimeout   = "api.timeout"
	KeyStorageDB    = "storage.db"
	KeyLogLevel     = "log.level"

	// DefaultAPIURL is the placeholder written by the example template.
	DefaultAPIURL   = "https://erp.example.com"
	defaultTimeout  = 30 * time.Second
	defaultDBPath   = "./clockfix.db"
	defaultLogLevel = "info"
	envPrefix       = "CLOCKFIX"
)

type Config struct {
	API     APIConfig     `mapstructure:"api" validate:"required"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	URL       string        `mapstructure:"url" validate:"required,url"`
	Token     string        `mapstructure:"token"`
	CompanyID string        `mapstructure:"company_id"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type StorageConfig struct {
	DB string `mapstructure:"db" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// FieldIssue names one config key that failed validation.
type FieldIssue struct {
	Key   string
	Rule  string
	Param string
}

func (i FieldIssue) String() string {
	if i.Param != "" {
		return fmt.Sprintf("%s (%s=%s)", i.Key, i.Rule, i.Param)
	}
	return fmt.Sprintf("%s (%s)", i.Key, i.Rule)
}

// ValidationError lists the keys of a config that failed validation, using
// the same dotted names as the YAML file (api.url, storage.db, ...).
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Keys returns the failing keys in report order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		keys = append(keys, issue.Key)
	}
	return keys
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// BindEnv makes every key overridable as CLOCKFIX_<SECTION>_<KEY>.
func BindEnv() {
	bindEnv(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# clockfix configuration
api:
  url: "https://erp.example.com"
  token: ""
  company_id: ""
  timeout: 30s

storage:
  db: "./clockfix.db"

log:
  level: "info"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := newValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
		return nil, toValidationError(fieldErrs)
	}

	return &cfg, nil
}

// newValidator reports fields by their mapstructure names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func toValidationError(fieldErrs validator.ValidationErrors) *ValidationError {
	out := &ValidationError{Issues: make([]FieldIssue, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		out.Issues = append(out.Issues, FieldIssue{Key: key, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyAPICompanyID, "")
	v.SetDefault(KeyAPITimeout, defaultTimeout)
	v.SetDefault(KeyStorageDB, defaultDBPath)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}
