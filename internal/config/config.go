package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/deploymenttheory/go-flow-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-flow-composer/internal/common/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "flow-composer"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "FLOW_COMPOSER"

	// DefaultActualConnectionID is used for every connection reference when no
	// connection id is configured.
	DefaultActualConnectionID = "80cc3634317c459aa3a4a5c587617484"
)

// PublisherConfig identifies the solution publisher
type PublisherConfig struct {
	UniqueName        string `mapstructure:"unique_name"`
	LocalizedName     string `mapstructure:"localized_name"`
	Prefix            string `mapstructure:"prefix"`
	OptionValuePrefix int    `mapstructure:"option_value_prefix"`
}

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	Publisher PublisherConfig `mapstructure:"publisher"`

	// Connector logical names and the connection id bound to every reference
	Connections struct {
		SharePoint         string `mapstructure:"sharepoint"`
		Outlook            string `mapstructure:"outlook"`
		ActualConnectionID string `mapstructure:"actual_connection_id"`
	} `mapstructure:"connections"`

	User struct {
		AdminEmail        string            `mapstructure:"admin_email"`
		DistributionLists map[string]string `mapstructure:"distribution_lists"`
		TeamMembers       map[string]string `mapstructure:"team_members"`
	} `mapstructure:"user"`

	Environment struct {
		Mode string `mapstructure:"mode"` // prod or dev
	} `mapstructure:"environment"`

	SharePoint struct {
		SiteURL string            `mapstructure:"site_url"`
		ListMap map[string]string `mapstructure:"list_map"`
	} `mapstructure:"sharepoint"`

	Packaging struct {
		OutputDir     string `mapstructure:"output_dir"`
		SourceArchive string `mapstructure:"source_archive"` // "", tar.gz, tar.bz2, tar.xz
		Checksum      string `mapstructure:"checksum"`       // "", sha256, sha512
	} `mapstructure:"packaging"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	initOnce sync.Once
)

// Initialize sets up the global configuration once
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		var cfg *AppConfig
		var used string
		cfg, used, err = load(cfgFile)
		if cfg != nil {
			Instance = *cfg
		}
		ConfigLoaded = used != ""
		ConfigFile = used
	})

	return err
}

// Load reads configuration from cfgFile (or the default search paths when empty)
// into a fresh AppConfig without touching the global instance.
func Load(cfgFile string) (*AppConfig, error) {
	cfg, _, err := load(cfgFile)
	return cfg, err
}

func load(cfgFile string) (*AppConfig, string, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var used string
	if readErr := v.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return nil, "", fmt.Errorf("%w: %s", errors.ErrConfigParseError, readErr.Error())
		}
	} else {
		used = v.ConfigFileUsed()
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("%w: %s", errors.ErrConfigParseError, err.Error())
	}

	return cfg, used, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")

	if !osutil.IsRunningInPipeline() {
		if logDir, err := fsutil.GetLogDir(AppName); err == nil {
			v.SetDefault("log_file", filepath.Join(logDir, "flow-composer.log"))
		}
	}

	v.SetDefault("publisher.unique_name", "flowcomposer")
	v.SetDefault("publisher.localized_name", "Flow Composer")
	v.SetDefault("publisher.prefix", "fc")
	v.SetDefault("publisher.option_value_prefix", 10000)

	v.SetDefault("connections.sharepoint", "shared_sharepointonline")
	v.SetDefault("connections.outlook", "shared_office365")
	v.SetDefault("connections.actual_connection_id", DefaultActualConnectionID)

	v.SetDefault("user.admin_email", "admin@example.com")
	v.SetDefault("environment.mode", "dev")

	v.SetDefault("packaging.output_dir", "output")
	v.SetDefault("packaging.source_archive", "")
	v.SetDefault("packaging.checksum", "sha256")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")

	if configDir, err := fsutil.GetConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
	}
}

// Validate checks the settings every package build depends on
func (c *AppConfig) Validate() error {
	if c.Publisher.UniqueName == "" {
		return fmt.Errorf("%w: publisher.unique_name is required", errors.ErrConfigInvalid)
	}
	if c.Publisher.Prefix == "" {
		return fmt.Errorf("%w: publisher.prefix is required", errors.ErrConfigInvalid)
	}
	if c.Connections.ActualConnectionID == "" {
		return fmt.Errorf("%w: connections.actual_connection_id is required", errors.ErrConfigInvalid)
	}
	return nil
}

// GetEnvironmentEmails returns the production recipients in prod mode and the
// admin email otherwise.
func (c *AppConfig) GetEnvironmentEmails(emails string) string {
	if c.Environment.Mode == "prod" {
		return emails
	}
	return c.User.AdminEmail
}
