// Package config loads the archstrap configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/archstrap/archstrap/internal/bootstrap"
	"github.com/archstrap/archstrap/internal/storage"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sirupsen/logrus"
)

// NoAURHelper is the aur_helper value that skips building an AUR helper.
const NoAURHelper = "none"

// searchPaths are tried in order when no config file is given explicitly.
var searchPaths = []string{"archstrap.yml", "/etc/archstrap/config.yml"}

// Config holds every tunable of an install. The defaults reproduce the stock archstrap install.
type Config struct {
	LogFile     string `yaml:"log_file" env:"ARCHSTRAP_LOG_FILE" env-description:"file the log is appended to in addition to stderr"`
	LocalesPath string `yaml:"locales_path" env:"ARCHSTRAP_LOCALES_PATH" env-default:"/usr/share/archstrap/locales" env-description:"directory holding message translations"`

	MountRoot    string   `yaml:"mount_root" env:"ARCHSTRAP_MOUNT_ROOT" env-default:"/mnt" env-description:"path the new system is mounted at"`
	EFISize      string   `yaml:"efi_size" env:"ARCHSTRAP_EFI_SIZE" env-default:"512MB" env-description:"size of the EFI partition"`
	MountOptions []string `yaml:"mount_options" env:"ARCHSTRAP_MOUNT_OPTIONS" env-description:"extra btrfs mount options, comma separated"`

	Packages []string `yaml:"packages" env:"ARCHSTRAP_PACKAGES" env-description:"packages to bootstrap, comma separated"`

	Timezone        string        `yaml:"timezone" env:"ARCHSTRAP_TIMEZONE" env-description:"timezone of the new system, looked up from the IP address when empty"`
	TimezoneURL     string        `yaml:"timezone_url" env:"ARCHSTRAP_TIMEZONE_URL" env-default:"http://ip-api.com/line?fields=timezone" env-description:"timezone lookup service"`
	TimezoneRetries int           `yaml:"timezone_retries" env:"ARCHSTRAP_TIMEZONE_RETRIES" env-default:"0" env-description:"retries of the timezone lookup"`
	TimezoneTimeout time.Duration `yaml:"timezone_timeout" env:"ARCHSTRAP_TIMEZONE_TIMEOUT" env-default:"10s" env-description:"timeout of a timezone lookup attempt"`

	Locale     string `yaml:"locale" env:"ARCHSTRAP_LOCALE" env-default:"en_US.UTF-8" env-description:"system locale"`
	Keymap     string `yaml:"keymap" env:"ARCHSTRAP_KEYMAP" env-default:"us" env-description:"console keymap"`
	AdminGroup string `yaml:"admin_group" env:"ARCHSTRAP_ADMIN_GROUP" env-default:"wheel" env-description:"group of the new user granted sudo rights"`

	GrubTarget   string `yaml:"grub_target" env:"ARCHSTRAP_GRUB_TARGET" env-default:"x86_64-efi" env-description:"grub-install target platform"`
	EFIDirectory string `yaml:"efi_directory" env:"ARCHSTRAP_EFI_DIRECTORY" env-default:"/efi" env-description:"EFI system partition mount point in the new system"`
	BootloaderID string `yaml:"bootloader_id" env:"ARCHSTRAP_BOOTLOADER_ID" env-default:"GRUB" env-description:"bootloader id of the EFI boot entry"`

	Services []string `yaml:"services" env:"ARCHSTRAP_SERVICES" env-default:"NetworkManager" env-description:"systemd units to enable, comma separated"`

	AURHelper string `yaml:"aur_helper" env:"ARCHSTRAP_AUR_HELPER" env-default:"aura" env-description:"AUR helper to build, none to skip the build"`
	AURURL    string `yaml:"aur_url" env:"ARCHSTRAP_AUR_URL" env-default:"https://aur.archlinux.org" env-description:"AUR git base URL"`

	JaegerEndpoint string `yaml:"jaeger_endpoint" env:"ARCHSTRAP_JAEGER_ENDPOINT" env-description:"Jaeger collector endpoint, tracing is off when empty"`
}

// Load reads the configuration. An explicit path must exist; without one the search paths are tried and the
// environment alone is used when none exists. Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	file, err := findConfig(configPath)
	if err != nil {
		return nil, err
	}

	if file != "" {
		logrus.WithField("path", file).Debug("Reading configuration file")
		if err := cleanenv.ReadConfig(file, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", file, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to read environment: %w", err)
	}

	if len(cfg.Packages) == 0 {
		cfg.Packages = append([]string(nil), bootstrap.DefaultPackages...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfig(configPath string) (string, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return configPath, nil
	}

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Validate checks the values that would otherwise only fail halfway through an install.
func (c *Config) Validate() error {
	if !path.IsAbs(c.MountRoot) {
		return fmt.Errorf("config: mount_root %q must be an absolute path", c.MountRoot)
	}
	if _, err := storage.ParsePartitionTable(c.EFISize); err != nil {
		return fmt.Errorf("config: efi_size: %w", err)
	}
	if c.TimezoneRetries < 0 {
		return errors.New("config: timezone_retries must not be negative")
	}
	if c.TimezoneTimeout <= 0 {
		return errors.New("config: timezone_timeout must be positive")
	}
	if c.Timezone == "" && c.TimezoneURL == "" {
		return errors.New("config: either timezone or timezone_url is required")
	}

	required := map[string]string{
		"locale":        c.Locale,
		"keymap":        c.Keymap,
		"admin_group":   c.AdminGroup,
		"grub_target":   c.GrubTarget,
		"efi_directory": c.EFIDirectory,
		"bootloader_id": c.BootloaderID,
	}
	for key, value := range required {
		if value == "" {
			return fmt.Errorf("config: %s is required", key)
		}
	}
	if c.AURHelper == "" {
		return fmt.Errorf("config: aur_helper is required, use %q to skip the build", NoAURHelper)
	}
	if c.AURHelper != NoAURHelper && c.AURURL == "" {
		return errors.New("config: aur_url is required to build an AUR helper")
	}

	return nil
}

// BuildsAURHelper reports whether an AUR helper is to be built.
func (c *Config) BuildsAURHelper() bool {
	return c.AURHelper != NoAURHelper
}

// Usage returns the description of every environment variable.
func Usage() (string, error) {
	return cleanenv.GetDescription(&Config{}, nil)
}
