/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package appconfig loads process configuration for the extractor and
// publisher commands: where the API Management Service lives, which
// workspace to operate on, and where the tree and git repository are
// rooted. A YAML file (matching the format apimconfig already reads for
// the include/override document) is layered with APIM_SYNC_-prefixed
// environment variables via koanf.
package appconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variables used to configure
// apim-sync.
const EnvPrefix = "APIM_SYNC_"

// Config holds all configuration for the extractor and publisher commands.
type Config struct {
	Service ServiceConfig `koanf:"service"`
	Tree    TreeConfig    `koanf:"tree"`
	Git     GitConfig     `koanf:"git"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// ServiceConfig describes the API Management Service instance to sync with.
type ServiceConfig struct {
	BaseURL         string        `koanf:"base_url"`
	ResourceID      string        `koanf:"resource_id"`
	APIVersion      string        `koanf:"api_version"`
	Workspace       string        `koanf:"workspace"`
	SubscriptionKey string        `koanf:"subscription_key"`
	BearerToken     string        `koanf:"bearer_token"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	PollInterval    time.Duration `koanf:"poll_interval"`

	// SpecificationFormat selects the default ApiSpecification variant the
	// extractor writes when an API's type doesn't dictate one: one of
	// "Wadl", "JSON", "YAML", "OpenApiV2Json", "OpenApiV2Yaml",
	// "OpenApiV3Json", "OpenApiV3Yaml" (empty defaults to OpenAPI v3 YAML).
	SpecificationFormat string `koanf:"specification_format"`
}

// TreeConfig describes where the extracted resource tree lives on disk and
// where the include/override configuration document is.
type TreeConfig struct {
	RootDir          string `koanf:"root_dir"`
	ConfigurationPath string `koanf:"configuration_path"`
}

// GitConfig describes the git repository the tree is committed to.
type GitConfig struct {
	Enabled     bool   `koanf:"enabled"`
	RepoDir     string `koanf:"repo_dir"`
	Remote      string `koanf:"remote"`
	Branch      string `koanf:"branch"`
	AuthorName  string `koanf:"author_name"`
	AuthorEmail string `koanf:"author_email"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig controls Prometheus metrics collection. Port is validated
// when Enabled is set, but no HTTP server listens on it.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// LoadConfig reads configPath (if non-empty) and environment variables
// into a Config, applying defaults first and validating last.
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("appconfig: load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
		s = strings.ReplaceAll(s, "_", ".")
		s = strings.ReplaceAll(s, "%UNDERSCORE%", "_")
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("appconfig: load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("appconfig: unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("appconfig: invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			APIVersion:     "2022-09-01-preview",
			RequestTimeout: 30 * time.Second,
			PollInterval:   500 * time.Millisecond,
		},
		Tree: TreeConfig{
			RootDir: ".",
		},
		Git: GitConfig{
			Branch:      "main",
			AuthorName:  "apim-sync",
			AuthorEmail: "apim-sync@users.noreply.github.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9464,
		},
	}
}

// Validate checks the fields LoadConfig cannot default its way around.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url is required")
	}
	if c.Service.ResourceID == "" {
		return fmt.Errorf("service.resource_id is required")
	}
	if c.Service.APIVersion == "" {
		return fmt.Errorf("service.api_version is required")
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be either 'json' or 'text', got: %s", c.Logging.Format)
	}

	if c.Tree.RootDir == "" {
		return fmt.Errorf("tree.root_dir is required")
	}

	if c.Git.Enabled && c.Git.RepoDir == "" {
		return fmt.Errorf("git.repo_dir is required when git.enabled is true")
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535 when metrics.enabled is true, got: %d", c.Metrics.Port)
	}

	return nil
}
