package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"github.com/kelseyhightower/envconfig"
	"github.com/mcuadros/go-defaults"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CQLCODEC"

// Config holds the settings of the cqlcodec tool. They come either from a YAML file or, when no file is given,
// from CQLCODEC_* environment variables.
type Config struct {
	ProtocolVersion  uint8  `yaml:"protocol_version" default:"4" split_words:"true"`
	FrameCompression string `yaml:"frame_compression" default:"none" split_words:"true"`

	LogLevel string `yaml:"log_level" default:"INFO" split_words:"true"`

	MetricsEnabled bool   `yaml:"metrics_enabled" default:"false" split_words:"true"`
	MetricsPrefix  string `yaml:"metrics_prefix" default:"cqlcodec" split_words:"true"`
}

func (c *Config) String() string {
	var configMap map[string]interface{}
	serializedConfig, _ := json.Marshal(c)
	_ = json.Unmarshal(serializedConfig, &configMap)

	fields := make([]string, 0, len(configMap))
	for field := range configMap {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	b := new(bytes.Buffer)
	for _, field := range fields {
		fmt.Fprintf(b, "%s=\"%v\"; ", field, configMap[field])
	}
	return fmt.Sprintf("Config{%v}", b.String())
}

// New returns an empty Config struct
func New() *Config {
	return &Config{}
}

// LoadConfig fills out the fields of the Config struct from configFile, or from the environment according to
// envconfig rules when configFile is empty.
// See: Usage @ https://github.com/kelseyhightower/envconfig
func (c *Config) LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		if err := c.loadFromFile(configFile); err != nil {
			return nil, err
		}
	} else {
		if err := envconfig.Process(envPrefix, c); err != nil {
			return nil, fmt.Errorf("could not load environment variables: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Debugf("Parsed configuration: %v", c)
	return c, nil
}

func (c *Config) loadFromFile(configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read configuration file %v: %w", configFile, err)
	}

	defaults.SetDefaults(c)
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse yaml configuration file %v: %w", configFile, err)
	}
	return nil
}

func (c *Config) Validate() error {
	version, err := c.ParseProtocolVersion()
	if err != nil {
		return err
	}

	compression, err := c.ParseCompression()
	if err != nil {
		return err
	}
	if version.SupportsModernFramingLayout() && compression == primitive.CompressionSnappy {
		return fmt.Errorf("protocol version %v does not support snappy compression", version)
	}

	if _, err = c.ParseLogLevel(); err != nil {
		return err
	}

	if c.MetricsEnabled && strings.TrimSpace(c.MetricsPrefix) == "" {
		return fmt.Errorf("metrics prefix must not be empty when metrics are enabled")
	}
	return nil
}

func (c *Config) ParseProtocolVersion() (primitive.ProtocolVersion, error) {
	switch version := primitive.ProtocolVersion(c.ProtocolVersion); version {
	case primitive.ProtocolVersion3, primitive.ProtocolVersion4, primitive.ProtocolVersion5:
		return version, nil
	default:
		return 0, fmt.Errorf("unsupported protocol version %d, expected 3, 4 or 5", c.ProtocolVersion)
	}
}

func (c *Config) ParseCompression() (primitive.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(c.FrameCompression)) {
	case "", "none":
		return primitive.CompressionNone, nil
	case "lz4":
		return primitive.CompressionLz4, nil
	case "snappy":
		return primitive.CompressionSnappy, nil
	default:
		return "", fmt.Errorf("unknown frame compression %v, expected none, lz4 or snappy", c.FrameCompression)
	}
}

func (c *Config) ParseLogLevel() (log.Level, error) {
	level, err := log.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %v: %w", c.LogLevel, err)
	}
	return level, nil
}
