// =============================================================================
// DFP/ITR Reader - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. The YAML main config (config.yaml)
//   3. Environment variables prefixed with DFPITR_ (see EnvOverrides)
//
// Every loaded configuration is validated with struct tags before use.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for DFP/ITR archives (*.zip).
	InputDir string `yaml:"input_dir" validate:"required"`

	// OutputDir receives one XML file per processed archive.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// InputArchiveDir receives archives after successful processing.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated XML file.
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// LayoutsWorkbook is an optional XLSX workbook with extra account
	// layouts. Its layouts take precedence over the built-in ones.
	LayoutsWorkbook string `yaml:"layouts_workbook"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {archive}   - Archive file name without extension
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "{archive}_{uuid}.xml"
	OutputNameFormat string `yaml:"output_name_format" validate:"required"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of archives processed at once.
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1"`

	// ContinueOnError keeps processing other archives when one fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	Reader  ReaderSettings `yaml:"reader"`
	Fiscal  FiscalSettings `yaml:"fiscal"`
	Filters FilterSettings `yaml:"filters"`
}

// =============================================================================
// READER SETTINGS
// =============================================================================

// ReaderSettings controls how archives are read.
type ReaderSettings struct {
	CSV CSVSettings `yaml:"csv"`

	// Individual and Consolidated select which statement files are read.
	Individual   bool `yaml:"individual"`
	Consolidated bool `yaml:"consolidated"`

	// NameCheck is the account name comparison used during layout walks:
	// "off" compares codes only, "strict" also compares names exactly,
	// "fold" compares names ignoring case and accents.
	NameCheck string `yaml:"name_check" validate:"oneof=off strict fold"`

	// MemberPrefixLength is the length of the "dfp_cia_aberta" style prefix
	// of archive member names.
	MemberPrefixLength int `yaml:"member_prefix_length" validate:"gte=1"`
}

// CSVSettings contains settings for parsing the CSV members of an archive.
type CSVSettings struct {
	// Delimiter is the field separator. Default: ";"
	Delimiter string `yaml:"delimiter" validate:"required"`

	// Encoding is "ISO-8859-1" (default), "Windows-1252" or "UTF-8".
	Encoding string `yaml:"encoding" validate:"required"`
}

// =============================================================================
// FISCAL SETTINGS
// =============================================================================

// FiscalSettings holds the extra-statement thresholds per document type.
type FiscalSettings struct {
	DFP Thresholds `yaml:"dfp"`
	ITR Thresholds `yaml:"itr"`
}

// Thresholds bound the period length, in days, of an "extra" income
// statement: ExtraMinDays < days < ExtraMaxDays.
type Thresholds struct {
	ExtraMinDays int `yaml:"extra_min_days" validate:"gte=0"`
	ExtraMaxDays int `yaml:"extra_max_days" validate:"gtfield=ExtraMinDays"`
}

// =============================================================================
// FILTER SETTINGS
// =============================================================================

// FilterSettings restricts which documents are exported. Empty values
// disable the corresponding filter.
type FilterSettings struct {
	CVMCodes      []int    `yaml:"cvm_codes"`
	DocumentTypes []string `yaml:"document_types" validate:"dive,oneof=DFP ITR"`
	MinYear       int      `yaml:"min_year" validate:"gte=0"`
	MaxYear       int      `yaml:"max_year" validate:"gte=0"`
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// EnvOverrides lists the settings that can be overridden from the
// environment, e.g. DFPITR_LOG_LEVEL=debug.
type EnvOverrides struct {
	InputDir       string `envconfig:"INPUT_DIR"`
	OutputDir      string `envconfig:"OUTPUT_DIR"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	MaxConcurrency int    `envconfig:"MAX_CONCURRENCY"`
}

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DFPITR"

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file
//     is not an error; defaults and environment overrides still apply.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&config, data)

	if err := applyEnvOverrides(&config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config, nil)
	return &config
}

// applyMainConfigDefaults sets default values for any unset option. The
// boolean reader switches default to true unless the YAML sets them.
func applyMainConfigDefaults(config *MainConfig, raw []byte) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{archive}_{uuid}.xml"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	reader := &config.Reader
	if reader.CSV.Delimiter == "" {
		reader.CSV.Delimiter = ";"
	}
	if reader.CSV.Encoding == "" {
		reader.CSV.Encoding = "ISO-8859-1"
	}
	if reader.NameCheck == "" {
		reader.NameCheck = "off"
	}
	if reader.MemberPrefixLength == 0 {
		reader.MemberPrefixLength = len("dfp_cia_aberta")
	}

	explicit := explicitReaderSwitches(raw)
	if !explicit["individual"] {
		reader.Individual = true
	}
	if !explicit["consolidated"] {
		reader.Consolidated = true
	}

	applyThresholdDefaults(&config.Fiscal.DFP)
	applyThresholdDefaults(&config.Fiscal.ITR)
}

func applyThresholdDefaults(t *Thresholds) {
	if t.ExtraMinDays == 0 && t.ExtraMaxDays == 0 {
		t.ExtraMinDays = 91
		t.ExtraMaxDays = 360
	}
}

// explicitReaderSwitches reports which boolean switches of the reader
// section are present in the raw YAML.
func explicitReaderSwitches(raw []byte) map[string]bool {
	found := map[string]bool{}
	if len(raw) == 0 {
		return found
	}

	var doc struct {
		Reader map[string]yaml.Node `yaml:"reader"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return found
	}
	for key := range doc.Reader {
		found[key] = true
	}
	return found
}

// applyEnvOverrides applies DFPITR_* environment variables.
func applyEnvOverrides(config *MainConfig) error {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.InputDir != "" {
		config.InputDir = env.InputDir
	}
	if env.OutputDir != "" {
		config.OutputDir = env.OutputDir
	}
	if env.LogLevel != "" {
		config.LogLevel = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		config.LogFormat = strings.ToLower(env.LogFormat)
	}
	if env.MaxConcurrency != 0 {
		config.MaxConcurrency = env.MaxConcurrency
	}
	return nil
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	if !config.Reader.Individual && !config.Reader.Consolidated {
		return fmt.Errorf("reader: at least one of individual and consolidated must be enabled")
	}
	if config.Filters.MaxYear != 0 && config.Filters.MaxYear < config.Filters.MinYear {
		return fmt.Errorf("filters: max_year %d is before min_year %d", config.Filters.MaxYear, config.Filters.MinYear)
	}

	return nil
}

// EnsureDirectories creates the configured directories if they don't exist.
func (c *MainConfig) EnsureDirectories() error {
	for _, dir := range []string{c.InputDir, c.OutputDir, c.InputArchiveDir, c.OutputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
