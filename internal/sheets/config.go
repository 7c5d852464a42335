package sheets

import (
	"fmt"
	"time"
)

const (
	defaultCredentialsFile = "credentials.json"
	defaultSpreadsheetName = "JobsHunt-sheet"
	defaultDriveBaseURL    = "https://www.googleapis.com/drive/v3"
	defaultSheetsBaseURL   = "https://sheets.googleapis.com/v4"
	defaultTimeout         = 30 * time.Second
)

// Config configures the spreadsheet client.
type Config struct {
	// CredentialsFile is the path to the service-account JSON bundle.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`

	// SpreadsheetName is the spreadsheet to append to, located by name
	// through the Drive API. Ignored when SpreadsheetID is set.
	SpreadsheetName string `yaml:"spreadsheet_name" mapstructure:"spreadsheet_name"`

	// SpreadsheetID pins the spreadsheet directly and skips the Drive
	// lookup.
	SpreadsheetID string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`

	// Worksheet is the sheet tab to append to. Empty means the first tab.
	Worksheet string `yaml:"worksheet" mapstructure:"worksheet"`

	// DriveBaseURL is the Drive API base URL.
	DriveBaseURL string `yaml:"drive_base_url" mapstructure:"drive_base_url"`

	// SheetsBaseURL is the Sheets API base URL.
	SheetsBaseURL string `yaml:"sheets_base_url" mapstructure:"sheets_base_url"`

	// Timeout bounds each Google API call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.CredentialsFile == "" {
		c.CredentialsFile = defaultCredentialsFile
	}
	if c.SpreadsheetName == "" && c.SpreadsheetID == "" {
		c.SpreadsheetName = defaultSpreadsheetName
	}
	if c.DriveBaseURL == "" {
		c.DriveBaseURL = defaultDriveBaseURL
	}
	if c.SheetsBaseURL == "" {
		c.SheetsBaseURL = defaultSheetsBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.CredentialsFile == "" {
		return fmt.Errorf("credentials_file is required")
	}
	if c.SpreadsheetName == "" && c.SpreadsheetID == "" {
		return fmt.Errorf("spreadsheet_name or spreadsheet_id is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
