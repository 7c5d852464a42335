package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/component"
	"github.com/skillsenselab/jobhunt/internal/extract"
	"github.com/skillsenselab/jobhunt/internal/httpclient"
	"github.com/skillsenselab/jobhunt/internal/logger"
)

// timestampFormat matches the date-only first column the sheet has
// always carried.
const timestampFormat = "2006-01-02"

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// AppendResult reports where an appended row landed.
type AppendResult struct {
	// SpreadsheetID is the spreadsheet the row was appended to.
	SpreadsheetID string `json:"spreadsheetId"`
	// UpdatedRange is the A1-notation range the row occupies.
	UpdatedRange string `json:"updatedRange"`
	// UpdatedRows is the number of rows appended.
	UpdatedRows int `json:"updatedRows"`
}

// Client appends extracted records to the configured spreadsheet.
type Client struct {
	cfg Config
	log *logger.Logger

	lazy         *component.BaseLazyComponent
	driveClient  *httpclient.Client
	sheetsClient *httpclient.Client

	// tokens is set by the lazy initializer once the bundle loads.
	tokens *tokenSource

	mu            sync.Mutex
	spreadsheetID string

	now func() time.Time
}

// New creates a spreadsheet client. The credentials bundle is not read
// until the first append; a bundle problem fails that append with a
// configuration error and is retried on the next one.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sheets config: %w", err)
	}

	driveClient, err := httpclient.New(httpclient.Config{BaseURL: cfg.DriveBaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("sheets drive client: %w", err)
	}
	sheetsClient, err := httpclient.New(httpclient.Config{BaseURL: cfg.SheetsBaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("sheets values client: %w", err)
	}
	tokenClient, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("sheets token client: %w", err)
	}

	c := &Client{
		cfg:           cfg,
		log:           logger.WithComponent("sheets"),
		driveClient:   driveClient,
		sheetsClient:  sheetsClient,
		spreadsheetID: cfg.SpreadsheetID,
		now:           time.Now,
	}
	c.lazy = component.NewBaseLazyComponent("sheets-credentials", func(_ context.Context) error {
		key, err := loadServiceAccountKey(cfg.CredentialsFile)
		if err != nil {
			return err
		}
		tokens, err := newTokenSource(key, tokenClient)
		if err != nil {
			return err
		}
		c.tokens = tokens
		return nil
	})
	return c, nil
}

// AppendRow converts the record into the fixed column order and appends
// it as a new row. The first column records the append date. Appends are
// not idempotent: retrying a request produces a duplicate row.
func (c *Client) AppendRow(ctx context.Context, rec *extract.Record) (*AppendResult, error) {
	if err := c.lazy.Initialize(ctx); err != nil {
		return nil, apperr.SheetConfiguration("credentials bundle unavailable", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, apperr.Sheet("authenticate with spreadsheet service", err)
	}

	id, err := c.resolveSpreadsheetID(ctx, token)
	if err != nil {
		return nil, err
	}

	row := []any{
		c.now().Format(timestampFormat),
		rec.Company,
		rec.Role,
		rec.ResumeVersion,
		rec.Platform,
		rec.Status,
	}

	path := fmt.Sprintf("/spreadsheets/%s/values/%s:append", id, c.appendRange())
	resp, err := httpclient.Post[appendResponse](c.sheetsClient, ctx, path,
		valueRange{Values: [][]any{row}},
		httpclient.WithQueryParam("valueInputOption", "USER_ENTERED"),
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
	)
	if err != nil {
		return nil, apperr.Sheet("append row", err)
	}

	c.log.Info("Row appended to spreadsheet", map[string]interface{}{
		"spreadsheet_id": id,
		"updated_range":  resp.Data.Updates.UpdatedRange,
	})

	return &AppendResult{
		SpreadsheetID: id,
		UpdatedRange:  resp.Data.Updates.UpdatedRange,
		UpdatedRows:   resp.Data.Updates.UpdatedRows,
	}, nil
}

// Health reports whether the credentials bundle has loaded.
func (c *Client) Health(ctx context.Context) error {
	return c.lazy.HealthCheck(ctx)
}

// resolveSpreadsheetID returns the configured spreadsheet ID, looking it
// up by name through the Drive API on first use and caching the result.
func (c *Client) resolveSpreadsheetID(ctx context.Context, token string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spreadsheetID != "" {
		return c.spreadsheetID, nil
	}

	name := strings.ReplaceAll(c.cfg.SpreadsheetName, "'", `\'`)
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", name, spreadsheetMimeType)

	resp, err := httpclient.Get[driveFileList](c.driveClient, ctx, "/files",
		httpclient.WithQueryParam("q", query),
		httpclient.WithQueryParam("fields", "files(id,name)"),
		httpclient.WithQueryParam("pageSize", "1"),
		httpclient.WithRequestAuth(httpclient.BearerAuth(token)),
	)
	if err != nil {
		return "", apperr.Sheet(fmt.Sprintf("locate spreadsheet %q", c.cfg.SpreadsheetName), err)
	}
	if len(resp.Data.Files) == 0 {
		return "", apperr.Sheet(fmt.Sprintf("spreadsheet %q not found", c.cfg.SpreadsheetName), nil)
	}

	c.spreadsheetID = resp.Data.Files[0].ID
	c.log.Info("Spreadsheet resolved", map[string]interface{}{
		"spreadsheet_name": c.cfg.SpreadsheetName,
		"spreadsheet_id":   c.spreadsheetID,
	})
	return c.spreadsheetID, nil
}

// appendRange is the A1-notation range the append call targets.
func (c *Client) appendRange() string {
	if c.cfg.Worksheet == "" {
		return "A1"
	}
	return c.cfg.Worksheet + "!A1"
}

// --- internal Google API types ---

type driveFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

type valueRange struct {
	Values [][]any `json:"values"`
}

type appendUpdates struct {
	SpreadsheetID string `json:"spreadsheetId"`
	UpdatedRange  string `json:"updatedRange"`
	UpdatedRows   int    `json:"updatedRows"`
	UpdatedCells  int    `json:"updatedCells"`
}

type appendResponse struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	Updates       appendUpdates `json:"updates"`
}
