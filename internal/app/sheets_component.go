package app

import (
	"context"
	"fmt"

	"github.com/skillsenselab/jobhunt/internal/component"
	"github.com/skillsenselab/jobhunt/internal/sheets"
)

var (
	_ component.Component   = (*sheetsComponent)(nil)
	_ component.Describable = (*sheetsComponent)(nil)
)

// sheetsComponent surfaces the spreadsheet client in the component
// registry. The client loads its credentials bundle on first append,
// so Start touches nothing and health reports degraded until a row
// has been appended.
type sheetsComponent struct {
	client *sheets.Client
	cfg    sheets.Config
}

func newSheetsComponent(client *sheets.Client, cfg sheets.Config) *sheetsComponent {
	return &sheetsComponent{client: client, cfg: cfg}
}

// Name returns the component name.
func (s *sheetsComponent) Name() string { return "sheets" }

// Start is a no-op; the credentials bundle loads on first use.
func (s *sheetsComponent) Start(_ context.Context) error { return nil }

// Stop is a no-op; the client holds no connections between appends.
func (s *sheetsComponent) Stop(_ context.Context) error { return nil }

// Health reports whether the credentials bundle has loaded.
func (s *sheetsComponent) Health(ctx context.Context) component.Health {
	if err := s.client.Health(ctx); err != nil {
		return component.Health{
			Name:    s.Name(),
			Status:  component.StatusDegraded,
			Message: "credentials bundle not loaded",
		}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Describe reports the component for the startup summary.
func (s *sheetsComponent) Describe() component.Description {
	target := s.cfg.SpreadsheetID
	if target == "" {
		target = s.cfg.SpreadsheetName
	}
	return component.Description{
		Name:    "Google Sheets",
		Type:    "client",
		Details: fmt.Sprintf("spreadsheet %q credentials=%s", target, s.cfg.CredentialsFile),
	}
}
