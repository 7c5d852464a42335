package sheets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skillsenselab/jobhunt/internal/validation"
)

// serviceAccountKey is the subset of the Google service-account bundle
// this client needs. token_uri comes from the bundle itself so key
// rotation never requires a config change.
type serviceAccountKey struct {
	Type         string `json:"type" validate:"required"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key" validate:"required"`
	ClientEmail  string `json:"client_email" validate:"required,email"`
	TokenURI     string `json:"token_uri" validate:"required,url"`
}

// loadServiceAccountKey reads and validates the credentials bundle.
func loadServiceAccountKey(path string) (*serviceAccountKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials bundle: %w", err)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse credentials bundle: %w", err)
	}
	if err := validation.Struct(&key); err != nil {
		return nil, fmt.Errorf("invalid credentials bundle: %w", err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("credentials bundle type %q, want service_account", key.Type)
	}
	return &key, nil
}
