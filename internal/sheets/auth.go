package sheets

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skillsenselab/jobhunt/internal/httpclient"
)

const (
	// oauthScopes grants spreadsheet writes plus the Drive read needed to
	// resolve a spreadsheet by name.
	oauthScopes = "https://www.googleapis.com/auth/spreadsheets https://www.googleapis.com/auth/drive"

	tokenGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	assertionLifetime = time.Hour
	tokenExpirySlack  = time.Minute
)

// tokenSource mints service-account access tokens: it signs an RS256 JWT
// assertion with the bundle's private key and exchanges it at the
// bundle's token_uri. Tokens are cached until shortly before expiry.
type tokenSource struct {
	key        *serviceAccountKey
	signingKey *rsa.PrivateKey
	client     *httpclient.Client
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// newTokenSource parses the bundle's private key and prepares a source.
func newTokenSource(key *serviceAccountKey, client *httpclient.Client) (*tokenSource, error) {
	signingKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service-account private key: %w", err)
	}
	return &tokenSource{
		key:        key,
		signingKey: signingKey,
		client:     client,
		now:        time.Now,
	}, nil
}

// Token returns a valid access token, exchanging a fresh assertion when
// the cached one is missing or about to expire.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Add(tokenExpirySlack).Before(ts.expiry) {
		return ts.token, nil
	}

	assertion, err := ts.assertion()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {tokenGrantType},
		"assertion":  {assertion},
	}
	resp, err := httpclient.Post[tokenResponse](ts.client, ctx, ts.key.TokenURI, form.Encode(),
		httpclient.WithHeader("Content-Type", "application/x-www-form-urlencoded"))
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	if resp.Data.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	ts.token = resp.Data.AccessToken
	ts.expiry = ts.now().Add(time.Duration(resp.Data.ExpiresIn) * time.Second)
	return ts.token, nil
}

// assertion builds and signs the JWT the token endpoint expects.
func (ts *tokenSource) assertion() (string, error) {
	now := ts.now()
	claims := jwt.MapClaims{
		"iss":   ts.key.ClientEmail,
		"scope": oauthScopes,
		"aud":   ts.key.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

// --- internal token endpoint types ---

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
