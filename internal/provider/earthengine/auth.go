package earthengine

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// googleTokenURL is the OAuth2 token endpoint for service-account
	// JWT-bearer exchanges.
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// earthEngineScope authorizes Earth Engine computation requests.
	earthEngineScope = "https://www.googleapis.com/auth/earthengine"

	// assertionLifetime is how long each signed assertion is valid for.
	assertionLifetime = time.Hour

	// expirySkew refreshes tokens slightly before they actually expire so
	// in-flight requests never carry a token that dies mid-call.
	expirySkew = time.Minute
)

// tokenSource exchanges a signed service-account assertion for a bearer
// token and caches it until expiry. Safe for concurrent use.
type tokenSource struct {
	clientEmail string
	privateKey  *rsa.PrivateKey
	tokenURL    string
	httpClient  *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// newTokenSource parses the PEM-encoded service-account private key and
// returns a caching token source. The key arrives newline-escaped from the
// environment; the config layer unescapes it before we get here.
func newTokenSource(clientEmail, privateKeyPEM, tokenURL string, httpClient *http.Client) (*tokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}

	if tokenURL == "" {
		tokenURL = googleTokenURL
	}

	return &tokenSource{
		clientEmail: clientEmail,
		privateKey:  key,
		tokenURL:    tokenURL,
		httpClient:  httpClient,
	}, nil
}

// Token returns a valid bearer token, refreshing it when the cached one is
// missing or near expiry.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiry.Add(-expirySkew)) {
		return ts.token, nil
	}

	token, expiresIn, err := ts.exchange(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)

	return ts.token, nil
}

// exchange signs a fresh RS256 assertion and posts it to the token endpoint.
func (ts *tokenSource) exchange(ctx context.Context) (string, int, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.clientEmail,
		"scope": earthEngineScope,
		"aud":   ts.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.privateKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign service account assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token exchange returned %s: %s", resp.Status, string(body))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", 0, fmt.Errorf("token response contained no access token")
	}

	return out.AccessToken, out.ExpiresIn, nil
}
