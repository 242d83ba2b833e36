package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUserNotFound the identity provider has no such user
var ErrUserNotFound = errors.New("user not found")

// User the opaque authenticated-user identity the external provider
// exposes. The marketplace stores only user IDs; email and username
// are resolved on demand.
type User struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Directory resolves user IDs against the external identity provider
type Directory interface {
	Lookup(ctx context.Context, userID uint64) (*User, error)
}

// HTTPDirectory identity-provider client
type HTTPDirectory struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPDirectory creates an identity-provider client
func NewHTTPDirectory(baseURL, apiKey string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Lookup fetches a user record from the identity provider
func (d *HTTPDirectory) Lookup(ctx context.Context, userID uint64) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/users/%d", d.baseURL, userID), nil)
	if err != nil {
		return nil, err
	}
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
