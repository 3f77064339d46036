package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	jwttoken "gatepass/internal/jwt_token"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	jwt   *jwttoken.JWTService
	admin common.Address

	// pass IDs saved by name within a scenario
	passes map[string]uint64
	// transferredTo is set while the admin role sits with a test account.
	transferredTo common.Address
	// snapshot is the configuration read before the scenario started.
	snapshot map[string]any
}

// NewTestContext creates a test context bound to the shared target server.
func NewTestContext(t *target) *TestContext {
	return &TestContext{
		BaseURL: t.baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		jwt:    t.jwt,
		admin:  t.admin,
		passes: make(map[string]uint64),
	}
}

// Account maps a scenario name to a stable address. "the admin" resolves to
// the configured admin.
func (tc *TestContext) Account(name string) common.Address {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "admin" || name == "the admin" {
		return tc.admin
	}
	return common.BytesToAddress(crypto.Keccak256([]byte("gatepass-e2e/" + name)))
}

// TokenFor signs a caller token for the named account.
func (tc *TestContext) TokenFor(name string) (string, error) {
	token, _, err := tc.jwt.GenerateCallerToken(context.Background(), tc.Account(name))
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", name, err)
	}
	return token, nil
}

// Do sends a JSON request as the named account; an empty name sends no token.
func (tc *TestContext) Do(method, path, as string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		token, err := tc.TokenFor(as)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// POST makes an unauthenticated POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, "", body)
}

// GET makes an unauthenticated GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.Do(http.MethodGet, path, "", nil)
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) SavePass(name string, passID uint64) {
	tc.passes[name] = passID
}

func (tc *TestContext) Pass(name string) (uint64, error) {
	passID, ok := tc.passes[name]
	if !ok {
		return 0, fmt.Errorf("no pass saved as %q", name)
	}
	return passID, nil
}

// AdminTransferredTo records where the admin role went so the scenario can
// hand it back afterwards.
func (tc *TestContext) AdminTransferredTo(name string) {
	addr := tc.Account(name)
	if addr == tc.admin {
		tc.transferredTo = common.Address{}
		return
	}
	tc.transferredTo = addr
}

// snapshotConfig records the mutable configuration so restoreConfig can undo
// whatever the scenario changed on a shared server.
func (tc *TestContext) snapshotConfig() error {
	if err := tc.GET("/config"); err != nil {
		return err
	}
	if tc.GetLastResponseStatus() != http.StatusOK {
		return fmt.Errorf("read configuration: status %d", tc.GetLastResponseStatus())
	}
	return json.Unmarshal(tc.LastResponseBody, &tc.snapshot)
}

func (tc *TestContext) restoreConfig() error {
	if tc.snapshot == nil {
		return nil
	}
	if tc.transferredTo != (common.Address{}) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+"/admin/transfer",
			strings.NewReader(`{"new_admin":"`+tc.admin.Hex()+`"}`))
		if err != nil {
			return err
		}
		token, _, err := tc.jwt.GenerateCallerToken(context.Background(), tc.transferredTo)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := tc.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		tc.transferredTo = common.Address{}
	}

	updates := []struct {
		path string
		body map[string]any
	}{
		{"/admin/config/pass-cost", map[string]any{"pass_cost": tc.snapshot["pass_cost"]}},
		{"/admin/config/pass-duration", map[string]any{"pass_duration_seconds": tc.snapshot["pass_duration_seconds"]}},
		{"/admin/config/max-supply", map[string]any{"max_supply": tc.snapshot["max_supply"]}},
		{"/admin/config/metadata-base", map[string]any{"metadata_base": tc.snapshot["metadata_base"]}},
	}
	for _, u := range updates {
		if err := tc.Do(http.MethodPut, u.path, "admin", u.body); err != nil {
			return err
		}
		if tc.GetLastResponseStatus() != http.StatusOK {
			return fmt.Errorf("restore %s: status %d: %s", u.path, tc.GetLastResponseStatus(), tc.LastResponseBody)
		}
	}
	return nil
}
