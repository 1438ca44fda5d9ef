// Package ledger is the client for the append-only ledger that records
// published artifact references. The ledger enforces a minimum interval
// between accepted writes per identity; writes inside the window are
// rejected through the same error channel as every other failure, so this
// package classifies errors into retryable and fatal for the commit loop.
package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daniel/dataset-miner/internal/clock"
	"github.com/daniel/dataset-miner/internal/wallet"
)

// DefaultTimeout is the per-request timeout for ledger calls.
const DefaultTimeout = 30 * time.Second

// Client talks to one ledger gateway on behalf of one wallet.
type Client struct {
	baseURL    string
	wallet     *wallet.Wallet
	clock      clock.Clock
	httpClient *http.Client
}

// New creates a ledger client. A nil clk uses the system clock.
func New(baseURL string, w *wallet.Wallet, clk clock.Clock) *Client {
	if clk == nil {
		clk = clock.System{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		wallet:     w,
		clock:      clk,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// AssertRegistered verifies the wallet's hotkey is registered on the subnet
// before any work begins. Failure is fatal; an unregistered miner cannot
// announce anything.
func (c *Client) AssertRegistered(ctx context.Context, subnetUID int) error {
	url := fmt.Sprintf("%s/api/subnets/%d/neurons/%s", c.baseURL, subnetUID, c.wallet.Address())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &RegistrationError{Address: c.wallet.Address(), Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RegistrationError{Address: c.wallet.Address(), Message: "registration check failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return &RegistrationError{
			Address: c.wallet.Address(),
			Message: fmt.Sprintf("hotkey is not registered on subnet %d", subnetUID),
		}
	default:
		return &RegistrationError{
			Address: c.wallet.Address(),
			Message: fmt.Sprintf("registration check returned HTTP %d", resp.StatusCode),
		}
	}

	var parsed struct {
		Registered bool `json:"registered"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return &RegistrationError{Address: c.wallet.Address(), Message: "failed to decode registration response", Cause: err}
	}
	if !parsed.Registered {
		return &RegistrationError{
			Address: c.wallet.Address(),
			Message: fmt.Sprintf("hotkey is not registered on subnet %d", subnetUID),
		}
	}
	return nil
}

// announceRequest is the commitment write sent to the ledger gateway.
type announceRequest struct {
	Address string `json:"address"`
	Payload string `json:"payload"`
}

// Announce writes payload to the subnet's commitment stream. Requests carry
// a short-lived EdDSA bearer token plus a detached signature of the payload,
// both minted from the wallet. Errors are classified: transport failures,
// rate limiting, and server errors are retryable; a rejected payload is not.
func (c *Client) Announce(ctx context.Context, subnetUID int, payload string) error {
	body, err := json.Marshal(announceRequest{Address: c.wallet.Address(), Payload: payload})
	if err != nil {
		return &AnnounceError{Message: "failed to encode announce request", Cause: err}
	}

	token, err := c.wallet.MintToken(c.clock.Now())
	if err != nil {
		return &AnnounceError{Message: "failed to mint bearer token", Cause: err}
	}

	url := fmt.Sprintf("%s/api/subnets/%d/commitments", c.baseURL, subnetUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &AnnounceError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Signature", hex.EncodeToString(c.wallet.Sign([]byte(payload))))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &AnnounceError{Message: "announce request failed", Cause: err, Transient: true}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := fmt.Sprintf("ledger returned HTTP %d", resp.StatusCode)
	if len(bytes.TrimSpace(detail)) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(string(detail)))
	}

	// The ledger reports rate-limit rejections and genuine faults through
	// the same channel; only a definitive payload rejection is fatal.
	transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
	return &AnnounceError{Message: msg, Transient: transient}
}
