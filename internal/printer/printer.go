// Package printer talks to the local print agent that drives the receipt
// printer. When the agent is absent or failing, printing falls back to the
// platform print dialog supplied by the caller.
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pos-terminal/internal/core"
)

const defaultTimeout = 5 * time.Second

// Agent prints receipts through a local print-agent HTTP endpoint.
type Agent struct {
	baseURL string
	client  *http.Client
}

// NewAgent builds the printer client. baseURL may be empty, in which case
// every print goes straight to the dialog fallback.
func NewAgent(baseURL string) *Agent {
	return &Agent{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type printRequest struct {
	Sale   *core.Sale         `json:"sale"`
	Tenant core.TenantProfile `json:"tenant"`
}

type printResponse struct {
	Printer string `json:"printer"`
	Error   string `json:"error,omitempty"`
}

// SmartPrint attempts the direct path and, when that is unavailable, invokes
// fallback (the platform print dialog) instead. An error return means both
// strategies were exhausted; callers treat it as a notice, never a sale
// failure.
func (a *Agent) SmartPrint(ctx context.Context, sale *core.Sale, tenant core.TenantProfile, fallback func()) (core.PrintResult, error) {
	if a.baseURL == "" {
		fallback()
		return core.PrintResult{UsedFallback: true, Message: "print dialog opened"}, nil
	}

	resp, err := a.direct(ctx, sale, tenant)
	if err == nil {
		return core.PrintResult{Message: fmt.Sprintf("printed on %s", resp.Printer)}, nil
	}

	fallback()
	return core.PrintResult{UsedFallback: true, Message: "print dialog opened"}, nil
}

func (a *Agent) direct(ctx context.Context, sale *core.Sale, tenant core.TenantProfile) (*printResponse, error) {
	body, err := json.Marshal(printRequest{Sale: sale, Tenant: tenant})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var pr printResponse
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		if pr.Error != "" {
			return nil, fmt.Errorf("print agent: %s", pr.Error)
		}
		return nil, fmt.Errorf("print agent returned %d", res.StatusCode)
	}
	return &pr, nil
}
