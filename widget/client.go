package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"chem-purchase-assistant/models"
)

const defaultClientTimeout = 30 * time.Second

// Endpoint paths served by the assistant backend
const (
	PathCurrentUser   = "/get_current_user"
	PathPurchase      = "/chemical_purchase"
	PathSummaryExport = "/chemical_purchase/summary"
	PathLogin         = "/login"
	PathLogout        = "/logout"
	PathRegister      = "/register"
)

// PurchaseError is returned when the backend answers a request with a non-2xx status
type PurchaseError struct {
	StatusCode int
	Message    string
}

func (e *PurchaseError) Error() string {
	return e.Message
}

// Client talks to the assistant backend
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client. A nil httpClient gets a cookie jar so the
// session cookie set by Login is sent on later calls.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		jar, _ := cookiejar.New(nil)
		httpClient = &http.Client{Timeout: defaultClientTimeout, Jar: jar}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

// CurrentUser queries the login status. A 401 is a normal "not logged in" answer.
func (c *Client) CurrentUser(ctx context.Context) (models.CurrentUserResponse, error) {
	var out models.CurrentUserResponse

	resp, err := c.do(ctx, http.MethodGet, PathCurrentUser, nil)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return models.CurrentUserResponse{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, responseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("failed to decode current user: %w", err)
	}
	return out, nil
}

// Login opens a session for the given credentials
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.sendCredentials(ctx, PathLogin, username, password)
}

// Register creates an account
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.sendCredentials(ctx, PathRegister, username, password)
}

// Logout closes the current session
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, PathLogout, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	return nil
}

func (c *Client) sendCredentials(ctx context.Context, path, username, password string) error {
	resp, err := c.do(ctx, http.MethodPost, path, models.CredentialsRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}
	return nil
}

// SubmitPurchase sends the supplier code and raw chemical lines in one request
func (c *Client) SubmitPurchase(ctx context.Context, supplier string, items []string) (*models.PurchaseOrderResult, error) {
	resp, err := c.do(ctx, http.MethodPost, PathPurchase, models.PurchaseRequest{Supplier: supplier, Items: items})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp)
	}

	var result models.PurchaseOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode purchase response: %w", err)
	}
	return &result, nil
}

// ExportSummary asks the backend to print an order summary.
// format is "pdf", "png" or "thumb". Returns the bytes and their content type.
func (c *Client) ExportSummary(ctx context.Context, req models.SummaryExportRequest, format string) ([]byte, string, error) {
	path := PathSummaryExport + "?format=" + url.QueryEscape(format)
	resp, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", responseError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read summary export: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	return resp, nil
}

// responseError reads {"error": "..."} from a failed response, falling back
// to a message built from the status code.
func responseError(resp *http.Response) error {
	perr := &PurchaseError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP error! status: %d", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return perr
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return perr
	}
	if msg := strings.TrimSpace(body.Error); msg != "" {
		perr.Message = msg
	}
	return perr
}

// IsStatus reports whether err is a PurchaseError with the given status
func IsStatus(err error, status int) bool {
	var perr *PurchaseError
	return errors.As(err, &perr) && perr.StatusCode == status
}
