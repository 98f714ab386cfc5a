// Package sheets talks to the shared tabular document service. Two read
// paths exist per table: an authenticated structured read, and the public
// CSV export of the same document used strictly as a read-only fallback.
// All writes go through the authenticated path only.
package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/yourorg/studioportal/internal/store"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 16 << 20
)

// Client reaches one tabular document on the backend service.
type Client struct {
	baseURL  string
	docID    string
	token    string
	primary  *http.Client
	fallback *http.Client
	logger   *slog.Logger
}

// NewClient creates a backend client. The fallback path fetches a publicly
// derivable export URL, so it goes through an SSRF-hardened HTTP client:
// the export host comes from configuration, but defense in depth costs one
// wrapper here.
func NewClient(baseURL, docID, token string, logger *slog.Logger) *Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(defaultTimeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return newClient(baseURL, docID, token,
		&http.Client{Timeout: defaultTimeout},
		safeurl.Client(cfg).Client,
		logger,
	)
}

// NewClientWithHTTP creates a client with caller-supplied HTTP clients.
// Tests use it to point both paths at local servers.
func NewClientWithHTTP(baseURL, docID, token string, primary, fallback *http.Client, logger *slog.Logger) *Client {
	return newClient(baseURL, docID, token, primary, fallback, logger)
}

func newClient(baseURL, docID, token string, primary, fallback *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		docID:    docID,
		token:    token,
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/v1/documents/%s/tables/%s", c.baseURL, url.PathEscape(c.docID), url.PathEscape(table))
}

// exportURL derives the public, unauthenticated CSV export address for a
// logical table from the same document identifier.
func (c *Client) exportURL(table string) string {
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("table", table)
	return fmt.Sprintf("%s/export/%s?%s", c.baseURL, url.PathEscape(c.docID), q.Encode())
}

// Ping probes the structured API with an authenticated document fetch.
// Any HTTP response counts as reachable; only transport failures and
// auth rejections are reported.
func (c *Client) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/v1/documents/%s", c.baseURL, url.PathEscape(c.docID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.primary.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 512))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("ping: status %d", resp.StatusCode)
	}
	return nil
}

type readResponse struct {
	Rows []store.RawRow `json:"rows"`
}

// ReadRows fetches a table over the authenticated structured path.
func (c *Client) ReadRows(ctx context.Context, table string) ([]store.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table), nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.primary.Do(req)
	if err != nil {
		return nil, fmt.Errorf("primary read %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("primary read %s: status %d: %s", table, resp.StatusCode, bytes.TrimSpace(body))
	}

	var decoded readResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode read response for %s: %w", table, err)
	}
	return decoded.Rows, nil
}

// ReadExport fetches the public CSV export of a table. The first record is
// the header; every cell comes back as text.
func (c *Client) ReadExport(ctx context.Context, table string) ([]store.RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exportURL(table), nil)
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}

	resp, err := c.fallback.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export read %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export read %s: status %d", table, resp.StatusCode)
	}

	records, err := csv.NewReader(io.LimitReader(resp.Body, maxResponseSize)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse export csv for %s: %w", table, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]store.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(store.RawRow, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type appendRequest struct {
	Row map[string]string `json:"row"`
}

// AppendRow adds exactly one row to the end of a table. There is no
// fallback: the export path is read-only.
func (c *Client) AppendRow(ctx context.Context, table string, row map[string]string) error {
	body, err := json.Marshal(appendRequest{Row: row})
	if err != nil {
		return fmt.Errorf("encode append request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(table)+"/rows", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build append request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.doWrite(req, "append", table)
}

type overwriteRequest struct {
	Rows []map[string]string `json:"rows"`
}

// OverwriteRows replaces the entire contents of a table.
func (c *Client) OverwriteRows(ctx context.Context, table string, rows []map[string]string) error {
	body, err := json.Marshal(overwriteRequest{Rows: rows})
	if err != nil {
		return fmt.Errorf("encode overwrite request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build overwrite request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.doWrite(req, "overwrite", table)
}

func (c *Client) doWrite(req *http.Request, op, table string) error {
	resp, err := c.primary.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", op, table, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
