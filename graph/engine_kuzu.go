package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultKuzuBaseURL = "http://localhost:8001"

// KuzuClient is the remote graph engine: a JSON-over-HTTP client for a Kùzu
// API server. Statements go to POST /cypher verbatim; the server executes
// the full dialect, so no translation happens on this side. File staging
// writes into DataDir, a working directory shared with the server process,
// which is where relative LOAD FROM paths resolve.
type KuzuClient struct {
	BaseURL    string
	DataDir    string
	HTTPClient *http.Client
}

// NewKuzuClient creates a client with optional overrides.
func NewKuzuClient(baseURL, dataDir string) *KuzuClient {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultKuzuBaseURL
	}
	return &KuzuClient{
		BaseURL:    trimmed,
		DataDir:    dataDir,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type kuzuRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

type kuzuResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Error   string           `json:"error,omitempty"`
}

func (k *KuzuClient) Execute(ctx context.Context, statement string, params map[string]any) (*Result, error) {
	payload, err := json.Marshal(kuzuRequest{Query: statement, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal cypher request: %w", err)
	}

	endpoint := strings.TrimRight(k.BaseURL, "/") + "/cypher"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create cypher request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := k.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute cypher request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if len(body) == 0 {
			return nil, fmt.Errorf("cypher request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("cypher request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed kuzuResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode cypher response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("cypher statement failed: %s", parsed.Error)
	}
	return &Result{Columns: parsed.Columns, Rows: parsed.Rows}, nil
}

// Prepare returns a client-side prepared statement: the server's HTTP
// surface has no preparation handle, so the statement text is held here and
// each Execute round-trips. Close releases nothing but preserves the
// phase-scoped lifecycle the materializer relies on.
func (k *KuzuClient) Prepare(ctx context.Context, statement string) (Statement, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, ErrNoStatement
	}
	return &kuzuStatement{client: k, statement: statement}, nil
}

type kuzuStatement struct {
	client    *KuzuClient
	statement string
}

func (s *kuzuStatement) Execute(ctx context.Context, params map[string]any) error {
	_, err := s.client.Execute(ctx, s.statement, params)
	return err
}

func (s *kuzuStatement) Close() error { return nil }

func (k *KuzuClient) WriteFile(name string, data []byte) error {
	path := filepath.Join(k.DataDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stage file %s: %w", name, err)
	}
	return nil
}

func (k *KuzuClient) Unlink(name string) error {
	path := filepath.Join(k.DataDir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlink staged file %s: %w", name, err)
	}
	return nil
}

func (k *KuzuClient) Close() error { return nil }

// Schema introspects the server's catalog with SHOW/CALL statements and
// reassembles it into the shared Schema shape.
func (k *KuzuClient) Schema(ctx context.Context) (*Schema, error) {
	tables, err := k.Execute(ctx, "CALL show_tables() RETURN *", nil)
	if err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}

	s := &Schema{}
	for _, row := range tables.Rows {
		name := rowString(row, "name")
		kind := rowString(row, "type")
		if name == "" {
			continue
		}
		props, err := k.tableProperties(ctx, name)
		if err != nil {
			return nil, err
		}
		switch kind {
		case "NODE":
			s.Nodes = append(s.Nodes, NodeTable{Name: name, Properties: props})
		case "REL":
			from, to, err := k.relConnectivity(ctx, name)
			if err != nil {
				return nil, err
			}
			for i := range props {
				props[i].PrimaryKey = false
			}
			s.Rels = append(s.Rels, RelTable{Name: name, From: from, To: to, Properties: props})
		}
	}
	return s, nil
}

func (k *KuzuClient) tableProperties(ctx context.Context, table string) ([]Property, error) {
	res, err := k.Execute(ctx, fmt.Sprintf("CALL table_info('%s') RETURN *", table), nil)
	if err != nil {
		return nil, fmt.Errorf("introspect table %s: %w", table, err)
	}
	props := make([]Property, 0, len(res.Rows))
	for _, row := range res.Rows {
		props = append(props, Property{
			Name:       rowString(row, "name"),
			Type:       rowString(row, "type"),
			PrimaryKey: rowString(row, "primary key") == "true",
		})
	}
	return props, nil
}

func (k *KuzuClient) relConnectivity(ctx context.Context, table string) (string, string, error) {
	res, err := k.Execute(ctx, fmt.Sprintf("CALL show_connection('%s') RETURN *", table), nil)
	if err != nil {
		return "", "", fmt.Errorf("introspect connection %s: %w", table, err)
	}
	if len(res.Rows) == 0 {
		return "", "", nil
	}
	row := res.Rows[0]
	return rowString(row, "source table name"), rowString(row, "destination table name"), nil
}
