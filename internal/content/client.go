package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/markweave/internal/doctree"
)

// keyPrefix is the key/value namespace holding document records.
const keyPrefix = "documents"

// Client reads and writes document records through a key/value HTTP store.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// putRequest is the body for PUT /kv/{key}.
type putRequest struct {
	Value  *doctree.Document `json:"value"`
	Source string            `json:"source,omitempty"`
}

// node is a stored key/value pair as returned by the store.
type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

func (c *Client) key(id string) string {
	return c.baseURL + "/kv/" + keyPrefix + "/" + id
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return c.httpClient.Do(req)
}

func statusError(op, id string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s %s: status %d: %s", op, id, resp.StatusCode, string(body))
}

func (c *Client) Get(ctx context.Context, id string) (*doctree.Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.key(id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get", id, resp)
	}

	var n node
	if err := json.NewDecoder(resp.Body).Decode(&n); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return decodeDocument(id, n.Value)
}

// List does a prefix scan over the document namespace.
func (c *Client) List(ctx context.Context) ([]doctree.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/kv/"+keyPrefix+"/*", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list", keyPrefix, resp)
	}

	var result struct {
		Nodes []node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	docs := make([]doctree.Document, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		id := n.Key[strings.LastIndex(n.Key, "/")+1:]
		doc, err := decodeDocument(id, n.Value)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	sortByID(docs)
	return docs, nil
}

func (c *Client) Put(ctx context.Context, doc *doctree.Document) error {
	if err := ValidateID(doc.ID); err != nil {
		return err
	}
	body, err := json.Marshal(putRequest{Value: doc, Source: "markweave"})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.key(doc.ID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put", doc.ID, resp)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.key(id), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete", id, resp)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func decodeDocument(id string, raw json.RawMessage) (*doctree.Document, error) {
	var doc doctree.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	doc.ID = id
	return &doc, nil
}
