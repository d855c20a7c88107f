package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, клиент не импортирует internal/api) ---

// EndpointResponse — endpoint из API.
type EndpointResponse struct {
	ID           string `json:"connection_id"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	VHost        string `json:"vhost"`
	User         string `json:"user"`
	Exchange     string `json:"exchange"`
	Flags        string `json:"flags,omitempty"`
	MaxFrameSize int    `json:"max_frame_size"`
	Heartbeat    int    `json:"heartbeat"`
	Retries      int    `json:"retries"`
	State        string `json:"state"`
	SessionID    string `json:"session_id,omitempty"`
}

// BindingRequest — значения, по которым агент вычисляет динамическую ссылку.
type BindingRequest struct {
	Query  url.Values
	Header http.Header
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Diagnosis *struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"diagnosis,omitempty"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API rmqlink-agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Endpoints ---

// ListEndpoints возвращает все endpoint'ы агента.
func (c *Client) ListEndpoints() ([]EndpointResponse, error) {
	var eps []EndpointResponse
	err := c.list("/api/v1/endpoints", nil, &eps)
	return eps, err
}

// GetEndpoint возвращает endpoint по ID.
func (c *Client) GetEndpoint(cid string) (*EndpointResponse, error) {
	var ep EndpointResponse
	err := c.get("/api/v1/endpoints/"+url.PathEscape(cid), &ep)
	return &ep, err
}

// ConnectEndpoint подключает endpoint.
func (c *Client) ConnectEndpoint(cid string) (*EndpointResponse, error) {
	var ep EndpointResponse
	err := c.post("/api/v1/endpoints/"+url.PathEscape(cid)+"/connect", nil, nil, &ep)
	return &ep, err
}

// CloseEndpoint закрывает соединение endpoint.
func (c *Client) CloseEndpoint(cid string) (*EndpointResponse, error) {
	var ep EndpointResponse
	err := c.post("/api/v1/endpoints/"+url.PathEscape(cid)+"/close", nil, nil, &ep)
	return &ep, err
}

// --- Bindings ---

// ConnectBinding разрешает именованную ссылку и подключает endpoint.
func (c *Client) ConnectBinding(name string, req BindingRequest) (*EndpointResponse, error) {
	path := "/api/v1/bindings/" + url.PathEscape(name) + "/connect"
	if len(req.Query) > 0 {
		path += "?" + req.Query.Encode()
	}

	var ep EndpointResponse
	err := c.post(path, req.Header, nil, &ep)
	return &ep, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, nil, result)
}

func (c *Client) post(path string, header http.Header, body any, result any) error {
	return c.doData(http.MethodPost, path, header, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, header http.Header, body any, result any) error {
	resp, err := c.do(method, path, header, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, header http.Header, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if d := er.Error.Diagnosis; d != nil {
		return fmt.Errorf("%s: %s (%s)", er.Error.Code, er.Error.Message, d.Reason)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
