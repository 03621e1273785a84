package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkerResponse — воркер из API.
type WorkerResponse struct {
	ID              int64  `json:"id"`
	Provider        string `json:"provider"`
	State           string `json:"state"`
	Cycle           int64  `json:"cycle"`
	CycleTimeMillis int64  `json:"cycle_time_ms"`
	EndTimeMillis   int64  `json:"end_time_ms"`
	Inputs          int    `json:"inputs"`
}

// StateResponse — состояние процессора из API.
type StateResponse struct {
	WorkerID int64 `json:"worker_id"`
	State    any   `json:"state"`
}

// BucketResponse — отметка timeline из API.
type BucketResponse struct {
	At        int64   `json:"at_ms"`
	Time      string  `json:"time"`
	WorkerIDs []int64 `json:"worker_ids"`
}

// RecordResponse — запись журнала из API.
type RecordResponse struct {
	RunID      string `json:"run_id"`
	WorkerID   int64  `json:"worker_id"`
	Provider   string `json:"provider"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// --- Request types ---

// CreateWorkerRequest — создание воркера.
type CreateWorkerRequest struct {
	ID            *int64         `json:"id,omitempty"`
	Provider      string         `json:"provider"`
	Settings      map[string]any `json:"settings,omitempty"`
	EndTimeMillis int64          `json:"end_time_ms,omitempty"`
}

// ListJournalOpts — параметры фильтрации журнала.
type ListJournalOpts struct {
	WorkerID *int64
	Status   string
	Limit    int
	Offset   int
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
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для API tickwork-host.
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

// --- Workers ---

// ListWorkers возвращает живые воркеры.
func (c *Client) ListWorkers() ([]WorkerResponse, error) {
	var workers []WorkerResponse
	err := c.list("/api/v1/workers", nil, &workers)
	return workers, err
}

// CreateWorker создаёт и запускает воркер.
func (c *Client) CreateWorker(req CreateWorkerRequest) (*WorkerResponse, error) {
	var w WorkerResponse
	err := c.post("/api/v1/workers", req, &w)
	return &w, err
}

// GetWorker возвращает воркер по id.
func (c *Client) GetWorker(id int64) (*WorkerResponse, error) {
	var w WorkerResponse
	err := c.get(workerPath(id), &w)
	return &w, err
}

// GetState возвращает состояние процессора воркера.
func (c *Client) GetState(id int64, args []string) (*StateResponse, error) {
	path := workerPath(id) + "/state"
	if len(args) > 0 {
		path += "?" + url.Values{"arg": args}.Encode()
	}

	var st StateResponse
	err := c.get(path, &st)
	return &st, err
}

// DeliverInput доставляет значение во вход index воркера.
func (c *Client) DeliverInput(id int64, index int, value any) error {
	body := map[string]any{"value": value}
	return c.post(fmt.Sprintf("%s/inputs/%d", workerPath(id), index), body, nil)
}

// StopWorker просит воркер завершиться.
func (c *Client) StopWorker(id int64) error {
	return c.post(workerPath(id)+"/stop", nil, nil)
}

// ListProviders возвращает имена провайдеров.
func (c *Client) ListProviders() ([]string, error) {
	var names []string
	err := c.list("/api/v1/providers", nil, &names)
	return names, err
}

// --- Timeline ---

// Timeline возвращает запланированные пробуждения.
func (c *Client) Timeline() ([]BucketResponse, error) {
	var buckets []BucketResponse
	err := c.list("/api/v1/timeline", nil, &buckets)
	return buckets, err
}

// --- Journal ---

// ListJournal возвращает журнал запусков с фильтрацией.
func (c *Client) ListJournal(opts ListJournalOpts) ([]RecordResponse, error) {
	params := url.Values{}
	if opts.WorkerID != nil {
		params.Set("worker_id", strconv.FormatInt(*opts.WorkerID, 10))
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var records []RecordResponse
	err := c.list("/api/v1/journal", params, &records)
	return records, err
}

// GetJournalRecord возвращает запись журнала по run_id.
func (c *Client) GetJournalRecord(runID string) (*RecordResponse, error) {
	var rec RecordResponse
	err := c.get("/api/v1/journal/"+url.PathEscape(runID), &rec)
	return &rec, err
}

func workerPath(id int64) string {
	return "/api/v1/workers/" + strconv.FormatInt(id, 10)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
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

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 202 Accepted и 204 No Content приходят без тела
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusAccepted {
		return nil
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

func (c *Client) do(method, path string, body any) (*http.Response, error) {
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

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
