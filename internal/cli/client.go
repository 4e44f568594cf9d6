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

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// RefreshPolicyDTO — политика обновления unit из API.
type RefreshPolicyDTO struct {
	IntervalSec int    `json:"interval,omitempty"`
	Scheduled   string `json:"scheduled,omitempty"`
}

// UnitResponse — unit из API.
type UnitResponse struct {
	PluginID      string           `json:"plugin_id"`
	Name          string           `json:"name"`
	Settings      map[string]any   `json:"plugin_settings,omitempty"`
	Refresh       RefreshPolicyDTO `json:"refresh"`
	LatestRefresh string           `json:"latest_refresh_time,omitempty"`
}

// RotationResponse — ротация из API.
type RotationResponse struct {
	Name      string         `json:"name"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Plugins   []UnitResponse `json:"plugins"`
	Cursor    *int           `json:"current_plugin_index,omitempty"`
}

// ActiveResponse — текущая активная ротация из API.
type ActiveResponse struct {
	Rotation *RotationResponse `json:"rotation,omitempty"`
	At       string            `json:"at"`
}

// RefreshJobResponse — принятая заявка на обновление.
type RefreshJobResponse struct {
	JobID string `json:"job_id"`
}

// RefreshRecordResponse — запись журнала обновлений из API.
type RefreshRecordResponse struct {
	RefreshTime    string `json:"refresh_time,omitempty"`
	ImageHash      string `json:"image_hash"`
	RefreshType    string `json:"refresh_type"`
	PluginID       string `json:"plugin_id"`
	Playlist       string `json:"playlist,omitempty"`
	PluginInstance string `json:"plugin_instance,omitempty"`
}

// --- Request types ---

// CreateRotationRequest — создание ротации.
type CreateRotationRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// UpdateRotationRequest — обновление ротации.
type UpdateRotationRequest struct {
	Name      *string `json:"name,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// CreateUnitRequest — добавление unit в ротацию.
type CreateUnitRequest struct {
	PluginID string           `json:"plugin_id"`
	Name     string           `json:"name"`
	Settings map[string]any   `json:"plugin_settings,omitempty"`
	Refresh  RefreshPolicyDTO `json:"refresh"`
}

// UpdateUnitRequest — частичное обновление unit.
type UpdateUnitRequest struct {
	Settings map[string]any    `json:"plugin_settings,omitempty"`
	Refresh  *RefreshPolicyDTO `json:"refresh,omitempty"`
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

// Client — HTTP-клиент для Vitrine API.
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

// --- Rotations ---

// ListRotations возвращает все ротации.
func (c *Client) ListRotations() ([]RotationResponse, error) {
	var rotations []RotationResponse
	err := c.list("/api/v1/rotations", nil, &rotations)
	return rotations, err
}

// CreateRotation создаёт новую ротацию.
func (c *Client) CreateRotation(req CreateRotationRequest) (*RotationResponse, error) {
	var rotation RotationResponse
	err := c.post("/api/v1/rotations", req, &rotation)
	return &rotation, err
}

// GetRotation возвращает ротацию по имени.
func (c *Client) GetRotation(name string) (*RotationResponse, error) {
	var rotation RotationResponse
	err := c.get("/api/v1/rotations/"+url.PathEscape(name), &rotation)
	return &rotation, err
}

// UpdateRotation обновляет ротацию.
func (c *Client) UpdateRotation(name string, req UpdateRotationRequest) (*RotationResponse, error) {
	var rotation RotationResponse
	err := c.put("/api/v1/rotations/"+url.PathEscape(name), req, &rotation)
	return &rotation, err
}

// DeleteRotation удаляет ротацию.
func (c *Client) DeleteRotation(name string) error {
	return c.delete("/api/v1/rotations/" + url.PathEscape(name))
}

// --- Units ---

// AddUnit добавляет unit в ротацию.
func (c *Client) AddUnit(rotation string, req CreateUnitRequest) (*UnitResponse, error) {
	var unit UnitResponse
	err := c.post("/api/v1/rotations/"+url.PathEscape(rotation)+"/plugins", req, &unit)
	return &unit, err
}

// UpdateUnit обновляет unit в ротации.
func (c *Client) UpdateUnit(rotation, pluginID, instance string, req UpdateUnitRequest) (*UnitResponse, error) {
	var unit UnitResponse
	err := c.put(unitPath(rotation, pluginID, instance), req, &unit)
	return &unit, err
}

// RemoveUnit удаляет unit из ротации.
func (c *Client) RemoveUnit(rotation, pluginID, instance string) error {
	return c.delete(unitPath(rotation, pluginID, instance))
}

// RefreshUnit запрашивает внеочередное обновление unit.
func (c *Client) RefreshUnit(rotation, pluginID, instance string) (*RefreshJobResponse, error) {
	var job RefreshJobResponse
	err := c.post(unitPath(rotation, pluginID, instance)+"/refresh", nil, &job)
	return &job, err
}

func unitPath(rotation, pluginID, instance string) string {
	return "/api/v1/rotations/" + url.PathEscape(rotation) +
		"/plugins/" + url.PathEscape(pluginID) + "/" + url.PathEscape(instance)
}

// --- Status ---

// GetActive возвращает активную ротацию. Если at не пустой,
// ротация вычисляется для указанного момента (RFC3339).
func (c *Client) GetActive(at string) (*ActiveResponse, error) {
	path := "/api/v1/status/active"
	if at != "" {
		params := url.Values{}
		params.Set("at", at)
		path = path + "?" + params.Encode()
	}

	var active ActiveResponse
	err := c.get(path, &active)
	return &active, err
}

// ListRefreshLog возвращает последние записи журнала обновлений.
// Непустые pluginID и instance сужают ответ до последней записи unit.
func (c *Client) ListRefreshLog(limit int, pluginID, instance string) ([]RefreshRecordResponse, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if pluginID != "" && instance != "" {
		params.Set("plugin_id", pluginID)
		params.Set("instance", instance)
	}

	var records []RefreshRecordResponse
	err := c.list("/api/v1/refresh-log", params, &records)
	return records, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
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

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
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
