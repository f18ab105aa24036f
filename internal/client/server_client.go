// Package client содержит HTTP-клиент API сервера разбора.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Статусы задач, возвращаемые сервером.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrTaskFailed возвращается WaitForTask, если сервер завершил задачу с ошибкой.
var ErrTaskFailed = errors.New("task failed")

// ServerClient — клиент для взаимодействия с API бэкенд-сервера.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServerClient создает новый экземпляр ServerClient.
func NewServerClient(baseURL string, timeout time.Duration) *ServerClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout, // Общий таймаут для запросов
		},
	}
}

// API-ответы
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

type TaskStatusResponse struct {
	TaskID       string `json:"task_id"`
	FileName     string `json:"file_name,omitempty"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// PaginationDTO представляет собой объект пагинации из ответа сервера.
type PaginationDTO struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// MalformedDTO описывает блок, отброшенный сервером из-за некорректной метки времени.
type MalformedDTO struct {
	Index  int    `json:"index"`
	Prefix string `json:"prefix"`
	Reason string `json:"reason"`
}

// DiagnosticsDTO представляет диагностику разбора из ответа сервера.
type DiagnosticsDTO struct {
	Platform         string         `json:"platform"`
	Language         string         `json:"language"`
	PreambleLength   int            `json:"preamble_length"`
	Segments         int            `json:"segments"`
	Malformed        []MalformedDTO `json:"malformed,omitempty"`
	Pruned           int            `json:"pruned"`
	RemovedByConsent int            `json:"removed_by_consent"`
	Warnings         []string       `json:"warnings"`
}

type TaskResultResponse struct {
	Pagination  PaginationDTO    `json:"pagination"`
	Columns     []string         `json:"columns"`
	Data        []map[string]any `json:"data"`
	Diagnostics *DiagnosticsDTO  `json:"diagnostics,omitempty"`
}

// DocumentFile представляет файл для загрузки.
type DocumentFile struct {
	Name    string
	Content io.Reader
}

// StartTask отправляет файл экспорта на сервер вместе с опциями разбора
// (platform, language, smilies, urls, anon, order, consent, anonymize_mentions, timezone).
func (c *ServerClient) StartTask(ctx context.Context, file DocumentFile, options map[string]string) (*StartTaskResponse, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file for %s: %w", file.Name, err)
	}
	if _, err = io.Copy(fw, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file content for %s: %w", file.Name, err)
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, options[k]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/parse", &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result StartTaskResponse
	if err := c.do(req, http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	if result.TaskID == "" {
		return nil, fmt.Errorf("task id is missing in response")
	}
	return &result, nil
}

// GetTaskStatus запрашивает статус задачи.
func (c *ServerClient) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tasks/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result TaskStatusResponse
	if err := c.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskResult запрашивает страницу результата выполненной задачи.
func (c *ServerClient) GetTaskResult(ctx context.Context, taskID string, page, pageSize int) (*TaskResultResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u := fmt.Sprintf("%s/api/v1/tasks/%s/result?%s", c.baseURL, url.PathEscape(taskID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result TaskResultResponse
	if err := c.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAllRows последовательно загружает все страницы результата.
// Диагностика берется из первой страницы.
func (c *ServerClient) GetAllRows(ctx context.Context, taskID string, pageSize int) (*TaskResultResponse, error) {
	first, err := c.GetTaskResult(ctx, taskID, 1, pageSize)
	if err != nil {
		return nil, err
	}

	for page := 2; page <= first.Pagination.TotalPages; page++ {
		next, err := c.GetTaskResult(ctx, taskID, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		first.Data = append(first.Data, next.Data...)
	}
	first.Pagination.CurrentPage = 1
	first.Pagination.PageSize = len(first.Data)
	first.Pagination.TotalPages = 1
	return first, nil
}

// DownloadExport скачивает результат задачи в формате csv, json или xlsx.
// long задает колонку длинного формата; пустая строка — широкий формат.
func (c *ServerClient) DownloadExport(ctx context.Context, taskID, format, long string) ([]byte, error) {
	q := url.Values{}
	q.Set("format", format)
	if long != "" {
		q.Set("long", long)
	}
	u := fmt.Sprintf("%s/api/v1/tasks/%s/export?%s", c.baseURL, url.PathEscape(taskID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// WaitForTask опрашивает статус задачи с интервалом interval, пока она не завершится.
// onStatus, если задан, вызывается после каждого опроса.
func (c *ServerClient) WaitForTask(ctx context.Context, taskID string, interval time.Duration, onStatus func(*TaskStatusResponse)) (*TaskStatusResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetTaskStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if onStatus != nil {
			onStatus(status)
		}

		switch status.Status {
		case StatusCompleted:
			return status, nil
		case StatusFailed:
			return status, fmt.Errorf("%w: %s", ErrTaskFailed, status.ErrorMessage)
		case StatusPending, StatusProcessing:
		default:
			return status, fmt.Errorf("unknown task status: %s", status.Status)
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *ServerClient) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
