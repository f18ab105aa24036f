package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"whatsapp-chat-parser/internal/adapters/exporter"
	"whatsapp-chat-parser/internal/cache"
	"whatsapp-chat-parser/internal/domain"
	applog "whatsapp-chat-parser/internal/log"
	"whatsapp-chat-parser/internal/pkg/config"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 1000
)

// ChatProcessor определяет интерфейс для варианта использования, который разбирает чаты.
type ChatProcessor interface {
	ProcessChat(ctx context.Context, data []byte, opts domain.Options) (*domain.ParseResult, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore *cache.CacheStore
	processor  ChatProcessor
	log        *slog.Logger
	stop       context.CancelFunc
}

// Pagination описывает страницу результата.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// TaskStatusResponse — ответ на запрос статуса задачи.
type TaskStatusResponse struct {
	TaskID       string     `json:"task_id"`
	FileName     string     `json:"file_name,omitempty"`
	Status       TaskStatus `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// TaskResultResponse — страница строк таблицы вместе с диагностикой разбора.
type TaskResultResponse struct {
	Pagination  Pagination               `json:"pagination"`
	Columns     []string                 `json:"columns"`
	Data        []map[string]any         `json:"data"`
	Diagnostics *exporter.DiagnosticsDTO `json:"diagnostics,omitempty"`
}

// New создает новый экземпляр Server и запускает очистку просроченных задач и кеша.
func New(cfg *config.Config, processor ChatProcessor, taskStore *TaskStore, cacheStore *cache.CacheStore) (*Server, error) {
	if _, err := cfg.ParseOptions(); err != nil {
		return nil, fmt.Errorf("некорректные опции разбора по умолчанию: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		processor:  processor,
		log:        slog.Default().With("component", "server"),
		stop:       cancel,
	}

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.routes(),
		ReadTimeout:  config.DefaultReadTimeout,
		WriteTimeout: config.DefaultWriteTimeout,
		IdleTimeout:  config.DefaultIdleTimeout,
	}

	s.taskStore.StartCleanupTicker(ctx, config.DefaultCleanupInterval)
	s.cacheStore.StartCleanupTicker(ctx, config.DefaultCleanupInterval)

	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// Промежуточное ПО
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	// Журнал запросов идет через slog, чтобы к нему применялась маскировка
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  &applog.SlogAdapter{Logger: s.log},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", s.handleTaskStatus)
			r.Get("/result", s.handleTaskResult)
			r.Get("/export", s.handleTaskExport)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleParse принимает файл экспорта и запускает задачу разбора в фоне.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	limit := s.uploadLimit()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Не удалось прочитать загруженный файл", http.StatusBadRequest)
		return
	}

	base, err := s.cfg.ParseOptions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	opts, err := optionsFromForm(base, r.MultipartForm.Value)
	if err != nil {
		http.Error(w, fmt.Sprintf("Некорректные опции разбора: %v", err), http.StatusBadRequest)
		return
	}

	taskID := uuid.NewString()
	s.taskStore.CreateTask(taskID, header.Filename, s.taskTTL())
	s.log.InfoContext(r.Context(), "Задача разбора создана",
		"task_id", taskID, "file", header.Filename, "size", len(data))

	go s.runTask(taskID, data, opts)

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) runTask(taskID string, data []byte, opts domain.Options) {
	s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

	// Контекст задачи не зависит от запроса, ограничен таймаутом из конфигурации.
	taskCtx := context.Background()
	if s.cfg.Processing.TaskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, s.cfg.Processing.TaskTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.processor.ProcessChat(taskCtx, data, opts)
	if err != nil {
		s.log.WarnContext(taskCtx, "Задача разбора завершилась ошибкой", "task_id", taskID, "error", err)
		s.taskStore.UpdateTaskError(taskID, err.Error())
		return
	}

	s.taskStore.UpdateTaskResult(taskID, result)
	s.log.InfoContext(taskCtx, "Задача разбора завершена",
		"task_id", taskID, "rows", result.Table.Len(), "duration", time.Since(start).String())
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, TaskStatusResponse{
		TaskID:       task.ID,
		FileName:     task.FileName,
		Status:       task.Status,
		ErrorMessage: task.ErrorMessage,
	})
}

// handleTaskResult возвращает страницу строк таблицы и диагностику.
func (s *Server) handleTaskResult(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}

	page, err := queryInt(r, "page", defaultPage)
	if err != nil || page < 1 {
		http.Error(w, "Некорректный номер страницы", http.StatusBadRequest)
		return
	}
	pageSize, err := queryInt(r, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 {
		http.Error(w, "Некорректный размер страницы", http.StatusBadRequest)
		return
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	table := task.Result.Table
	totalItems := table.Len()
	start := (page - 1) * pageSize
	if start > totalItems {
		start = totalItems
	}
	end := start + pageSize
	if end > totalItems {
		end = totalItems
	}

	rows := make([]map[string]any, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, table.Row(i))
	}

	writeJSON(w, http.StatusOK, TaskResultResponse{
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  totalItems,
			TotalPages:  (totalItems + pageSize - 1) / pageSize,
		},
		Columns:     table.Columns(),
		Data:        rows,
		Diagnostics: exporter.NewDiagnosticsDTO(task.Result.Diagnostics),
	})
}

// handleTaskExport отдает результат задачи файлом в формате csv, json или xlsx.
func (s *Server) handleTaskExport(w http.ResponseWriter, r *http.Request) {
	task, ok := s.completedTask(w, r)
	if !ok {
		return
	}

	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil || !downloadable(format) {
		http.Error(w, "Формат должен быть одним из: csv, json, xlsx", http.StatusBadRequest)
		return
	}
	long, err := exporter.ParseLongColumn(r.URL.Query().Get("long"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	e, err := exporter.New(format, &buf, exporter.Settings{Long: long})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := e.Export(task.Result); err != nil {
		s.log.ErrorContext(r.Context(), "Не удалось экспортировать результат", "task_id", task.ID, "error", err)
		http.Error(w, "Не удалось экспортировать результат", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "chat_"+task.ID+"."+string(format)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var contentTypes = map[exporter.Format]string{
	exporter.FormatCSV:  "text/csv; charset=utf-8",
	exporter.FormatJSON: "application/json",
	exporter.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func downloadable(f exporter.Format) bool {
	_, ok := contentTypes[f]
	return ok
}

// completedTask находит задачу и проверяет, что она завершена; иначе пишет ответ с ошибкой.
func (s *Server) completedTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return nil, false
	}
	if task.Status != TaskStatusCompleted || task.Result == nil {
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return nil, false
	}
	return task, true
}

func (s *Server) uploadLimit() int64 {
	if limit := s.cfg.MaxUploadBytes(); limit > 0 {
		return limit
	}
	return int64(config.DefaultMaxUploadSizeMB) << 20
}

func (s *Server) taskTTL() time.Duration {
	if s.cfg.Processing.TaskTTL > 0 {
		return s.cfg.Processing.TaskTTL
	}
	return config.DefaultTaskTTL
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера и останавливает фоновую очистку
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.InfoContext(ctx, "Завершение работы HTTP-сервера")
	s.stop()
	return s.HTTPServer.Shutdown(ctx)
}
