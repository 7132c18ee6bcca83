package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
	"github.com/shopops/order-csv-exporter/internal/transport"
)

// Handler builds the admin HTTP surface: manual exports, async export
// submission, schedule settings and health.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", app.handleHealth)
	mux.HandleFunc("GET /export/download", app.handleDownload)
	mux.HandleFunc("POST /export", app.handleSubmitExport)
	mux.HandleFunc("GET /export/status", app.handleExportStatus)
	mux.HandleFunc("GET /settings", app.handleGetSettings)
	mux.HandleFunc("PUT /settings", app.handlePutSettings)
	return mux
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleDownload runs a synchronous export straight into the HTTP response.
// Records are marked exported before the response body is written, unless
// mark=false; once the stream is committed no code can run after it.
func (app *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := filterFromQuery(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exportFormat, err := formatFromQuery(q, filter.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	policy := model.MarkBeforeDeliver
	if q.Get("mark") == "false" {
		policy = model.DoNotMark
	}

	job := ExportJob{
		Filter:           filter,
		Format:           exportFormat,
		FilenameTemplate: filenameFromQuery(q, filter.Kind),
		Transport:        transport.NewDownload(w),
		MarkPolicy:       policy,
		UnexportedOnly:   q.Get("unexported_only") == "true",
	}

	result, err := app.Orchestrator.Run(r.Context(), job)
	if err != nil {
		writeRunError(w, err)
		return
	}
	if result.Attempted == 0 {
		w.WriteHeader(http.StatusNoContent)
	}
}

type submitExportRequest struct {
	Kind           string   `json:"kind"`
	Statuses       []string `json:"statuses,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	IDs            []int64  `json:"ids,omitempty"`
	Format         string   `json:"format,omitempty"`
	Filename       string   `json:"filename,omitempty"`
	MarkPolicy     string   `json:"mark_policy,omitempty"`
	UnexportedOnly bool     `json:"unexported_only,omitempty"`

	// Transport overrides the configured schedule transport when set.
	Transport *model.TransportConfig `json:"transport,omitempty"`
}

// handleSubmitExport queues an asynchronous export task and returns its id.
// The transport defaults to the one configured for scheduled exports.
func (app *App) handleSubmitExport(w http.ResponseWriter, r *http.Request) {
	var req submitExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	filter, err := filterFromRequest(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	formatName := req.Format
	if formatName == "" {
		formatName = string(model.FormatDefault)
	}
	exportFormat, err := model.ParseExportFormat(formatName, filter.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transportCfg := req.Transport
	if transportCfg == nil {
		cfg, err := app.Settings.Load()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		transportCfg = &cfg.Transport
	}
	if transportCfg.Kind == model.TransportDownload {
		http.Error(w, "download transport cannot be queued; use GET /export/download", http.StatusBadRequest)
		return
	}

	policy := model.MarkPolicy(req.MarkPolicy)
	if policy == "" {
		policy = model.MarkAfterDeliver
	}
	switch policy {
	case model.MarkBeforeDeliver, model.MarkAfterDeliver, model.DoNotMark:
	default:
		http.Error(w, fmt.Sprintf("invalid mark policy: %q", req.MarkPolicy), http.StatusBadRequest)
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename(filter.Kind)
	}

	task := model.ExportTask{
		TaskID:           uuid.NewString(),
		ScheduleKey:      filter.Key(),
		Filter:           filter,
		Format:           exportFormat,
		FilenameTemplate: filename,
		Transport:        *transportCfg,
		MarkPolicy:       policy,
		UnexportedOnly:   req.UnexportedOnly,
	}

	inFlight, err := taskInFlight(app.Cache, task.ScheduleKey)
	if err != nil {
		http.Error(w, "could not check task status", http.StatusInternalServerError)
		return
	}
	if inFlight {
		http.Error(w, "export already in progress for this selection", http.StatusConflict)
		return
	}

	if err := enqueueTask(app.Cache, task); err != nil {
		http.Error(w, "could not queue export task", http.StatusInternalServerError)
		slog.ErrorContext(r.Context(), "order_csv_exporter.server.queue_failed",
			slog.String("error", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"task_id": task.TaskID,
		"status":  model.TaskStatusPending,
	})
}

func (app *App) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task_id")
	if taskID == "" {
		http.Error(w, "task_id is required", http.StatusBadRequest)
		return
	}

	status, err := app.Cache.GetTaskStatus(taskID)
	if err != nil {
		http.Error(w, "could not read task status", http.StatusInternalServerError)
		return
	}
	if status == "" {
		http.Error(w, "unknown task", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"task_id": taskID,
		"status":  status,
	})
}

func (app *App) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := app.Settings.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

// handlePutSettings persists a new schedule config. The settings watcher
// picks up the write and re-arms the scheduler.
func (app *App) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var cfg model.ScheduleConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid settings body", http.StatusBadRequest)
		return
	}
	if cfg.Kind == "" {
		cfg.Kind = model.KindOrder
	}
	if !cfg.Format().ValidFor(cfg.Kind) {
		http.Error(w, fmt.Sprintf("invalid %s export format: %q", cfg.Kind, cfg.Format()), http.StatusBadRequest)
		return
	}
	if err := app.Settings.Save(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeRunError(w http.ResponseWriter, err error) {
	var rejected *apperr.ConcurrentRunRejected
	if apperr.As(err, &rejected) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if apperr.Is(err, apperr.ErrMarkPolicyUnsupported) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

const queryDateLayout = "2006-01-02"

func filterFromQuery(q interface{ Get(string) string }) (model.ExportFilter, error) {
	kind, err := parseKind(q.Get("kind"))
	if err != nil {
		return model.ExportFilter{}, err
	}

	filter := model.ExportFilter{Kind: kind}
	if s := q.Get("statuses"); s != "" {
		filter.Statuses = strings.Split(s, ",")
	}
	if s := q.Get("ids"); s != "" {
		ids, err := parseIDs(s)
		if err != nil {
			return model.ExportFilter{}, err
		}
		filter.IDs = ids
	}
	if s := q.Get("start_date"); s != "" {
		t, err := time.Parse(queryDateLayout, s)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid start_date: %q", s)
		}
		filter.StartDate = &t
	}
	if s := q.Get("end_date"); s != "" {
		t, err := time.Parse(queryDateLayout, s)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid end_date: %q", s)
		}
		// Inclusive of the whole end day.
		t = t.Add(24*time.Hour - time.Second)
		filter.EndDate = &t
	}
	return filter, nil
}

func filterFromRequest(req submitExportRequest) (model.ExportFilter, error) {
	kind, err := parseKind(req.Kind)
	if err != nil {
		return model.ExportFilter{}, err
	}

	filter := model.ExportFilter{Kind: kind, Statuses: req.Statuses, IDs: req.IDs}
	if req.StartDate != "" {
		t, err := time.Parse(queryDateLayout, req.StartDate)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid start_date: %q", req.StartDate)
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(queryDateLayout, req.EndDate)
		if err != nil {
			return model.ExportFilter{}, fmt.Errorf("invalid end_date: %q", req.EndDate)
		}
		t = t.Add(24*time.Hour - time.Second)
		filter.EndDate = &t
	}
	return filter, nil
}

func formatFromQuery(q interface{ Get(string) string }, kind model.RecordKind) (model.ExportFormat, error) {
	name := q.Get("format")
	if name == "" {
		name = string(model.FormatDefault)
	}
	return model.ParseExportFormat(name, kind)
}

func filenameFromQuery(q interface{ Get(string) string }, kind model.RecordKind) string {
	if name := q.Get("filename"); name != "" {
		return name
	}
	return defaultFilename(kind)
}

func defaultFilename(kind model.RecordKind) string {
	if kind == model.KindCustomer {
		return model.DefaultCustomerFilename
	}
	return model.DefaultOrderFilename
}

func parseKind(s string) (model.RecordKind, error) {
	switch model.RecordKind(s) {
	case model.KindOrder, "":
		return model.KindOrder, nil
	case model.KindCustomer:
		return model.KindCustomer, nil
	}
	return "", fmt.Errorf("invalid record kind: %q", s)
}

func parseIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid record id: %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
