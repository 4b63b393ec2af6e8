package webui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mzyy94/plugd/internal/amp"
	"github.com/mzyy94/plugd/internal/config"
	"github.com/mzyy94/plugd/internal/mustang"
)

//go:embed static
var staticFS embed.FS

type handler struct {
	amp              *amp.Amp
	settings         *config.Store
	defaultExportDir string
	export           amp.ExportStatus
}

// NewHandler creates an HTTP handler for the Web UI and its JSON API.
// settings must not be nil; use config.NewMemoryStore when nothing should be
// persisted. Exports go to the configured export directory, or
// defaultExportDir when none is set.
func NewHandler(a *amp.Amp, settings *config.Store, defaultExportDir string) http.Handler {
	h := &handler{amp: a, settings: settings, defaultExportDir: defaultExportDir}
	mux := http.NewServeMux()
	staticContent, _ := fs.Sub(staticFS, "static")
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/presets", h.handlePresets)
	mux.HandleFunc("GET /api/banks/{slot}", h.handleLoadBank)
	mux.HandleFunc("POST /api/banks/{slot}/save", h.handleSaveBank)
	mux.HandleFunc("PUT /api/amplifier", h.handleSetAmplifier)
	mux.HandleFunc("PUT /api/effects", h.handleSetEffect)
	mux.HandleFunc("POST /api/quickfx/{slot}", h.handleSaveQuickFX)
	mux.HandleFunc("GET /api/sheet.pdf", h.handleSheet)
	mux.HandleFunc("POST /api/export", h.handleExport)
	mux.HandleFunc("GET /api/settings", h.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.handlePutSettings)
	mux.Handle("GET /", http.FileServer(http.FS(staticContent)))
	return mux
}

type statusResponse struct {
	Online    bool             `json:"online"`
	Device    deviceInfo       `json:"device"`
	Program   string           `json:"program"`
	Export    amp.ExportStatus `json:"export"`
	UpdatedAt string           `json:"updatedAt"`
}

type deviceInfo struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Presets   int    `json:"presets"`
	ProductID string `json:"productId"`
}

func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.amp.Snapshot()
	resp := statusResponse{
		Online: snap.Online,
		Device: deviceInfo{
			Name:      snap.Model.Name,
			Category:  snap.Model.Category.String(),
			Presets:   snap.Model.NumberOfPresets,
			ProductID: fmt.Sprintf("%04x", snap.Model.ProductID),
		},
		Program:   snap.Current.Name,
		Export:    h.export.Snapshot(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	snap := h.amp.Snapshot()
	if !snap.Online {
		writeError(w, mustang.ErrNotConnected)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- Programs ---

func (h *handler) handleLoadBank(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}
	chain, err := h.amp.LoadBank(slot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chain)
}

type saveRequest struct {
	Name    string                    `json:"name"`
	Effects []mustang.FxPedalSettings `json:"effects,omitempty"`
}

func (h *handler) handleSaveBank(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.amp.SaveBank(slot, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleSetAmplifier(w http.ResponseWriter, r *http.Request) {
	var s mustang.AmpSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.amp.SetAmplifier(s); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) handleSetEffect(w http.ResponseWriter, r *http.Request) {
	var e mustang.FxPedalSettings
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil || !validEffect(e) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.amp.SetEffect(e); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *handler) handleSaveQuickFX(w http.ResponseWriter, r *http.Request) {
	slot, ok := parseSlot(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	for _, e := range req.Effects {
		if !validEffect(e) {
			http.Error(w, "invalid effect", http.StatusBadRequest)
			return
		}
	}
	if err := h.amp.SaveEffects(slot, req.Name, req.Effects); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Patch sheet ---

func (h *handler) handleSheet(w http.ResponseWriter, r *http.Request) {
	snap := h.amp.Snapshot()
	if !snap.Online {
		writeError(w, mustang.ErrNotConnected)
		return
	}
	data, err := amp.GenerateSheet(snap)
	if err != nil {
		slog.Warn("patch sheet failed", "err", err)
		http.Error(w, "failed to generate patch sheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="patches.pdf"`)
	w.Write(data)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if !h.amp.Online() {
		writeError(w, mustang.ErrNotConnected)
		return
	}
	if !h.export.Begin() {
		http.Error(w, "export already running", http.StatusConflict)
		return
	}
	dir := h.settings.Get().ExportDir
	if dir == "" {
		dir = h.defaultExportDir
	}
	go func() {
		path, err := amp.RunExportJob(h.amp, dir)
		if err != nil {
			slog.Warn("export failed", "err", err)
		}
		h.export.SetResult(err, path)
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"dir": dir})
}

// --- Settings API ---

func (h *handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

func (h *handler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var s config.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.settings.Update(s); err != nil {
		slog.Warn("settings save failed", "err", err)
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- helpers ---

func parseSlot(w http.ResponseWriter, r *http.Request) (byte, bool) {
	n, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil || n < 0 || n > 255 {
		http.Error(w, "invalid slot", http.StatusBadRequest)
		return 0, false
	}
	return byte(n), true
}

func validEffect(e mustang.FxPedalSettings) bool {
	return e.Slot <= 3 && e.Effect >= mustang.EffectEmpty && e.Effect <= mustang.EffectFender65SpringReverb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mustang.ErrNotConnected):
		status = http.StatusServiceUnavailable
	case errors.Is(err, mustang.ErrMalformedResponse):
		status = http.StatusBadGateway
	case errors.Is(err, mustang.ErrNoEffects):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Warn("amplifier request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}
