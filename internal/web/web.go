package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"panelctl/internal/config"
	appLog "panelctl/internal/log"
	"panelctl/internal/panel"
)

// Controller is what the API drives. *service.Service implements it.
type Controller interface {
	Status() panel.Status
	Descriptor() *panel.Descriptor
	PowerOn() error
	PowerOff() error
	SetCabcMode(m panel.CabcMode) error
	SetDimming(on bool) error
	SetBrightness(level int) error
}

// Server provides the HTTP API for panel status and control.
type Server struct {
	cfg  *config.Config
	ctrl Controller
	mux  *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, ctrl Controller) *Server {
	s := &Server{
		cfg:  cfg,
		ctrl: ctrl,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. An empty
// username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="panelctl", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config, ctrl Controller) error {
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           NewServer(cfg, ctrl).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/panel", s.handlePanel)
	s.mux.HandleFunc("POST /api/panel/power", s.handlePower)
	s.mux.HandleFunc("POST /api/panel/cabc", s.handleCabc)
	s.mux.HandleFunc("POST /api/panel/dimming", s.handleDimming)
	s.mux.HandleFunc("POST /api/panel/brightness", s.handleBrightness)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type modeDTO struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	RefreshHz int `json:"refresh_hz"`
	ClockKHz  int `json:"clock_khz"`
	WidthMM   int `json:"width_mm"`
	HeightMM  int `json:"height_mm"`
	BPC       int `json:"bpc"`
}

type descriptorDTO struct {
	Lanes             int      `json:"lanes"`
	MinBrightness     int      `json:"min_brightness"`
	MaxBrightness     int      `json:"max_brightness"`
	DefaultBrightness int      `json:"default_brightness"`
	HDR               []string `json:"hdr"`
	Mode              modeDTO  `json:"mode"`
}

type panelResponse struct {
	panel.Status
	Nits       int           `json:"nits"`
	Percent    int           `json:"percent"`
	Descriptor descriptorDTO `json:"descriptor"`
}

func describe(d *panel.Descriptor) descriptorDTO {
	dto := descriptorDTO{
		Lanes:             d.Lanes,
		MinBrightness:     d.MinBrightness,
		MaxBrightness:     d.MaxBrightness,
		DefaultBrightness: d.DefaultBrightness,
		HDR:               []string{},
		Mode: modeDTO{
			Width:     d.Mode.HDisplay,
			Height:    d.Mode.VDisplay,
			RefreshHz: d.Mode.RefreshHz(),
			ClockKHz:  d.Mode.Clock,
			WidthMM:   d.Mode.WidthMM,
			HeightMM:  d.Mode.HeightMM,
			BPC:       d.Mode.BitsPerColor,
		},
	}
	for _, f := range []struct {
		bit  panel.HDRFormat
		name string
	}{
		{panel.HDRDolbyVision, "dolby_vision"},
		{panel.HDRHDR10, "hdr10"},
		{panel.HDRHLG, "hlg"},
	} {
		if d.Supports(f.bit) {
			dto.HDR = append(dto.HDR, f.name)
		}
	}
	return dto
}

func (s *Server) handlePanel(w http.ResponseWriter, _ *http.Request) {
	st := s.ctrl.Status()
	d := s.ctrl.Descriptor()
	writeJSON(w, http.StatusOK, panelResponse{
		Status:     st,
		Nits:       d.NitsForLevel(st.Brightness),
		Percent:    d.PercentForLevel(st.Brightness),
		Descriptor: describe(d),
	})
}

type powerRequest struct {
	On *bool `json:"on"`
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.On == nil {
		writeError(w, http.StatusBadRequest, `"on" is required`)
		return
	}
	var err error
	if *req.On {
		err = s.ctrl.PowerOn()
	} else {
		err = s.ctrl.PowerOff()
	}
	s.reply(w, "power", err)
}

type cabcRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleCabc(w http.ResponseWriter, r *http.Request) {
	var req cabcRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := panel.ParseCabcMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.reply(w, "cabc", s.ctrl.SetCabcMode(m))
}

type dimmingRequest struct {
	On *bool `json:"on"`
}

func (s *Server) handleDimming(w http.ResponseWriter, r *http.Request) {
	var req dimmingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.On == nil {
		writeError(w, http.StatusBadRequest, `"on" is required`)
		return
	}
	s.reply(w, "dimming", s.ctrl.SetDimming(*req.On))
}

type brightnessRequest struct {
	Level *int `json:"level"`
}

func (s *Server) handleBrightness(w http.ResponseWriter, r *http.Request) {
	var req brightnessRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Level == nil {
		writeError(w, http.StatusBadRequest, `"level" is required`)
		return
	}
	s.reply(w, "brightness", s.ctrl.SetBrightness(*req.Level))
}

// reply maps a controller error to a status code, or writes the new panel
// status on success.
func (s *Server) reply(w http.ResponseWriter, op string, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.ctrl.Status())
	case errors.Is(err, panel.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, panel.ErrBrightnessRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("api "+op+" failed", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

const maxBody = 4 << 10

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
