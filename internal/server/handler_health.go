package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Uptime     string `json:"uptime"`
	BookingAPI string `json:"booking_api"`
	Owner      string `json:"default_owner,omitempty"`
	PageSize   int    `json:"page_size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, healthResponse{
		Status:     "healthy",
		Version:    Version,
		GoVersion:  runtime.Version(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		BookingAPI: s.config.APIURL,
		Owner:      s.config.Owner,
		PageSize:   s.svc.PageSize(),
	})
}
