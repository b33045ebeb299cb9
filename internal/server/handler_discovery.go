package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "Busdesk API",
		Version:     "v1",
		Description: "Busdesk console: fleet tables, row actions and exports over the booking service",
		Endpoints: []endpointInfo{
			{"/api/v1/views/{collection}", []string{"GET"}, "One page of a filtered collection. Query: search, status, date, page, refresh=1, owner"},
			{"/api/v1/{collection}", []string{"GET", "POST"}, "GET: the whole collection for local filtering (refresh=1 reloads). POST: create a bus, route or schedule"},
			{"/api/v1/{collection}/{id}", []string{"GET", "PATCH", "DELETE"}, "Read, edit one field ({field, value}) or delete a record"},
			{"/api/v1/{collection}/{id}/fields/{field}", []string{"GET"}, "Prompt description for a field edit, with choices"},
			{"/api/v1/owners/{id}/toggle", []string{"POST"}, "Block or unblock an owner"},
			{"/api/v1/exports/{collection}", []string{"GET", "POST"}, "Every filtered row as a table; POST uploads it to the export bucket"},
			{"/api/v1/lookups", []string{"GET"}, "Buses, routes and operators that schedule rows refer to by id"},
			{"/api/v1/summary", []string{"GET"}, "Dashboard counts"},
			{"/api/v1/notices", []string{"GET"}, "Pop the caller's pending notices"},
			{"/api/v1/actions", []string{"GET"}, "Action journal. Query: collection, owner, entity, mine=1, limit, offset"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
