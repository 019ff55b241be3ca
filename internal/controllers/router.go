package controllers

import "net/http"

// RegisterRoutes wires the HTTP routes for this controller.
func (c *CasesController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/cases", c.RequireAuth(c.handleCreateCase))
	mux.HandleFunc("GET /api/cases/{id}", c.RequireAuth(c.handleGetCaseById))
	mux.HandleFunc("GET /api/cases/byRef/{caseRef}", c.RequireAuth(c.handleGetCaseByRef))
	mux.HandleFunc("GET /api/cases/{id}/transitions", c.RequireAuth(c.handleGetTransitions))
	mux.HandleFunc("GET /api/cases/{id}/transitions/{toStage}/validate", c.RequireAuth(c.handleValidateTransition))
	mux.HandleFunc("POST /api/cases/{id}/transitions", c.RequireAuth(c.handleExecuteTransition))
	mux.HandleFunc("GET /api/cases/{id}/timeline", c.RequireAuth(c.handleGetTimeline))
	mux.HandleFunc("GET /api/cases/{id}/workItems", c.RequireAuth(c.handleGetWorkItems))
	mux.HandleFunc("POST /api/cases/{id}/workItems", c.RequireAuth(c.handleCreateWorkItem))
	mux.HandleFunc("POST /api/workItems/{id}", c.RequireAuth(c.handleUpdateWorkItem))
}
