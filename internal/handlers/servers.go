package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/middleware"
)

type serverRequest struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SSHKeyID  *uint  `json:"ssh_key_id"`
	Status    string `json:"status"`
	AuthType  string `json:"auth_type"`
}

func (req *serverRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.IPAddress == "" {
		return "ip_address is required"
	}
	if req.Port <= 0 || req.Port > 65535 {
		return "port must be between 1 and 65535"
	}
	if req.Username == "" {
		return "username is required"
	}
	if req.Status != "active" && req.Status != "inactive" {
		return "status must be active or inactive"
	}
	if req.AuthType != database.AuthTypePassword && req.AuthType != database.AuthTypePrivateKey {
		return "auth_type must be password or private_key"
	}
	return ""
}

// apply copies the request onto a server record, keeping the invariant
// that exactly one of password / key reference is populated.
func (req *serverRequest) apply(s *database.Server) {
	s.Name = req.Name
	s.IPAddress = req.IPAddress
	s.Port = req.Port
	s.Username = req.Username
	s.Status = req.Status
	s.AuthType = req.AuthType
	switch req.AuthType {
	case database.AuthTypePassword:
		if req.Password != "" {
			s.Password = req.Password
		}
		s.SSHKeyID = nil
	case database.AuthTypePrivateKey:
		s.SSHKeyID = req.SSHKeyID
		s.Password = ""
	}
}

// ListServers returns servers with search, status and auth_type filters,
// pagination, and the per-filter counts the panel renders.
// GET /api/v1/servers
func ListServers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pagination(r)

	servers, total, err := database.ListServers(database.ServerFilter{
		Search:    q.Get("search"),
		Statuses:  q["status"],
		AuthTypes: q["auth_type"],
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list servers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"servers":  servers,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"status_counts": map[string]int64{
			"active":   database.CountServersByStatus("active"),
			"inactive": database.CountServersByStatus("inactive"),
		},
		"auth_type_counts": map[string]int64{
			"password":    database.CountServersByAuthType(database.AuthTypePassword),
			"private_key": database.CountServersByAuthType(database.AuthTypePrivateKey),
		},
	})
}

// CreateServer stores a new server record.
// POST /api/v1/servers
func CreateServer(w http.ResponseWriter, r *http.Request) {
	var req serverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	server := database.Server{}
	req.apply(&server)
	if user := middleware.GetUser(r); user != nil {
		server.UserID = user.ID
	}

	if err := database.CreateServer(&server); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create server")
		return
	}
	writeJSON(w, http.StatusCreated, server)
}

// UpdateServer modifies an existing server record.
// PUT /api/v1/servers/{id}
func UpdateServer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server ID")
		return
	}

	server, err := database.GetServer(uint(id))
	if err != nil {
		writeError(w, http.StatusNotFound, "Server not found")
		return
	}

	var req serverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	req.apply(server)
	if err := database.SaveServer(server); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update server")
		return
	}
	writeJSON(w, http.StatusOK, server)
}

// DeleteServer removes one server record.
// DELETE /api/v1/servers/{id}
func DeleteServer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid server ID")
		return
	}
	if _, err := database.GetServer(uint(id)); err != nil {
		writeError(w, http.StatusNotFound, "Server not found")
		return
	}
	if err := database.DeleteServers([]uint{uint(id)}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete server")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BulkDeleteServers removes a set of server records.
// POST /api/v1/servers/bulk-delete {ids}
func BulkDeleteServers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := database.DeleteServers(body.IDs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete servers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
