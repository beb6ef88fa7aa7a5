package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/termgate/termgate/internal/audit"
	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/middleware"
	"github.com/termgate/termgate/internal/sshkeys"
)

// ListSSHKeys returns stored keys with search, type filter, pagination and
// type counts. Private key material is never included in list responses.
// GET /api/v1/ssh-keys
func ListSSHKeys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pagination(r)

	keys, total, err := database.ListSSHKeys(database.SSHKeyFilter{
		Search:  q.Get("search"),
		Types:   q["type"],
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list SSH keys")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ssh_keys": keys,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"type_counts": map[string]int64{
			"rsa":     database.CountSSHKeysByType("rsa"),
			"ed25519": database.CountSSHKeysByType("ed25519"),
			"ecdsa":   database.CountSSHKeysByType("ecdsa"),
		},
	})
}

// GenerateSSHKey generates and stores a new key pair. The fingerprint is
// always derived from the generated public key; callers cannot supply one.
// The private key is returned once, in this response only.
// POST /api/v1/ssh-keys {name, algorithm, key_size?, passphrase?}
func GenerateSSHKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Algorithm  string `json:"algorithm"`
		KeySize    int    `json:"key_size"`
		Passphrase string `json:"passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	alg, err := sshkeys.ParseAlgorithm(body.Algorithm, body.KeySize)
	if err != nil {
		var invalid *sshkeys.InvalidAlgorithmError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusUnprocessableEntity, invalid.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pair, err := sshkeys.Generate(alg, body.Passphrase)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Key generation failed: "+err.Error())
		return
	}

	key := database.SSHKey{
		Name:        body.Name,
		Type:        body.Algorithm,
		KeySize:     body.KeySize,
		PublicKey:   pair.PublicKey,
		PrivateKey:  pair.PrivateKey,
		Fingerprint: pair.Fingerprint,
	}
	if user := middleware.GetUser(r); user != nil {
		key.UserID = user.ID
	}

	if err := database.CreateSSHKey(&key); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store SSH key")
		return
	}

	Auditor.Record(audit.Entry{
		EventType: audit.EventKeyGenerated,
		Actor:     actorName(r),
		SourceIP:  r.RemoteAddr,
		Details:   pair.Fingerprint,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SSH key generated successfully",
		"ssh_key": key,
		"generated_keys": map[string]string{
			"public_key":  pair.PublicKey,
			"private_key": pair.PrivateKey,
			"fingerprint": pair.Fingerprint,
		},
	})
}

// UpdateSSHKey modifies a stored key's name or material. When the public
// key changes the fingerprint is recomputed from it; it is derived state
// and never independently mutable.
// PUT /api/v1/ssh-keys/{id}
func UpdateSSHKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid SSH key ID")
		return
	}

	key, err := database.GetSSHKey(uint(id))
	if err != nil {
		writeError(w, http.StatusNotFound, "SSH key not found")
		return
	}

	var body struct {
		Name       string `json:"name"`
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	key.Name = body.Name
	if body.PublicKey != "" && body.PublicKey != key.PublicKey {
		fingerprint, err := sshkeys.Fingerprint(body.PublicKey)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "public_key is not a valid OpenSSH public key")
			return
		}
		key.PublicKey = body.PublicKey
		key.Fingerprint = fingerprint
	}
	if body.PrivateKey != "" {
		key.PrivateKey = body.PrivateKey
	}

	if err := database.SaveSSHKey(key); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update SSH key")
		return
	}
	writeJSON(w, http.StatusOK, key)
}

// DeleteSSHKey removes one stored key.
// DELETE /api/v1/ssh-keys/{id}
func DeleteSSHKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid SSH key ID")
		return
	}
	if _, err := database.GetSSHKey(uint(id)); err != nil {
		writeError(w, http.StatusNotFound, "SSH key not found")
		return
	}
	if err := database.DeleteSSHKeys([]uint{uint(id)}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete SSH key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BulkDeleteSSHKeys removes a set of stored keys.
// POST /api/v1/ssh-keys/bulk-delete {ids}
func BulkDeleteSSHKeys(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := database.DeleteSSHKeys(body.IDs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete SSH keys")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
