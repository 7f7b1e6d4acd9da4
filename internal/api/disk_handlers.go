package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nasware/dpagent/internal/audit"
	"github.com/nasware/dpagent/internal/auth"
	"github.com/nasware/dpagent/internal/diskpart"
)

// DiskHandlers provides HTTP handlers for disk management operations. Every
// endpoint responds with the CommandResult envelope; mutating endpoints
// require a token when auth is enabled.
type DiskHandlers struct {
	manager *diskpart.Manager
	audit   *audit.Logger
	auth    *auth.Manager
}

// NewDiskHandlers creates a new disk handlers instance.
func NewDiskHandlers(manager *diskpart.Manager, auditLogger *audit.Logger, authMgr *auth.Manager) *DiskHandlers {
	return &DiskHandlers{
		manager: manager,
		audit:   auditLogger,
		auth:    authMgr,
	}
}

func (h *DiskHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/disk/list", h.ListDisks)
	mux.HandleFunc("/api/v1/disk/detail", h.DiskDetail)
	mux.HandleFunc("/api/v1/disk/volumes", h.ListVolumes)
	mux.HandleFunc("/api/v1/disk/partitions", h.ListPartitions)
	mux.HandleFunc("/api/v1/disk/wipe", RequireToken(h.auth, h.Wipe))
	mux.HandleFunc("/api/v1/partition/create", RequireToken(h.auth, h.CreatePartition))
	mux.HandleFunc("/api/v1/partition/delete", RequireToken(h.auth, h.DeletePartition))
	mux.HandleFunc("/api/v1/partition/format", RequireToken(h.auth, h.Format))
	mux.HandleFunc("/api/v1/partition/assign", RequireToken(h.auth, h.AssignLetter))
	mux.HandleFunc("/api/v1/partition/remove-letter", RequireToken(h.auth, h.RemoveLetter))
	mux.HandleFunc("/api/v1/partition/active", RequireToken(h.auth, h.SetActive))
	mux.HandleFunc("/api/v1/partition/extend", RequireToken(h.auth, h.Extend))
	mux.HandleFunc("/api/v1/partition/shrink", RequireToken(h.auth, h.Shrink))
}

// ListDisks handles GET /api/v1/disk/list
func (h *DiskHandlers) ListDisks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	res := h.manager.ListDisks(r.Context())
	h.logResult(r, "disk.list", "", res)
	writeResult(w, res)
}

// ListVolumes handles GET /api/v1/disk/volumes
func (h *DiskHandlers) ListVolumes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	res := h.manager.ListVolumes(r.Context())
	h.logResult(r, "disk.volumes", "", res)
	writeResult(w, res)
}

// ListPartitions handles GET /api/v1/disk/partitions?disk=N
func (h *DiskHandlers) ListPartitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	disk, ok := queryInt(w, r, "disk")
	if !ok {
		return
	}

	res := h.manager.ListPartitions(r.Context(), disk)
	h.logResult(r, "disk.partitions", strconv.Itoa(disk), res)
	writeResult(w, res)
}

// DiskDetail handles GET /api/v1/disk/detail?disk=N
func (h *DiskHandlers) DiskDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	disk, ok := queryInt(w, r, "disk")
	if !ok {
		return
	}

	res := h.manager.DiskDetail(r.Context(), disk)
	h.logResult(r, "disk.detail", strconv.Itoa(disk), res)
	writeResult(w, res)
}

// Wipe handles POST /api/v1/disk/wipe
func (h *DiskHandlers) Wipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk   int  `json:"disk"`
		Secure bool `json:"secure"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.Wipe(r.Context(), req.Disk, req.Secure)
	h.logResult(r, "disk.wipe", strconv.Itoa(req.Disk), res)
	writeResult(w, res)
}

// CreatePartition handles POST /api/v1/partition/create
func (h *DiskHandlers) CreatePartition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk   int   `json:"disk"`
		SizeMB int64 `json:"size_mb"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.CreatePartition(r.Context(), req.Disk, req.SizeMB)
	h.logResult(r, "partition.create", strconv.Itoa(req.Disk), res)
	writeResult(w, res)
}

// DeletePartition handles POST /api/v1/partition/delete
func (h *DiskHandlers) DeletePartition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int `json:"disk"`
		Partition int `json:"partition"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.DeletePartition(r.Context(), req.Disk, req.Partition)
	h.logResult(r, "partition.delete", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// Format handles POST /api/v1/partition/format
func (h *DiskHandlers) Format(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk       int    `json:"disk"`
		Partition  int    `json:"partition"`
		FileSystem string `json:"filesystem"`
		Label      string `json:"label"`
		Quick      bool   `json:"quick"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.Format(r.Context(), req.Disk, req.Partition, req.FileSystem, req.Label, req.Quick)
	h.logResult(r, "partition.format", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// AssignLetter handles POST /api/v1/partition/assign
func (h *DiskHandlers) AssignLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int    `json:"disk"`
		Partition int    `json:"partition"`
		Letter    string `json:"letter"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.AssignLetter(r.Context(), req.Disk, req.Partition, req.Letter)
	h.logResult(r, "partition.assign", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// RemoveLetter handles POST /api/v1/partition/remove-letter
func (h *DiskHandlers) RemoveLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int    `json:"disk"`
		Partition int    `json:"partition"`
		Letter    string `json:"letter"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.RemoveLetter(r.Context(), req.Disk, req.Partition, req.Letter)
	h.logResult(r, "partition.remove_letter", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// SetActive handles POST /api/v1/partition/active
func (h *DiskHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int `json:"disk"`
		Partition int `json:"partition"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.SetActive(r.Context(), req.Disk, req.Partition)
	h.logResult(r, "partition.active", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// Extend handles POST /api/v1/partition/extend
func (h *DiskHandlers) Extend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int   `json:"disk"`
		Partition int   `json:"partition"`
		SizeMB    int64 `json:"size_mb"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.Extend(r.Context(), req.Disk, req.Partition, req.SizeMB)
	h.logResult(r, "partition.extend", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

// Shrink handles POST /api/v1/partition/shrink
func (h *DiskHandlers) Shrink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disk      int   `json:"disk"`
		Partition int   `json:"partition"`
		DesiredMB int64 `json:"desired_mb"`
		MinimumMB int64 `json:"minimum_mb"`
	}
	if !decodePost(w, r, &req) {
		return
	}

	res := h.manager.Shrink(r.Context(), req.Disk, req.Partition, req.DesiredMB, req.MinimumMB)
	h.logResult(r, "partition.shrink", partitionResource(req.Disk, req.Partition), res)
	writeResult(w, res)
}

func (h *DiskHandlers) logResult(r *http.Request, action, resource string, res *diskpart.CommandResult) {
	if h.audit == nil {
		return
	}
	h.audit.LogResult(r.Context(), getUser(r), action, resource, r.RemoteAddr, res)
}

func partitionResource(disk, partition int) string {
	return "disk " + strconv.Itoa(disk) + " partition " + strconv.Itoa(partition)
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: name + " parameter is required"})
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "invalid " + name + " parameter"})
		return 0, false
	}
	return value, true
}

func decodePost(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
