// Package server exposes result folders and the plot and viewer nodes over HTTP.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/xyzplot/internal/engine"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/naming"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
	"github.com/alexisbeaulieu97/xyzplot/internal/viewer"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// Prefix is the route prefix shared with the host's extension routes.
const Prefix = "/artify_testing"

// DefaultMaxBodyBytes bounds node execution request bodies, which carry base64 images.
const DefaultMaxBodyBytes = 256 << 20

// HandlerConfig wires the handler to its collaborators.
type HandlerConfig struct {
	Store      *store.Store
	Cache      *manifest.Cache
	Plot       *engine.PlotNode
	Viewer     *viewer.Node
	Compositor *viewer.Compositor
	Logger     *logger.Logger
	// MaxBodyBytes limits POST bodies; zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Handler provides the HTTP endpoints.
type Handler struct {
	store      *store.Store
	cache      *manifest.Cache
	plot       *engine.PlotNode
	viewer     *viewer.Node
	compositor *viewer.Compositor
	log        *logger.Logger
	maxBody    int64
}

// NewHandler validates cfg and fills defaults. Plot is optional; without it the plot
// route answers 503.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("result store is required")
	}
	h := &Handler{
		store:      cfg.Store,
		cache:      cfg.Cache,
		plot:       cfg.Plot,
		viewer:     cfg.Viewer,
		compositor: cfg.Compositor,
		log:        cfg.Logger,
		maxBody:    cfg.MaxBodyBytes,
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	h.log = h.log.Component("server")
	if h.cache == nil {
		h.cache = manifest.NewCache(0, 0, h.log)
	}
	if h.viewer == nil {
		h.viewer = viewer.NewNode(h.store, h.cache, h.log)
	}
	if h.compositor == nil {
		h.compositor = viewer.NewCompositor(0, 0)
	}
	if h.maxBody <= 0 {
		h.maxBody = DefaultMaxBodyBytes
	}
	return h, nil
}

// Routes returns an http.Handler with all routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+Prefix+"/xyz/result", h.Result)
	mux.HandleFunc("GET "+Prefix+"/xyz/images", h.Images)
	mux.HandleFunc("GET "+Prefix+"/xyz/preview", h.Preview)

	mux.HandleFunc("POST "+Prefix+"/xyz/plot/execute", h.ExecutePlot)
	mux.HandleFunc("POST "+Prefix+"/xyz/viewer/execute", h.ExecuteViewer)

	mux.HandleFunc("GET /health", h.Health)

	return h.logRequests(mux)
}

// Result returns the manifest of a folder with folder_name echoed.
// GET /artify_testing/xyz/result?folder_name=F
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	folder, ok := h.folderParam(w, r)
	if !ok {
		return
	}

	doc, err := h.cache.Document(h.store.FolderPath(folder))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("result.json not found for folder '%s'", folder))
			return
		}
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read result.json: %v", err))
		return
	}

	doc["folder_name"] = folder
	h.writeJSON(w, http.StatusOK, doc)
}

// ImagesResponse lists the image files of a folder.
type ImagesResponse struct {
	FolderName string   `json:"folder_name"`
	Files      []string `json:"files"`
}

// Images lists image files, sorted case-insensitively.
// GET /artify_testing/xyz/images?folder_name=F
func (h *Handler) Images(w http.ResponseWriter, r *http.Request) {
	folder, ok := h.folderParam(w, r)
	if !ok {
		return
	}
	if !h.store.Exists(folder) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("folder not found: '%s'", folder))
		return
	}

	files, err := h.store.ListImages(folder)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list images: %v", err))
		return
	}
	h.writeJSON(w, http.StatusOK, ImagesResponse{FolderName: folder, Files: files})
}

// Preview renders one z slice of the grid as PNG.
// GET /artify_testing/xyz/preview?folder_name=F&z=0&batch=0&labels=1
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	folder, ok := h.folderParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	opts := viewer.RenderOptions{Folder: folder, Labels: true}
	var err error
	if opts.Z, err = intParam(query.Get("z")); err != nil {
		h.writeError(w, http.StatusBadRequest, "z must be an integer")
		return
	}
	if opts.Batch, err = intParam(query.Get("batch")); err != nil {
		h.writeError(w, http.StatusBadRequest, "batch must be an integer")
		return
	}
	if raw := query.Get("labels"); raw != "" {
		if opts.Labels, err = strconv.ParseBool(raw); err != nil {
			h.writeError(w, http.StatusBadRequest, "labels must be a boolean")
			return
		}
	}

	if !h.store.Exists(folder) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("folder not found: '%s'", folder))
		return
	}

	path := h.store.FolderPath(folder)
	meta, err := h.cache.Metadata(path)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	img, err := h.compositor.Render(r.Context(), path, meta, opts)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render preview: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := viewer.EncodePNG(w, img); err != nil {
		h.log.Error(err, "failed to encode preview")
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// folderParam reads and cleans folder_name, answering 400 when it is empty.
func (h *Handler) folderParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	folder := naming.CleanFolderName(r.URL.Query().Get("folder_name"))
	if folder == "" {
		h.writeError(w, http.StatusBadRequest, "folder_name is required")
		return "", false
	}
	return folder, true
}

func intParam(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

// statusFor maps node errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		validationErr *xyzerrors.ValidationError
		referenceErr  *xyzerrors.GraphReferenceError
		transportErr  *xyzerrors.TransportError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &referenceErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
