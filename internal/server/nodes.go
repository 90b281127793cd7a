package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/engine"
	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
)

// PlotRequest is one plot node invocation as the host delivers it.
type PlotRequest struct {
	Inputs sweep.Inputs `json:"inputs"`
	// Images are base64 PNG or JPEG bytes, optionally as data URLs.
	Images []string `json:"images"`
	// BatchSize stands in for len(Images) when planning without images.
	BatchSize    int             `json:"batch_size,omitempty"`
	Prompt       json.RawMessage `json:"prompt,omitempty"`
	UniqueID     string          `json:"unique_id,omitempty"`
	ExtraPNGInfo map[string]any  `json:"extra_pnginfo,omitempty"`
	ClientID     string          `json:"client_id,omitempty"`
}

// ViewerRequest is one viewer node invocation.
type ViewerRequest struct {
	XYZPlot any `json:"xyz_plot"`
}

// ExecutePlot runs the plot node.
// POST /artify_testing/xyz/plot/execute
func (h *Handler) ExecutePlot(w http.ResponseWriter, r *http.Request) {
	if h.plot == nil {
		h.writeError(w, http.StatusServiceUnavailable, "plot node is not configured")
		return
	}

	var req PlotRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	inv, err := req.invocation()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.plot.Execute(r.Context(), inv)
	if err != nil {
		h.log.WithField("unique_id", req.UniqueID).Error(err, "plot node failed")
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

// ExecuteViewer runs the viewer node.
// POST /artify_testing/xyz/viewer/execute
func (h *Handler) ExecuteViewer(w http.ResponseWriter, r *http.Request) {
	var req ViewerRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	out, err := h.viewer.Execute(req.XYZPlot)
	if err != nil {
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (req PlotRequest) invocation() (engine.Invocation, error) {
	inv := engine.Invocation{
		Inputs:    req.Inputs,
		BatchSize: req.BatchSize,
		Hidden: engine.Hidden{
			UniqueID:     req.UniqueID,
			ExtraPNGInfo: req.ExtraPNGInfo,
			ClientID:     req.ClientID,
		},
	}

	if raw := bytes.TrimSpace(req.Prompt); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		doc, err := graph.Parse(raw)
		if err != nil {
			return engine.Invocation{}, fmt.Errorf("invalid prompt: %w", err)
		}
		inv.Hidden.Prompt = doc
	}

	images := make([]image.Image, 0, len(req.Images))
	for i, encoded := range req.Images {
		img, err := decodeImage(encoded)
		if err != nil {
			return engine.Invocation{}, fmt.Errorf("images[%d]: %w", i, err)
		}
		images = append(images, img)
	}
	inv.Images = images
	return inv, nil
}

func decodeImage(encoded string) (image.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.IndexByte(encoded, ',')
		if comma < 0 {
			return nil, errors.New("malformed data URL")
		}
		encoded = encoded[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// decodeBody decodes a size-limited JSON body, answering 400 on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := codec.JSON.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}
