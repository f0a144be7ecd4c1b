package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	service "github.com/okian/refxpp/internal/app"
	"github.com/okian/refxpp/internal/domain/model"
)

// relaxRequest carries the relax tuning values. They only apply to path
// requests that select the relax family.
type relaxRequest struct {
	AimCount     uint32  `json:"ac"`
	ARAdjust     float64 `json:"arc"`
	HiddenRework bool    `json:"hdr"`
	TapWindow    uint32  `json:"tw"`
	ComboScaling bool    `json:"cs"`
}

// calculateRequest mirrors the OpenAPI schema for POST /calculate.
type calculateRequest struct {
	BeatmapPath   string        `json:"beatmap_path"`
	BeatmapBase64 string        `json:"beatmap_base64"`
	Mode          uint32        `json:"mode"`
	Mods          uint32        `json:"mods"`
	MaxCombo      uint32        `json:"max_combo"`
	Accuracy      *float64      `json:"accuracy"`
	MissCount     uint32        `json:"miss_count"`
	PassedObjects *uint32       `json:"passed_objects"`
	Relax         *relaxRequest `json:"relax"`
}

func (c calculateRequest) toService() (service.Request, error) {
	if c.Accuracy == nil {
		return service.Request{}, NewKind("accuracy", ErrMissingField)
	}
	req := service.Request{
		BeatmapPath: c.BeatmapPath,
		Score: model.Score{
			Mode:      c.Mode,
			Mods:      model.Mods(c.Mods),
			MaxCombo:  c.MaxCombo,
			MissCount: c.MissCount,
			Accuracy:  *c.Accuracy,
		},
	}
	if c.BeatmapBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(c.BeatmapBase64)
		if err != nil {
			return service.Request{}, fmt.Errorf("beatmap_base64: %w", err)
		}
		req.Beatmap = raw
	}
	if c.PassedObjects != nil {
		req.Score.Scope = model.Some(*c.PassedObjects)
	}
	if c.Relax != nil {
		req.Score.Tuning = model.RelaxTuning{
			AimCount:     c.Relax.AimCount,
			ARAdjust:     c.Relax.ARAdjust,
			HiddenRework: c.Relax.HiddenRework,
			TapWindow:    c.Relax.TapWindow,
			ComboScaling: c.Relax.ComboScaling,
		}
	}
	return req, nil
}

type batchItem struct {
	Result *model.Result  `json:"result,omitempty"`
	Error  *errorResponse `json:"error,omitempty"`
}

// CalculateHandler handles calculation requests.
type CalculateHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewCalculateHandler creates a new calculate handler.
func NewCalculateHandler(deps Dependencies, maxBodyBytes int64) *CalculateHandler {
	return &CalculateHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleCalculate handles POST /calculate requests.
func (h *CalculateHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var body calculateRequest
	if err := h.decode(w, r, &body); err != nil {
		status, code := classify(WrapKind(op, ErrBadRequest, err))
		writeError(w, status, code, err)
		return
	}
	req, err := body.toService()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Calculate(r.Context(), req)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBatch handles POST /calculate/batch requests.
func (h *CalculateHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var body []calculateRequest
	if err := h.decode(w, r, &body); err != nil {
		status, code := classify(WrapKind(op, ErrBadRequest, err))
		writeError(w, status, code, err)
		return
	}

	out := make([]batchItem, len(body))
	reqs := make([]service.Request, 0, len(body))
	index := make([]int, 0, len(body))
	for i, item := range body {
		req, err := item.toService()
		if err != nil {
			out[i].Error = &errorResponse{Code: "bad_request", Message: WrapKind(op, ErrBadRequest, err).Error()}
			continue
		}
		reqs = append(reqs, req)
		index = append(index, i)
	}

	results, err := h.deps.CalculateBatch(r.Context(), reqs)
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, err)
		return
	}
	for j, res := range results {
		i := index[j]
		if res.Err != nil {
			_, code := classify(res.Err)
			out[i].Error = &errorResponse{Code: code, Message: res.Err.Error()}
			continue
		}
		out[i].Result = &res.Result
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CalculateHandler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
