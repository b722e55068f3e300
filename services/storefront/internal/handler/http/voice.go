package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peeyushtyagi09/newShopingAI/pkg/httputil"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/voice"
)

// UtteranceRequest carries one recognized transcript.
type UtteranceRequest struct {
	Transcript string `json:"transcript" validate:"required,max=500"`
}

func (h *StorefrontHandler) writeVoice(w http.ResponseWriter, d *voice.Dispatcher) {
	httputil.WriteData(w, http.StatusOK, d.State())
}

// GetVoice handles GET /api/v1/voice
func (h *StorefrontHandler) GetVoice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	h.writeVoice(w, d)
}

// ToggleVoice handles POST /api/v1/voice/toggle
func (h *StorefrontHandler) ToggleVoice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.ToggleListening(r.Context())
	h.writeVoice(w, d)
}

// SubmitUtterance handles POST /api/v1/voice/utterances. The transcript is
// applied before the response is written, so the answer reflects it.
func (h *StorefrontHandler) SubmitUtterance(w http.ResponseWriter, r *http.Request) {
	var req UtteranceRequest
	if !decode(w, r, &req) {
		return
	}
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.HandleUtterance(r.Context(), req.Transcript)
	h.writeVoice(w, d)
}

// VoiceHelp handles POST /api/v1/voice/help/{action}
func (h *StorefrontHandler) VoiceHelp(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	if !applyHelp(d, chi.URLParam(r, "action")) {
		httputil.WriteError(w, r, unknownAction(chi.URLParam(r, "action")), h.logger)
		return
	}
	h.writeVoice(w, d)
}

// ClearVoiceFeedback handles POST /api/v1/voice/feedback/clear
func (h *StorefrontHandler) ClearVoiceFeedback(w http.ResponseWriter, r *http.Request) {
	d, ok := h.dispatcher(w, r)
	if !ok {
		return
	}
	d.ClearFeedback()
	h.writeVoice(w, d)
}

func applyHelp(d *voice.Dispatcher, action string) bool {
	switch action {
	case "show":
		d.ShowHelp()
	case "hide":
		d.HideHelp()
	case "toggle":
		d.ToggleHelp()
	default:
		return false
	}
	return true
}
