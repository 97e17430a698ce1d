package worker

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dshills/codeoverview/internal/overview"
	"github.com/dshills/codeoverview/internal/providers"
)

type generateRequest struct {
	Code   string `json:"code"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	OverviewID string `json:"overview_id"`
	Overview   string `json:"overview"`
}

// GenerateHandler turns submitted code into a stored overview.
type GenerateHandler struct {
	gen   providers.Generator
	store Store
	opts  options
}

// NewGenerateHandler creates the generation endpoint. A nil store or
// generator makes every POST fail with ErrNotConfigured.
func NewGenerateHandler(gen providers.Generator, st Store, opts ...Option) *GenerateHandler {
	return &GenerateHandler{gen: gen, store: st, opts: buildOptions(opts)}
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setHeaders(w.Header(), generateCORS)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		methodNotAllowed(w)
		return
	}

	log := h.opts.logger.WithField("endpoint", "generate")

	if h.store == nil || h.gen == nil {
		log.WithError(ErrNotConfigured).Error("endpoint is not configured")
		writeUpstreamError(w, http.StatusInternalServerError, ErrNotConfigured)
		return
	}

	var req generateRequest
	if status, err := decodeBody(w, r, h.opts.maxBodyBytes, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing 'code' field in request body")
		return
	}

	ctx := r.Context()
	completion, err := h.gen.Generate(ctx, providers.Prompt{
		User: overview.GeneratePrompt(req.Prompt, req.Code),
	})
	if err != nil {
		log.WithError(err).Error("generation failed")
		writeUpstreamError(w, http.StatusInternalServerError, err)
		return
	}

	doc := overview.Document{
		ID:        h.opts.newID(),
		Text:      completion.Text,
		Timestamp: h.opts.clock(),
	}
	log = log.WithField("overview_id", doc.ID)

	if err := h.store.Create(ctx, doc); err != nil {
		log.WithError(err).Error("storing overview failed")
		writeUpstreamError(w, http.StatusInternalServerError, err)
		return
	}

	log.WithFields(logrus.Fields{
		"code_bytes":  len(req.Code),
		"tokens_used": completion.TokensUsed,
	}).Info("overview created")

	writeJSON(w, http.StatusOK, generateResponse{OverviewID: doc.ID, Overview: doc.Text})
}
