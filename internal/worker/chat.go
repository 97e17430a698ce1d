package worker

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dshills/codeoverview/internal/overview"
	"github.com/dshills/codeoverview/internal/providers"
	"github.com/dshills/codeoverview/internal/store"
)

type chatRequest struct {
	OverviewID  string          `json:"overviewId"`
	ChatHistory []overview.Turn `json:"chatHistory"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// ChatHandler answers questions about a stored overview and records the
// conversation on the document.
//
// The transcript write is a plain read-modify-write: two chats on the same
// overview that overlap each write back their own view of the transcript,
// and the later write drops the other's turns.
type ChatHandler struct {
	gen   providers.Generator
	store Store
	opts  options
}

// NewChatHandler creates the chat endpoint. A nil store or generator makes
// every POST fail with ErrNotConfigured.
func NewChatHandler(gen providers.Generator, st Store, opts ...Option) *ChatHandler {
	return &ChatHandler{gen: gen, store: st, opts: buildOptions(opts)}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		if isPreflight(r) {
			setHeaders(w.Header(), chatCORS)
		} else {
			w.Header().Set("Allow", "POST, OPTIONS")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	setHeaders(w.Header(), chatCORS)
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	log := h.opts.logger.WithField("endpoint", "chat")

	if h.store == nil || h.gen == nil {
		log.WithError(ErrNotConfigured).Error("endpoint is not configured")
		writeUpstreamError(w, http.StatusInternalServerError, ErrNotConfigured)
		return
	}

	var req chatRequest
	if status, err := decodeBody(w, r, h.opts.maxBodyBytes, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if req.OverviewID == "" || req.ChatHistory == nil {
		writeError(w, http.StatusBadRequest, "request must include 'overviewId' and 'chatHistory'")
		return
	}
	if err := overview.ValidateTurns(req.ChatHistory); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	log = log.WithField("overview_id", req.OverviewID)

	doc, err := h.store.Get(ctx, req.OverviewID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "overview not found")
		return
	}
	if err != nil {
		log.WithError(err).Error("fetching overview failed")
		writeUpstreamError(w, http.StatusBadGateway, err)
		return
	}

	completion, err := h.gen.Generate(ctx, providers.Prompt{
		User: overview.ChatPrompt(doc.Text, req.ChatHistory),
	})
	if err != nil {
		log.WithError(err).Error("generation failed")
		writeUpstreamError(w, http.StatusInternalServerError, err)
		return
	}

	full := overview.Append(req.ChatHistory, overview.Turn{User: overview.SpeakerAI, Text: completion.Text})
	fields := logrus.Fields{
		"stored_turns":  len(doc.ChatHistory),
		"written_turns": len(full),
	}
	// The write replaces the whole history, so concurrent chats on one
	// overview can lose turns. A Firestore transaction would close this.
	if len(doc.ChatHistory) > len(req.ChatHistory) {
		log.WithFields(fields).Warn("stored transcript is longer than the submitted one; turns will be overwritten")
	}
	if err := h.store.UpdateChatHistory(ctx, req.OverviewID, full); err != nil {
		log.WithError(err).WithFields(fields).Warn("saving chat history failed")
	} else {
		log.WithFields(fields).Info("chat history saved")
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: completion.Text})
}
