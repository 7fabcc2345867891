package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/sociomind/gateway"
	"github.com/richinex/sociomind/model"
)

type handler struct {
	svc    Service
	logger *zap.Logger
}

// contentBody is the request body shared by every POST endpoint.
type contentBody struct {
	Topic      string `json:"topic"`
	Language   string `json:"language"`
	Subject    string `json:"subject"`
	Difficulty int    `json:"difficulty"`
	Query      string `json:"query"`
	Format     string `json:"format"`
}

func (b contentBody) request() model.ContentRequest {
	return model.ContentRequest{
		Topic:      b.Topic,
		Language:   model.Language(b.Language),
		Subject:    model.Subject(b.Subject),
		Difficulty: b.Difficulty,
		Query:      b.Query,
	}
}

// decode reads the body and rejects requests without a topic.
func (h *handler) decode(w http.ResponseWriter, r *http.Request) (contentBody, bool) {
	var body contentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, localize(msgBadRequest, model.ParseLanguage(r.URL.Query().Get("lang"))))
		return body, false
	}
	if strings.TrimSpace(body.Topic) == "" {
		writeError(w, http.StatusBadRequest, localize(msgBadRequest, model.ParseLanguage(body.Language)))
		return body, false
	}
	return body, true
}

func (h *handler) quiz(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GenerateQuiz(r.Context(), body.request())
	h.respond(w, body.Language, result, err)
}

func (h *handler) customQuestion(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	req := body.request()
	if body.Format != "" {
		format, ok := model.ParseQuestionFormat(body.Format)
		if !ok {
			writeError(w, http.StatusBadRequest, localize(msgBadRequest, model.ParseLanguage(body.Language)))
			return
		}
		req.Format = format
	}
	result, err := h.svc.GenerateCustomQuestion(r.Context(), req)
	h.respond(w, body.Language, result, err)
}

func (h *handler) explain(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	text, err := h.svc.ExplainConcept(r.Context(), body.request())
	h.respond(w, body.Language, map[string]string{"text": text}, err)
}

func (h *handler) define(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	text, err := h.svc.DefineTerm(r.Context(), body.request())
	h.respond(w, body.Language, map[string]string{"text": text}, err)
}

func (h *handler) caseStudy(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GenerateCaseStudy(r.Context(), body.request())
	h.respond(w, body.Language, result, err)
}

func (h *handler) analysis(w http.ResponseWriter, r *http.Request) {
	body, ok := h.decode(w, r)
	if !ok {
		return
	}
	result, err := h.svc.AnalyzeSocialData(r.Context(), body.request())
	h.respond(w, body.Language, result, err)
}

// narrationResponse exposes the audio, which model.Narration keeps out of JSON.
type narrationResponse struct {
	Script   string `json:"script"`
	MIMEType string `json:"mimeType,omitempty"`
	Audio    []byte `json:"audio,omitempty"`
}

// narration handles GET /api/narration?lang=. Audio is streamed raw unless
// format=json is given or no audio was produced.
func (h *handler) narration(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	n, err := h.svc.GenerateIntroNarration(r.Context(), model.ContentRequest{Language: model.Language(lang)})
	if err != nil {
		h.respond(w, lang, nil, err)
		return
	}

	if len(n.Audio) > 0 && r.URL.Query().Get("format") != "json" {
		w.Header().Set("Content-Type", n.MIMEType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(n.Audio); err != nil {
			h.logger.Warn("failed to write audio", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, narrationResponse{Script: n.Script, MIMEType: n.MIMEType, Audio: n.Audio})
}

func (h *handler) mode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"mode": h.svc.Mode().String()})
}

// respond writes payload, or a short localized message for err.
func (h *handler) respond(w http.ResponseWriter, lang string, payload interface{}, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, payload)
		return
	}

	language := model.ParseLanguage(lang)
	switch {
	case gateway.IsCredentialFailure(err):
		writeError(w, http.StatusUnauthorized, localize(msgCredential, language))
	default:
		h.logger.Warn("generation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, localize(msgServer, language))
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
