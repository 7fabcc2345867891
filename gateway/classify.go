package gateway

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// credentialMarkers identify quota exhaustion, rate limiting and rejected or
// expired keys in backend fault messages.
var credentialMarkers = []string{
	"quota",
	"resource_exhausted",
	"rate limit",
	"rate_limit",
	"too many requests",
	"api key",
	"api_key",
	"invalid credential",
	"unauthenticated",
	"permission_denied",
	"key expired",
	"token expired",
}

// credentialCode matches a bare 401, 403 or 429 in an untyped message. The
// code must stand alone, so ports ("host:4290"), addresses and request ids
// never match.
var credentialCode = regexp.MustCompile(`(?:^|[^\w:.\-/])(401|403|429)(?:$|[^\w.\-/])`)

// Classify inspects a backend fault. Typed SDK errors are judged by their
// HTTP status; anything else by its message. It returns CredentialFailure
// for rejected keys, exhausted quota and rate limiting, and TransientFailure
// otherwise, including for a nil fault.
func Classify(fault error) OutcomeKind {
	if fault == nil {
		return TransientFailure
	}
	if kind, ok := classifyAPIError(fault); ok {
		return kind
	}
	msg := strings.ToLower(fault.Error())
	if hasCredentialMarker(msg) || credentialCode.MatchString(msg) {
		return CredentialFailure
	}
	return TransientFailure
}

// classifyAPIError reports the kind of a status-carrying SDK error anywhere
// in the chain.
func classifyAPIError(fault error) (OutcomeKind, bool) {
	var gerr genai.APIError
	if errors.As(fault, &gerr) {
		return byStatus(gerr.Code, gerr.Status+" "+gerr.Message), true
	}
	var oerr *openai.APIError
	if errors.As(fault, &oerr) {
		return byStatus(oerr.HTTPStatusCode, oerr.Message), true
	}
	var rerr *openai.RequestError
	if errors.As(fault, &rerr) {
		return byStatus(rerr.HTTPStatusCode, ""), true
	}
	var aerr *anthropic.Error
	if errors.As(fault, &aerr) {
		return byStatus(aerr.StatusCode, ""), true
	}
	return TransientFailure, false
}

// byStatus maps an HTTP status to a kind. Gemini rejects bad keys with 400
// INVALID_ARGUMENT, so detail text is still checked for word markers.
func byStatus(code int, detail string) OutcomeKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return CredentialFailure
	}
	if hasCredentialMarker(strings.ToLower(detail)) {
		return CredentialFailure
	}
	return TransientFailure
}

func hasCredentialMarker(msg string) bool {
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
