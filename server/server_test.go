package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinex/sociomind/credential"
	"github.com/richinex/sociomind/gateway"
	"github.com/richinex/sociomind/llm"
	"github.com/richinex/sociomind/model"
)

func TestMain(m *testing.M) {
	// Ignore known background goroutines from dependencies
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func offlineHandler(t *testing.T) http.Handler {
	invoker := gateway.InvokerFunc(func(context.Context, gateway.Invocation) (llm.Response, error) {
		t.Fatal("backend must not be invoked in offline mode")
		return llm.Response{}, nil
	})
	return New(gateway.New(credential.NewState("", ""), invoker), nil)
}

func liveHandler(invoker gateway.Invoker) http.Handler {
	return New(gateway.New(credential.NewState("AIzaSyLive", "primary"), invoker), nil)
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuizEndpointOffline(t *testing.T) {
	rec := post(t, offlineHandler(t), "/api/quiz", `{"topic":"Asabiyyah","language":"id","subject":"sociology"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var batch model.QuizBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch, 2)
	assert.Contains(t, batch[0].Question, "Ibnu Khaldun")
}

func TestCaseStudyEndpointOffline(t *testing.T) {
	rec := post(t, offlineHandler(t), "/api/case-study", `{"topic":"Urbanisasi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cs model.CaseStudy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cs))
	assert.Equal(t, "Studi Kasus Demo: Urbanisasi", cs.Title)
}

func TestCustomQuestionEndpoint(t *testing.T) {
	h := offlineHandler(t)

	rec := post(t, h, "/api/custom-question", `{"topic":"Norma","format":"pg_tka"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var q model.CustomQuestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, model.FormatMultiChoice, q.Type)
	assert.GreaterOrEqual(t, len(q.AnswerKeys), 2)

	rec = post(t, h, "/api/custom-question", `{"topic":"Norma","format":"essay-ish","language":"en"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request."}`, rec.Body.String())
}

func TestTextEndpoints(t *testing.T) {
	h := liveHandler(gateway.InvokerFunc(func(_ context.Context, inv gateway.Invocation) (llm.Response, error) {
		return llm.Response{Text: "# " + inv.Prompt.Task}, nil
	}))

	for _, path := range []string{"/api/explain", "/api/define"} {
		rec := post(t, h, path, `{"topic":"Anomie"}`)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["text"], "Anomie", path)
	}
}

func TestAnalysisEndpointLive(t *testing.T) {
	h := liveHandler(gateway.InvokerFunc(func(context.Context, gateway.Invocation) (llm.Response, error) {
		return llm.Response{Text: `{"summary":"S","scores":[{"label":"Durkheim","value":120}],"detailedAnalysis":"D"}`}, nil
	}))

	rec := post(t, h, "/api/analysis", `{"topic":"Warga kota jarang mengenal tetangga."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, float64(100), result.Scores[0].Value)
}

func TestBadRequests(t *testing.T) {
	h := offlineHandler(t)

	rec := post(t, h, "/api/quiz", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Permintaan tidak valid."}`, rec.Body.String())

	rec = post(t, h, "/api/explain", `{"topic":"  ","language":"ar"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"طلب غير صالح."}`, rec.Body.String())
}

func TestCredentialFailureIsLocalized401(t *testing.T) {
	h := liveHandler(gateway.InvokerFunc(func(context.Context, gateway.Invocation) (llm.Response, error) {
		return llm.Response{}, errors.New("429 Quota exceeded")
	}))

	rec := post(t, h, "/api/quiz", `{"topic":"Asabiyyah","language":"en"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "quota is exhausted")
}

func TestTransientFailureIs502(t *testing.T) {
	h := liveHandler(gateway.InvokerFunc(func(context.Context, gateway.Invocation) (llm.Response, error) {
		return llm.Response{}, errors.New("connection reset by peer")
	}))

	rec := post(t, h, "/api/define", `{"topic":"Anomie","language":"id"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"Gagal memuat materi akademik."}`, rec.Body.String())
}

func TestNarrationEndpoint(t *testing.T) {
	h := liveHandler(gateway.InvokerFunc(func(context.Context, gateway.Invocation) (llm.Response, error) {
		return llm.Response{Audio: []byte("PCM!"), AudioMIMEType: "audio/L16;codec=pcm;rate=24000"}, nil
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/narration?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/L16;codec=pcm;rate=24000", rec.Header().Get("Content-Type"))
	assert.Equal(t, "PCM!", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/narration?lang=en&format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body narrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []byte("PCM!"), body.Audio)
	assert.Contains(t, body.Script, "Welcome")
}

func TestNarrationEndpointOfflineReturnsScript(t *testing.T) {
	rec := httptest.NewRecorder()
	offlineHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/narration?lang=id", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body narrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Script, "Selamat datang")
	assert.Empty(t, body.Audio)
}

func TestModeAndHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	offlineHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mode", nil))
	assert.JSONEq(t, `{"mode":"offline"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	liveHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mode", nil))
	assert.JSONEq(t, `{"mode":"live"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	offlineHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	offlineHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/quiz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", offlineHandler(t), nil)
	}()
	cancel()
	assert.NoError(t, <-done)
}
