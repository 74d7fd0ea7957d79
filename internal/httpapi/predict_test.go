package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

func TestPredictHandlerOK(t *testing.T) {
	svc := newMockService()
	h, pred, _ := newTestMux(svc)

	w := postJSON(h, "/v1/predict", `{"text":"The weather today is","top_n":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res types.PredictionResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Token != " sunny" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if pred.last.TopN != 4 {
		t.Fatalf("request not forwarded: %+v", pred.last)
	}
}

func TestPredictTextRequired(t *testing.T) {
	svc := newMockService()
	h, _, _ := newTestMux(svc)
	w := postJSON(h, "/v1/predict", `{"text":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		wantCode string
	}{
		{"missing credential", predictor.ErrMissingCredential(), http.StatusUnauthorized, "missing_credential"},
		{"transport failure", predictor.ErrTransportFailure(errors.New("dial tcp: refused")), http.StatusBadGateway, "transport_failure"},
		{"provider rejection", predictor.ErrRejectedByProvider(429, "rate limited"), http.StatusBadGateway, "rejected_by_provider"},
		{"empty response", predictor.ErrEmptyResponse("no logprobs returned"), http.StatusBadGateway, "empty_response"},
		{"unknown model", predictor.ErrUnknownModel("nope"), http.StatusNotFound, "model_not_found"},
		{"invalid request", predictor.ErrInvalidRequest("bad temperature"), http.StatusBadRequest, "invalid_request"},
		{"generic", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newMockService()
			h, pred, _ := newTestMux(svc)
			pred.err = c.err

			w := postJSON(h, "/v1/predict", `{"text":"hi"}`)
			if w.Code != c.status {
				t.Fatalf("status=%d want %d", w.Code, c.status)
			}
			var er types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.Code != c.wantCode {
				t.Fatalf("code=%q want %q", er.Code, c.wantCode)
			}
		})
	}
}

func TestPredictHTTPErrorInterface(t *testing.T) {
	svc := newMockService()
	h, pred, _ := newTestMux(svc)
	pred.err = mockHTTPError{msg: "slow down", code: http.StatusTooManyRequests}

	w := postJSON(h, "/v1/predict", `{"text":"hi"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestPredictLogsWithZerologInfo(t *testing.T) {
	SetLogger(zerolog.New(io.Discard))
	defer func() { zlog = nil }()

	svc := newMockService()
	h, _, _ := newTestMux(svc)
	w := postJSON(h, "/v1/predict?log=info", `{"text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with info logging, got %d", w.Code)
	}
}
