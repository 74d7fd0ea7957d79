package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"predictd/internal/predictor"
	"predictd/pkg/types"
)

// handlePredict serves one-shot predictions without touching the
// session: no state transition, no history entry. It is the endpoint
// scripts and the CLI use.
//
//	POST /v1/predict {"text":"...","temperature":0.3,"top_n":5,"model":"gpt-4o"}
func handlePredict(pred Predictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PredictRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, predictor.CodeInvalidRequest, "text is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if sec := predictTimeout; sec > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
			defer tcancel()
		}

		res, err := pred.Predict(ctx, req)
		if err != nil {
			// Client went away or we are shutting down: nothing to write.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writePredictorError(w, err)
			logPredict(r, lvl, statusForError(err), time.Since(start), err)
			return
		}
		writeJSON(w, res)
		logPredict(r, lvl, http.StatusOK, time.Since(start), nil)
	}
}

func logPredict(r *http.Request, lvl LogLevel, status int, dur time.Duration, err error) {
	if lvl < LevelInfo {
		return
	}
	if zlog != nil {
		z := zlog.Info().Int("status", status).Dur("dur", dur)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		if err != nil {
			z = z.Err(err)
		}
		z.Msg("predict")
	}
}
