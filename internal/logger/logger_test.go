package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		level   string
		implied bool
	}{
		{name: "ok", status: http.StatusCreated, body: "created", level: "info"},
		{name: "implicit ok", status: http.StatusOK, body: "hello", level: "info", implied: true},
		{name: "server error", status: http.StatusServiceUnavailable, body: "down", level: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf)

			var ctxLogged bool
			handler := Requests(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxLogged = zerolog.Ctx(r.Context()).GetLevel() != zerolog.Disabled
				if !tt.implied {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			}))

			r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
			r.RemoteAddr = "10.1.2.3:5555"
			handler.ServeHTTP(httptest.NewRecorder(), r)

			require.True(t, ctxLogged)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			require.Equal(t, tt.level, line["level"])
			require.Equal(t, "POST", line["method"])
			require.Equal(t, "/v1/auth/login", line["path"])
			require.Equal(t, "10.1.2.3", line["addr"])
			require.EqualValues(t, tt.status, line["status"])
			require.EqualValues(t, len(tt.body), line["bytes"])
		})
	}
}
