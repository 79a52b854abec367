package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"ethixguard/internal/knowledge"
	"ethixguard/internal/report"
	"ethixguard/internal/server"
)

const submissionJSON = `{
  "biosafety": {
    "GMO Involvement": "Yes",
    "IBSC Approval": "No",
    "Containment Measures": "Partially",
    "RCGM Approval": "Yes",
    "GEAC Approval": "No",
    "Staff Training": "Yes",
    "Documentation": "Yes"
  },
  "ethics": {
    "Research Type": "Animal Research",
    "Containment Level": "BSL-1",
    "CPCSEA Approval": "Pending",
    "3Rs Principle": "Yes",
    "Pain Management": "Yes"
  }
}`

func newServer(t *testing.T) *server.Server {
	t.Helper()
	at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	composer := report.NewComposer(report.WithClock(func() time.Time { return at }))
	return server.New("127.0.0.1:0", knowledge.Default(), composer, zaptest.NewLogger(t))
}

func do(t *testing.T, s *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	return body.Code
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuestions(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodGet, "/api/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	type question struct {
		Label string `json:"label"`
	}
	type category struct {
		Choices []string `json:"choices"`
	}
	var resp struct {
		Biosafety []question `json:"biosafety"`
		Category  category   `json:"category"`
		Ethics    []question `json:"ethics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Biosafety, 7)
	assert.Len(t, resp.Category.Choices, 4)
	assert.Empty(t, resp.Ethics)

	rec = do(t, s, http.MethodGet, "/api/questions?category=Animal+Research", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Ethics, 5)
	assert.Equal(t, "Containment Level", resp.Ethics[0].Label)
	assert.Equal(t, "Additional Notes", resp.Ethics[4].Label)

	rec = do(t, s, http.MethodGet, "/api/questions?category=Astrology", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, server.CodeInvalidInput, errorCode(t, rec))
}

func TestReportJSON(t *testing.T) {
	rec := do(t, newServer(t), http.MethodPost, "/api/report?format=json", submissionJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, rec.Header().Get("X-Report-Id"), r.ID)
	assert.Equal(t, 4, r.Biosafety.Summary.Pass)
	assert.Equal(t, 2, r.Biosafety.Summary.Violation)
	assert.Equal(t, "Containment Level", r.Ethics.Items[0].Question)
	assert.Equal(t, report.RecommendCritical, r.Recommendation.Kind)
}

func TestReportMarkdownFromYAML(t *testing.T) {
	body := `biosafety:
  GMO Involvement: "Yes"
ethics:
  Research Type: Food Production/Safety
  Containment Level: BSL-1
  Ingredient Transparency: "Yes"
`
	rec := do(t, newServer(t), http.MethodPost, "/api/report?format=markdown", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# EthixGuard Compliance Report"))
	assert.Contains(t, rec.Body.String(), "Congratulations!")
}

func TestReportHTML(t *testing.T) {
	rec := do(t, newServer(t), http.MethodPost, "/api/report?format=html", submissionJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>EthixGuard Compliance Report</title>")
}

func TestReportHTMLDropsRawMarkup(t *testing.T) {
	body := `{
  "biosafety": {"GMO Involvement": "Yes"},
  "ethics": {
    "Research Type": "Other",
    "Additional Notes": "see lab\/notes <script>alert(1)<\/script> \ud83d\udc2d"
  }
}`
	rec := do(t, newServer(t), http.MethodPost, "/api/report?format=html", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := rec.Body.String()
	assert.NotContains(t, page, "<script")
	assert.Contains(t, page, "see lab/notes")
	assert.Contains(t, page, "\U0001F42D")
}

func TestReportRejects(t *testing.T) {
	s := newServer(t)
	tests := []struct {
		name   string
		target string
		body   string
		code   string
	}{
		{"terminal format", "/api/report?format=terminal", submissionJSON, server.CodeUnsupportedFormat},
		{"unknown format", "/api/report?format=pdf", submissionJSON, server.CodeUnsupportedFormat},
		{"empty body", "/api/report", "", server.CodeInvalidInput},
		{"malformed", "/api/report", `{"biosafety": ["Yes"]}`, server.CodeInvalidInput},
		{"unknown section", "/api/report", `{"biosafety": {}, "extra": {}}`, server.CodeInvalidInput},
		{"ethics missing", "/api/report", `{"biosafety": {"GMO Involvement": "Yes"}}`, server.CodeIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAsk(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodPost, "/api/ask", `{"query": "What is GEAC?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct{ Response string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "Genetic Engineering Approval Committee (GEAC) is India's apex body")

	rec = do(t, s, http.MethodPost, "/api/ask", `{"query": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, knowledge.FallbackResponse, resp.Response)

	rec = do(t, s, http.MethodPost, "/api/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, server.CodeInvalidInput, errorCode(t, rec))
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/report", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// Reserve a free port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := server.New(addr, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Start(ctx) }()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	client.CloseIdleConnections()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
