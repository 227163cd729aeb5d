package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/gitworth/gitworth/internal/application/analysis"
	domain "github.com/gitworth/gitworth/internal/domain/analysis"
	"github.com/gitworth/gitworth/internal/infra/ai/static"
	"github.com/gitworth/gitworth/internal/infra/memstore"
)

func newTestServer(t *testing.T, analyzer domain.Analyzer) *httptest.Server {
	t.Helper()
	if analyzer == nil {
		analyzer = static.NewAnalyzer(0)
	}
	svc := appanalysis.NewService(memstore.NewStore(), analyzer, nil, memstore.NewFailureJournal(), nil, nil)
	ts := httptest.NewServer(NewRouter(svc))
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) domain.Analysis {
	t.Helper()
	defer resp.Body.Close()
	var rec domain.Analysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	return rec
}

func pollUntilTerminal(t *testing.T, ts *httptest.Server, id domain.AnalysisID) domain.Analysis {
	t.Helper()
	var rec domain.Analysis
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("%s/v1/analyses/%s", ts.URL, id))
		if err != nil {
			return false
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		rec = decodeRecord(t, resp)
		return rec.Status == domain.StatusCompleted || rec.Status == domain.StatusError
	}, 5*time.Second, 10*time.Millisecond)
	return rec
}

func TestStartAndPollAnalysis(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/analyses", map[string]string{
		"repositoryUrl": "https://github.com/golang/go",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	pending := decodeRecord(t, resp)
	assert.NotEmpty(t, pending.ID)
	assert.Equal(t, domain.StatusPending, pending.Status)
	assert.Equal(t, 0, pending.CurrentStep)
	require.Len(t, pending.Market.Assumptions, 4)

	final := pollUntilTerminal(t, ts, pending.ID)
	assert.Equal(t, domain.StatusCompleted, final.Status)
	assert.Equal(t, domain.NumStages, final.CurrentStep)
	assert.NotEmpty(t, final.Comparables)
	assert.Equal(t, [2]float64{500_000, 2_000_000}, final.Valuation.Range)
}

func TestStartAnalysisRejectsBadInput(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, body := range []any{
		map[string]string{"repositoryUrl": "not-a-url"},
		map[string]string{"repositoryUrl": ""},
		map[string]string{},
	} {
		resp := postJSON(t, ts.URL+"/v1/analyses", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	// Nothing was created for rejected input.
	resp, err := http.Get(ts.URL + "/v1/analyses/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []domain.Analysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestFetchUnknownAnalysis(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/analyses/analysis_does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecalculateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	created := decodeRecord(t, postJSON(t, ts.URL+"/v1/analyses", map[string]string{
		"repositoryUrl": "https://github.com/golang/go",
	}))
	pollUntilTerminal(t, ts, created.ID)

	hyps := domain.DefaultHypotheses()
	url := fmt.Sprintf("%s/v1/analyses/%s/recalculate", ts.URL, created.ID)

	resp := postJSON(t, url, map[string]any{"assumptions": hyps})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decodeRecord(t, resp)
	assert.InDelta(t, 50_000_000, rec.Market.SOM, 1)
	assert.InDelta(t, 65_000_000, rec.Valuation.Range[0], 1)
	assert.InDelta(t, 105_000_000, rec.Valuation.Range[1], 1)
	assert.Equal(t, domain.StatusCompleted, rec.Status)

	t.Run("out of range is rejected", func(t *testing.T) {
		bad := domain.DefaultHypotheses()
		bad[0].Value = bad[0].Max * 2
		resp := postJSON(t, url, map[string]any{"assumptions": bad})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/analyses/analysis_missing/recalculate", map[string]any{"assumptions": hyps})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRecalculateBeforeCompletionConflicts(t *testing.T) {
	// An analyzer that blocks until released keeps the record
	// in-progress while the recalculate request lands.
	release := make(chan struct{})
	ts := newTestServer(t, &blockingAnalyzer{release: release})
	defer close(release)

	created := decodeRecord(t, postJSON(t, ts.URL+"/v1/analyses", map[string]string{
		"repositoryUrl": "https://github.com/golang/go",
	}))

	url := fmt.Sprintf("%s/v1/analyses/%s/recalculate", ts.URL, created.ID)
	resp := postJSON(t, url, map[string]any{"assumptions": domain.DefaultHypotheses()})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFailuresEndpoint(t *testing.T) {
	ts := newTestServer(t, &failingAnalyzer{})

	created := decodeRecord(t, postJSON(t, ts.URL+"/v1/analyses", map[string]string{
		"repositoryUrl": "https://github.com/golang/go",
	}))
	final := pollUntilTerminal(t, ts, created.ID)
	require.Equal(t, domain.StatusError, final.Status)
	assert.Equal(t, 0, final.CurrentStep)

	resp, err := http.Get(ts.URL + "/v1/failures/latest")
	require.NoError(t, err)
	defer resp.Body.Close()
	var failures []domain.StageFailure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failures))
	require.Len(t, failures, 1)
	assert.Equal(t, created.ID, failures[0].AnalysisID)
	assert.Equal(t, "technical-assessment", failures[0].StageName)
}

// failingAnalyzer fails stage 1 immediately.
type failingAnalyzer struct {
	static.Analyzer
}

func (f *failingAnalyzer) AnalyzeTechnical(ctx context.Context, repositoryURL string) (domain.TechnicalAssessment, error) {
	return domain.TechnicalAssessment{}, errors.New("upstream unavailable")
}

// blockingAnalyzer parks stage 1 until released.
type blockingAnalyzer struct {
	static.Analyzer
	release chan struct{}
}

func (b *blockingAnalyzer) AnalyzeTechnical(ctx context.Context, repositoryURL string) (domain.TechnicalAssessment, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return b.Analyzer.AnalyzeTechnical(ctx, repositoryURL)
}
