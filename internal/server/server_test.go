package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"principia/internal/config"
	"principia/internal/model"
	"principia/internal/narrative"
)

func TestMain(m *testing.M) {
	// The genai dependency chain starts an opencensus stats worker at package
	// init; it is process-lifetime, not a leak.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// scriptedLLM replays canned responses for the full four-stage run.
type scriptedLLM struct {
	responses []string
}

func (f *scriptedLLM) Name() string { return "scripted" }
func (f *scriptedLLM) Close() error { return nil }
func (f *scriptedLLM) Generate(_ context.Context, _ string) (string, error) {
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r, nil
}

var fullScript = []string{
	`{"first_principles":["A precise procedure exists.","Steps are finite."]}`,
	`{"validated_principles":[{"statement":"The procedure terminates.","necessity_justification":"Without termination there is no result."}]}`,
	`{"definition":"A finite procedure.","reconstruction":["Compose finite steps."]}`,
	`{"definition":"A finite procedure.","first_principles":["The procedure terminates."],
	  "reconstruction":["Compose finite steps."],"examples":["Sorting."],
	  "use_cases":["Routing."],"scenarios":["A recipe."],"assumption_challenges":["Must it halt?"]}`,
}

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{MaxRetries: 1}
	s, err := New(zap.NewNop(), cfg, &scriptedLLM{responses: fullScript})
	require.NoError(t, err)
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_RejectsBadShapeBeforePipeline(t *testing.T) {
	h := testServer(t).Handler()

	cases := []analyzeRequest{
		{Concept: "ab", Domain: "computer-science", Depth: "short"},
		{Concept: "Algorithm", Domain: "alchemy", Depth: "short"},
		{Concept: "Algorithm", Domain: "computer-science", Depth: "medium"},
		{Concept: "Algorithm", Domain: "computer-science", Depth: "short", Audience: "aliens"},
	}
	for _, c := range cases {
		rec := postJSON(t, h, "/api/analyze", c)
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %+v", c)
	}
}

func TestAnalyze_RunsToCompletion(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/analyze", analyzeRequest{
		Concept: "Algorithm", Domain: "computer-science", Depth: "short", Audience: "students",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)

	require.Eventually(t, func() bool {
		run, ok := s.runs.Get(resp.RunID)
		return ok && (run.Status == RunDone || run.Status == RunFailed)
	}, 5*time.Second, 10*time.Millisecond)

	run, ok := s.runs.Get(resp.RunID)
	require.True(t, ok)
	require.Equal(t, RunDone, run.Status, "error: %s", run.Error)
	require.NotNil(t, run.Model)
	require.NotNil(t, run.Narrative)
	require.Len(t, run.Narrative.Sections, 7)

	getRec := httptest.NewRecorder()
	h.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.RunID, nil))
	require.Equal(t, http.StatusOK, getRec.Code)
}

func TestGetRun_NotFound(t *testing.T) {
	h := testServer(t).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRender_ReusesStoredModelWithoutService(t *testing.T) {
	s := testServer(t)
	h := s.Handler()

	m := model.InternalReasoningModel{
		Definition: "A finite procedure",
		FirstPrinciples: []model.FirstPrinciple{
			{ID: "principle_1", Statement: "It terminates", NecessityJustification: "No result otherwise"},
		},
		Reconstruction: []model.ReconstructionStep{
			{ID: "step_1", StepNumber: 1, Description: "Compose steps", PrincipleDependencies: []string{"principle_1"}, LogicalProgression: "from principles"},
		},
		Examples:             []model.AnchoredItem{{ID: "example_1", Description: "Sorting", PrincipleDependencies: []string{"principle_1"}, AnchoringExplanation: "x"}},
		UseCases:             []model.AnchoredItem{{ID: "use_case_1", Description: "Routing", PrincipleDependencies: []string{"principle_1"}, AnchoringExplanation: "x"}},
		Scenarios:            []model.AnchoredItem{{ID: "scenario_1", Description: "A recipe", PrincipleDependencies: []string{"principle_1"}, AnchoringExplanation: "x"}},
		AssumptionChallenges: []model.AnchoredItem{{ID: "challenge_1", Description: "Must it halt", PrincipleDependencies: []string{"principle_1"}, AnchoringExplanation: "x"}},
	}
	s.runs.Put(&Run{
		ID:        "run-1",
		Status:    RunDone,
		Model:     &m,
		CreatedAt: time.Now(),
	})

	rec := postJSON(t, h, "/api/render", renderRequest{RunID: "run-1", Audience: "professionals", Complexity: "advanced"})
	require.Equal(t, http.StatusOK, rec.Code)

	var vm narrative.ViewModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vm))
	require.Len(t, vm.Sections, 7)
	require.Equal(t, "professionals", vm.Metadata.TargetAudience)

	// A pending run has no internal model to render.
	s.runs.Put(&Run{ID: "run-2", Status: RunRunning, CreatedAt: time.Now()})
	rec = postJSON(t, h, "/api/render", renderRequest{RunID: "run-2", Audience: "general", Complexity: "intermediate"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRunStore_BoundedAndCopied(t *testing.T) {
	store, err := NewRunStore(2)
	require.NoError(t, err)

	store.Put(&Run{ID: "a"})
	store.Put(&Run{ID: "b"})
	store.Put(&Run{ID: "c"})

	_, ok := store.Get("a")
	require.False(t, ok, "oldest run should be evicted")

	require.NoError(t, store.Update("c", func(r *Run) { r.Status = RunDone }))
	got, ok := store.Get("c")
	require.True(t, ok)
	require.Equal(t, RunDone, got.Status)

	got.Status = RunFailed
	again, _ := store.Get("c")
	require.Equal(t, RunDone, again.Status, "Get must return a copy")
}
