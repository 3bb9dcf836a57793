package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/career-services/internal/config"
	"github.com/jonathan/career-services/internal/dashboard"
	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/server/ratelimit"
	"github.com/jonathan/career-services/internal/types"
	"github.com/jonathan/career-services/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	slot1 = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	slot2 = time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
)

type testServer struct {
	*Server
	store *db.MemoryStore
	repo  *records.Repository
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithLimits(t, &ratelimit.Config{Enabled: false})
}

func newTestServerWithLimits(t *testing.T, limits *ratelimit.Config) *testServer {
	t.Helper()
	store := db.NewMemoryStore()
	store.SetClock(func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) })
	repo := records.New(store)

	s, err := New(Config{
		Port:      0,
		JWT:       &config.JWTConfig{Secret: testSecret, ExpirationHours: 24},
		RateLimit: limits,
	}, workflow.New(repo))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &testServer{Server: s, store: store, repo: repo}
}

func (ts *testServer) token(t *testing.T, userID string, role types.Role) string {
	t.Helper()
	token, err := ts.jwtService.GenerateToken(types.Identity{UserID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func jobPosting(title, department string) types.CreateJobRequest {
	return types.CreateJobRequest{
		Title:        title,
		CompanyName:  "Acme",
		Department:   department,
		Type:         "internship",
		Description:  strings.Repeat("Help build the scheduling service. ", 2),
		Requirements: strings.Repeat("Some Go and SQL experience. ", 2),
		Skills:       []string{"Go", "SQL"},
		Deadline:     time.Now().AddDate(0, 1, 0),
	}
}

// seed creates a job for emp_1 and an application from stu_1 and returns
// their ids.
func (ts *testServer) seed(t *testing.T) (jobID, applicationID string) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/jobs", ts.token(t, "emp_1", types.RoleEmployer), jobPosting("Backend Intern", "Engineering"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	jobID = decodeBody[types.JobRecord](t, w).ID

	w = ts.do(t, http.MethodPost, "/jobs/"+jobID+"/applications", ts.token(t, "stu_1", types.RoleStudent),
		types.SubmitApplicationRequest{CoverLetter: "Hello", CVID: "cv_1", UserName: "Sam"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	applicationID = decodeBody[dashboard.ApplicationView](t, w).ID
	return jobID, applicationID
}

func (ts *testServer) propose(t *testing.T, applicationID string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/applications/"+applicationID+"/interviews", ts.token(t, "emp_1", types.RoleEmployer),
		types.ProposeInterviewRequest{ProposedTimes: []time.Time{slot1, slot2}, Location: "Zoom"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[ProposeInterviewResponse](t, w).ID
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{JWT: &config.JWTConfig{Secret: testSecret, ExpirationHours: 1}}, nil)
	assert.Error(t, err)

	_, err = New(Config{}, workflow.New(records.New(db.NewMemoryStore())))
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, w)["status"])
}

func TestHandleStatuses(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/statuses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[map[string][]StatusEntry](t, w)
	entries := resp["statuses"]
	require.Len(t, entries, len(types.ApplicationStatuses))
	assert.Equal(t, types.ApplicationPending, entries[0].Status)
	assert.Equal(t, "Pending Review", entries[0].Label)
	assert.True(t, entries[len(entries)-1].Final)
}

func TestAuth_Required(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RoleChecks(t *testing.T) {
	ts := newTestServer(t)
	student := ts.token(t, "stu_1", types.RoleStudent)
	employer := ts.token(t, "emp_1", types.RoleEmployer)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"student cannot create jobs", http.MethodPost, "/jobs", student},
		{"employer cannot apply", http.MethodPost, "/jobs/j1/applications", employer},
		{"student cannot propose", http.MethodPost, "/applications/a1/interviews", student},
		{"employer cannot respond", http.MethodPost, "/interviews/iv1/respond", employer},
		{"student cannot review", http.MethodPut, "/applications/a1/status", student},
		{"employer cannot reconcile", http.MethodPost, "/cascades/c1/reconcile", employer},
		{"admin cannot list applications", http.MethodGet, "/applications", ts.token(t, "adm_1", types.RoleAdmin)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.token, map[string]string{})
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestInterviewFlow_Accept(t *testing.T) {
	ts := newTestServer(t)
	jobID, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)
	student := ts.token(t, "stu_1", types.RoleStudent)

	// The proposal shows up as pending on the student dashboard.
	w := ts.do(t, http.MethodGet, "/dashboard", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decodeBody[dashboard.StudentDashboard](t, w)
	require.Len(t, dash.PendingInterviews, 1)
	assert.Equal(t, interviewID, dash.PendingInterviews[0].ID)
	assert.Equal(t, "Acme", dash.PendingInterviews[0].CompanyName)
	assert.Equal(t, "Interview Requested", dash.RecentActivity[0].Display.Label)

	selected := slot2
	w = ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", student,
		types.RespondInterviewRequest{Action: types.ActionAccept, SelectedTime: &selected})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[RespondInterviewResponse](t, w)
	assert.Empty(t, resp.Error)
	require.NotNil(t, resp.Interview)
	assert.Equal(t, types.InterviewConfirmed, resp.Interview.Status)
	require.NotNil(t, resp.Interview.SelectedTime)
	assert.True(t, resp.Interview.SelectedTime.Equal(slot2))
	require.NotNil(t, resp.Dashboard)
	assert.Empty(t, resp.Dashboard.PendingInterviews)
	assert.Len(t, resp.Dashboard.ConfirmedInterviews, 1)
	assert.Equal(t, 1, resp.Dashboard.Stats.InterviewsScheduled)
	assert.Equal(t, "Interview Confirmed", resp.Dashboard.RecentActivity[0].Display.Label)

	// The owning employer sees the mirrored status on the job.
	w = ts.do(t, http.MethodGet, "/jobs/"+jobID, ts.token(t, "emp_1", types.RoleEmployer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	job := decodeBody[JobResponse](t, w).Job
	assert.Equal(t, types.ApplicationInterviewConfirmed, job.ApplicationStatuses[applicationID])
}

func TestInterviewFlow_Decline(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)

	w := ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionDecline})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[RespondInterviewResponse](t, w)
	assert.Equal(t, types.InterviewDeclined, resp.Interview.Status)
	assert.Equal(t, "Interview Declined", resp.Dashboard.RecentActivity[0].Display.Label)

	// A second answer conflicts with the terminal state.
	w = ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionDecline})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondInterview_AcceptWithoutSelection(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)
	writes := ts.store.Writes()

	w := ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionAccept})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[RespondInterviewResponse](t, w)
	assert.Contains(t, resp.Error, "selectedTime")
	require.NotNil(t, resp.Dashboard, "dashboard is refreshed even when the response fails")
	assert.Len(t, resp.Dashboard.PendingInterviews, 1)
	assert.Equal(t, writes, ts.store.Writes())
}

func TestRespondInterview_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/interviews/missing/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionDecline})
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeBody[RespondInterviewResponse](t, w)
	assert.Equal(t, "Record not found", resp.Error)
	assert.NotNil(t, resp.Dashboard)
}

func TestRespondInterview_OtherStudent(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)

	w := ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_2", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionDecline})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondInterview_PartialFailureThenReconcile(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)

	ts.store.FailNextWrite(db.CollectionApplications, errors.New("unavailable"))
	selected := slot1
	w := ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionAccept, SelectedTime: &selected})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeBody[RespondInterviewResponse](t, w)
	assert.Equal(t, genericFailure, resp.Error)

	partial, err := ts.repo.ListCascades(context.Background(), types.CascadePartial)
	require.NoError(t, err)
	require.Len(t, partial, 1)

	w = ts.do(t, http.MethodPost, "/cascades/"+partial[0].ID+"/reconcile", ts.token(t, "adm_1", types.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.CascadeCompleted, decodeBody[types.CascadeRecord](t, w).Status)

	app, err := ts.repo.GetApplication(context.Background(), applicationID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationInterviewConfirmed, app.Status)
}

func TestProposeInterview_Errors(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)

	tests := []struct {
		name   string
		path   string
		token  string
		body   any
		status int
	}{
		{
			"no proposed times",
			"/applications/" + applicationID + "/interviews",
			ts.token(t, "emp_1", types.RoleEmployer),
			types.ProposeInterviewRequest{},
			http.StatusBadRequest,
		},
		{
			"unknown field",
			"/applications/" + applicationID + "/interviews",
			ts.token(t, "emp_1", types.RoleEmployer),
			map[string]any{"proposedTimes": []time.Time{slot1}, "room": "4B"},
			http.StatusBadRequest,
		},
		{
			"another employer",
			"/applications/" + applicationID + "/interviews",
			ts.token(t, "emp_2", types.RoleEmployer),
			types.ProposeInterviewRequest{ProposedTimes: []time.Time{slot1}},
			http.StatusForbidden,
		},
		{
			"missing application",
			"/applications/missing/interviews",
			ts.token(t, "emp_1", types.RoleEmployer),
			types.ProposeInterviewRequest{ProposedTimes: []time.Time{slot1}},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestGetInterview_Visibility(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)

	w := ts.do(t, http.MethodGet, "/interviews/"+interviewID, ts.token(t, "stu_1", types.RoleStudent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeBody[dashboard.InterviewView](t, w)
	assert.Equal(t, types.InterviewPending, view.Status)
	assert.Len(t, view.ProposedTimes, 2)

	w = ts.do(t, http.MethodGet, "/interviews/"+interviewID, ts.token(t, "emp_1", types.RoleEmployer), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/interviews/"+interviewID, ts.token(t, "stu_2", types.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitApplication_Errors(t *testing.T) {
	ts := newTestServer(t)
	jobID, _ := ts.seed(t)
	student := ts.token(t, "stu_1", types.RoleStudent)

	w := ts.do(t, http.MethodPost, "/jobs/"+jobID+"/applications", student,
		types.SubmitApplicationRequest{CoverLetter: "Again", CVID: "cv_1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/jobs/"+jobID+"/applications", ts.token(t, "stu_2", types.RoleStudent),
		types.SubmitApplicationRequest{CVID: "cv_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "coverLetter")

	w = ts.do(t, http.MethodPost, "/jobs/missing/applications", student,
		types.SubmitApplicationRequest{CoverLetter: "Hi", CVID: "cv_1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateApplicationStatus(t *testing.T) {
	ts := newTestServer(t)
	jobID, applicationID := ts.seed(t)
	employer := ts.token(t, "emp_1", types.RoleEmployer)
	path := "/applications/" + applicationID + "/status"

	w := ts.do(t, http.MethodPut, path, employer, types.UpdateApplicationStatusRequest{Status: types.ApplicationReviewing})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Under Review", decodeBody[dashboard.ApplicationView](t, w).Display.Label)

	w = ts.do(t, http.MethodPut, path, employer, types.UpdateApplicationStatusRequest{Status: types.ApplicationRejected})
	require.Equal(t, http.StatusOK, w.Code)

	// Final statuses cannot be reopened.
	w = ts.do(t, http.MethodPut, path, employer, types.UpdateApplicationStatusRequest{Status: types.ApplicationReviewing})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Only review decisions are accepted.
	w = ts.do(t, http.MethodPut, path, employer, map[string]string{"status": "interview_confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, path, ts.token(t, "emp_2", types.RoleEmployer),
		types.UpdateApplicationStatusRequest{Status: types.ApplicationAccepted})
	assert.Equal(t, http.StatusForbidden, w.Code)

	job, err := ts.repo.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationRejected, job.ApplicationStatuses[applicationID])
}

func TestListApplications(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)

	w := ts.do(t, http.MethodGet, "/applications", ts.token(t, "stu_1", types.RoleStudent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[ListApplicationsResponse](t, w)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, applicationID, resp.Applications[0].ID)
	assert.Equal(t, "Pending Review", resp.Applications[0].Display.Label)

	w = ts.do(t, http.MethodGet, "/applications?status=accepted", ts.token(t, "emp_1", types.RoleEmployer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeBody[ListApplicationsResponse](t, w).Count)

	w = ts.do(t, http.MethodGet, "/applications?status=bogus", ts.token(t, "emp_1", types.RoleEmployer), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobs_ListAndRedaction(t *testing.T) {
	ts := newTestServer(t)
	jobID, _ := ts.seed(t)

	w := ts.do(t, http.MethodGet, "/jobs", ts.token(t, "stu_2", types.RoleStudent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[ListJobsResponse](t, w)
	require.Equal(t, 1, list.Count)
	assert.Empty(t, list.Jobs[0].ApplicationStatuses)

	w = ts.do(t, http.MethodGet, "/jobs/"+jobID, ts.token(t, "stu_1", types.RoleStudent), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody[JobResponse](t, w).HasApplied)

	w = ts.do(t, http.MethodGet, "/jobs?mine=true", ts.token(t, "emp_1", types.RoleEmployer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeBody[ListJobsResponse](t, w)
	require.Equal(t, 1, mine.Count)
	assert.Len(t, mine.Jobs[0].ApplicationStatuses, 1)

	w = ts.do(t, http.MethodGet, "/jobs?mine=true", ts.token(t, "stu_1", types.RoleStudent), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/jobs", ts.token(t, "emp_1", types.RoleEmployer), types.CreateJobRequest{Title: "No company"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	past := jobPosting("Closed Role", "Engineering")
	past.Deadline = time.Now().AddDate(0, 0, -2)
	w = ts.do(t, http.MethodPost, "/jobs", ts.token(t, "emp_1", types.RoleEmployer), past)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "deadline")
}

func TestJobs_ListFilters(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	w := ts.do(t, http.MethodPost, "/jobs", ts.token(t, "emp_1", types.RoleEmployer), jobPosting("Data Analyst", "Data"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?q=analyst", 1},
		{"?q=ACME", 2},
		{"?department=Engineering", 1},
		{"?department=Data&q=backend", 0},
		{"?type=internship", 2},
		{"?type=contract", 0},
		{"?mine=true&department=Data", 1},
	}

	for _, tt := range tests {
		t.Run("jobs"+tt.query, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, "/jobs"+tt.query, ts.token(t, "emp_1", types.RoleEmployer), nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, decodeBody[ListJobsResponse](t, w).Count)
		})
	}
}

func TestProposeInterview_PendingInterviewConflict(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	ts.propose(t, applicationID)

	w := ts.do(t, http.MethodPost, "/applications/"+applicationID+"/interviews", ts.token(t, "emp_1", types.RoleEmployer),
		types.ProposeInterviewRequest{ProposedTimes: []time.Time{slot2}})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestRespondInterview_ClosedApplication(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	interviewID := ts.propose(t, applicationID)

	w := ts.do(t, http.MethodPut, "/applications/"+applicationID+"/status", ts.token(t, "emp_1", types.RoleEmployer),
		types.UpdateApplicationStatusRequest{Status: types.ApplicationRejected})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	selected := slot1
	w = ts.do(t, http.MethodPost, "/interviews/"+interviewID+"/respond", ts.token(t, "stu_1", types.RoleStudent),
		types.RespondInterviewRequest{Action: types.ActionAccept, SelectedTime: &selected})
	assert.Equal(t, http.StatusConflict, w.Code)

	app, err := ts.repo.GetApplication(context.Background(), applicationID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationRejected, app.Status)
}

func TestDashboard_Employer(t *testing.T) {
	ts := newTestServer(t)
	_, applicationID := ts.seed(t)
	ts.propose(t, applicationID)

	w := ts.do(t, http.MethodGet, "/dashboard", ts.token(t, "emp_1", types.RoleEmployer), nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decodeBody[dashboard.EmployerDashboard](t, w)
	assert.Equal(t, 1, dash.Stats.ActiveJobs)
	assert.Equal(t, 1, dash.Stats.TotalApplications)
	require.Len(t, dash.Jobs, 1)
	assert.Equal(t, 1, dash.Jobs[0].ApplicationCount)
}

func TestReconcile_Errors(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, "adm_1", types.RoleAdmin)

	w := ts.do(t, http.MethodPost, "/cascades/missing/reconcile", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimit_Exceeded(t *testing.T) {
	ts := newTestServerWithLimits(t, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})

	w := ts.do(t, http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = ts.do(t, http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[map[string]any](t, w)["error"])

	// The status table is never limited.
	w = ts.do(t, http.MethodGet, "/statuses", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodOptions, "/jobs", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
