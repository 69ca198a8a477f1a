package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ListResponse is one PR list plus the status of the branch that fills it.
type ListResponse struct {
	List   string               `json:"list"`
	Status BranchStatusResponse `json:"status"`
	PRs    []PRResponse         `json:"prs"`
}

// BranchStatusResponse reports the last fetch outcome of a list. An empty prs
// array with has_succeeded=false means the list has never loaded.
type BranchStatusResponse struct {
	HasSucceeded  bool   `json:"has_succeeded"`
	LastAttemptAt string `json:"last_attempt_at,omitempty"`
	LastSuccessAt string `json:"last_success_at,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	CapReached    bool   `json:"cap_reached"`
	Dropped       int    `json:"dropped"`
}

// PRResponse is the JSON representation of a pull request.
type PRResponse struct {
	Owner          string `json:"owner"`
	Repo           string `json:"repo"`
	Number         int    `json:"number"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Author         string `json:"author"`
	HeadRef        string `json:"head_ref"`
	State          string `json:"state"`
	IsInMergeQueue bool   `json:"is_in_merge_queue"`
	QueuePosition  *int   `json:"queue_position,omitempty"`
	Mergeable      string `json:"mergeable"`
	ReviewDecision string `json:"review_decision"`
	ApprovalCount  int    `json:"approval_count"`
	Additions      int    `json:"additions"`
	Deletions      int    `json:"deletions"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`

	DaysSinceUpdated int                   `json:"days_since_updated"`
	CIStatus         string                `json:"ci_status"`
	ChecksTotal      int                   `json:"checks_total"`
	ChecksPassed     int                   `json:"checks_passed"`
	ChecksFailed     int                   `json:"checks_failed"`
	ChecksPending    int                   `json:"checks_pending"`
	ChecksTruncated  bool                  `json:"checks_truncated"`
	Checks           []CheckResultResponse `json:"checks"`
	Ready            bool                  `json:"ready"`
}

// CheckResultResponse is the JSON representation of one classified check.
type CheckResultResponse struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DetailsURL string `json:"details_url,omitempty"`
}

// RefreshResponse is returned by the manual refresh endpoint.
type RefreshResponse struct {
	Started  bool `json:"started"`
	InFlight bool `json:"in_flight"`
}

// CheckFiltersBody is both the request and response body of the check filter settings.
type CheckFiltersBody struct {
	Required []string `json:"required"`
	Ignored  []string `json:"ignored"`
}

// PollIntervalBody is both the request and response body of the poll interval setting.
type PollIntervalBody struct {
	Seconds int `json:"seconds"`
}

// NotificationResponse is one entry of notification history.
type NotificationResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	PR        string `json:"pr"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	URL       string `json:"url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status           string `json:"status"`
	Time             string `json:"time"`
	FetchInFlight    bool   `json:"fetch_in_flight"`
	SchedulerRunning bool   `json:"scheduler_running"`
}

func toListResponse(list *application.BoardList) ListResponse {
	prs := make([]PRResponse, 0, len(list.Entries))
	for _, e := range list.Entries {
		prs = append(prs, toPRResponse(e.PR, e.Ready))
	}

	name := "authored"
	if list.Kind == model.ListReviewRequested {
		name = "review-requested"
	}

	return ListResponse{
		List:   name,
		Status: toBranchStatusResponse(list.Status),
		PRs:    prs,
	}
}

func toBranchStatusResponse(s model.BranchStatus) BranchStatusResponse {
	return BranchStatusResponse{
		HasSucceeded:  s.HasSucceeded,
		LastAttemptAt: formatOptionalTime(s.LastAttemptAt),
		LastSuccessAt: formatOptionalTime(s.LastSuccessAt),
		LastError:     s.LastError,
		CapReached:    s.CapReached,
		Dropped:       s.Dropped,
	}
}

// toPRResponse converts a domain PullRequest to its JSON response representation.
func toPRResponse(pr model.PullRequest, ready bool) PRResponse {
	checks := make([]CheckResultResponse, 0, len(pr.CheckResults))
	for _, c := range pr.CheckResults {
		checks = append(checks, CheckResultResponse{
			Name:       c.Name,
			Status:     string(c.Status),
			DetailsURL: c.DetailsURL,
		})
	}

	return PRResponse{
		Owner:          pr.ID.Owner,
		Repo:           pr.ID.Repo,
		Number:         pr.ID.Number,
		Title:          pr.Title,
		URL:            pr.URL,
		Author:         pr.Author,
		HeadRef:        pr.HeadRef,
		State:          string(pr.State),
		IsInMergeQueue: pr.IsInMergeQueue,
		QueuePosition:  pr.QueuePosition,
		Mergeable:      string(pr.Mergeable),
		ReviewDecision: string(pr.ReviewDecision),
		ApprovalCount:  pr.ApprovalCount,
		Additions:      pr.Additions,
		Deletions:      pr.Deletions,
		CreatedAt:      formatOptionalTime(pr.CreatedAt),
		UpdatedAt:      formatOptionalTime(pr.UpdatedAt),

		DaysSinceUpdated: pr.DaysSinceUpdated(),
		CIStatus:         string(pr.CIStatus),
		ChecksTotal:      pr.ChecksTotal,
		ChecksPassed:     pr.ChecksPassed,
		ChecksFailed:     pr.ChecksFailed,
		ChecksPending:    pr.ChecksPending,
		ChecksTruncated:  pr.ChecksTruncated(),
		Checks:           checks,
		Ready:            ready,
	}
}

func toCheckFiltersBody(f model.FilterSettings) CheckFiltersBody {
	return CheckFiltersBody{Required: nonNil(f.RequiredChecks), Ignored: nonNil(f.IgnoredChecks)}
}

func toNotificationResponse(rec model.NotificationRecord) NotificationResponse {
	return NotificationResponse{
		ID:        rec.ID,
		Kind:      string(rec.Intent.Kind),
		PR:        rec.Intent.PR.String(),
		Title:     rec.Intent.Title,
		Body:      rec.Intent.Body,
		URL:       rec.Intent.URL,
		CreatedAt: formatOptionalTime(rec.CreatedAt),
	}
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
