package github

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// requiredNodeFields must be present and non-null on every search node.
var requiredNodeFields = []string{"number", "state", "repository.name", "repository.owner.login"}

// envelope is the top-level GraphQL response shape.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e envelope) upstreamError() *driven.UpstreamError {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	return &driven.UpstreamError{Messages: msgs}
}

// parseEnvelope decodes raw output as a GraphQL envelope. An errors list takes
// precedence over any partial data.
func parseEnvelope(raw []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrMalformedResponse, err)
	}
	if len(env.Errors) > 0 {
		return nil, env.upstreamError()
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: response has neither data nor errors", driven.ErrMalformedResponse)
	}
	return env.Data, nil
}

type searchData struct {
	Search *struct {
		IssueCount int `json:"issueCount"`
		PageInfo   struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Nodes []json.RawMessage `json:"nodes"`
	} `json:"search"`
}

type prNode struct {
	Number         int    `json:"number"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	IsDraft        bool   `json:"isDraft"`
	State          string `json:"state"`
	Mergeable      string `json:"mergeable"`
	ReviewDecision string `json:"reviewDecision"`
	IsInMergeQueue bool   `json:"isInMergeQueue"`
	Author         *struct {
		Login string `json:"login"`
	} `json:"author"`
	HeadRefName string    `json:"headRefName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Additions   int       `json:"additions"`
	Deletions   int       `json:"deletions"`
	Repository  struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	MergeQueueEntry *struct {
		Position int `json:"position"`
	} `json:"mergeQueueEntry"`
	Reviews struct {
		TotalCount int `json:"totalCount"`
	} `json:"reviews"`
	Commits struct {
		Nodes []struct {
			Commit struct {
				StatusCheckRollup *struct {
					State    string `json:"state"`
					Contexts struct {
						TotalCount int         `json:"totalCount"`
						Nodes      []checkNode `json:"nodes"`
					} `json:"contexts"`
				} `json:"statusCheckRollup"`
			} `json:"commit"`
		} `json:"nodes"`
	} `json:"commits"`
}

// checkNode is the flattened union of CheckRun and StatusContext.
type checkNode struct {
	Typename   string `json:"__typename"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	DetailsURL string `json:"detailsUrl"`
	Context    string `json:"context"`
	State      string `json:"state"`
	TargetURL  string `json:"targetUrl"`
}

// decodeSearchData converts the data object of a search response into a
// SearchPage. Nodes missing required fields are dropped and counted.
func decodeSearchData(data json.RawMessage) (*model.SearchPage, error) {
	var sd searchData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("%w: %v", driven.ErrMalformedResponse, err)
	}
	if sd.Search == nil {
		return nil, fmt.Errorf("%w: missing search object", driven.ErrMalformedResponse)
	}

	page := &model.SearchPage{
		Nodes:       make([]model.PRNode, 0, len(sd.Search.Nodes)),
		HasNextPage: sd.Search.PageInfo.HasNextPage,
		EndCursor:   sd.Search.PageInfo.EndCursor,
		IssueCount:  sd.Search.IssueCount,
	}

	for i, raw := range sd.Search.Nodes {
		node, err := decodeNode(raw)
		if err != nil {
			page.Dropped++
			slog.Warn("dropping malformed search record", "index", i, "error", err)
			continue
		}
		page.Nodes = append(page.Nodes, node)
	}

	return page, nil
}

func decodeNode(raw json.RawMessage) (model.PRNode, error) {
	var missing []string
	for _, path := range requiredNodeFields {
		if r := gjson.GetBytes(raw, path); !r.Exists() || r.Type == gjson.Null {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return model.PRNode{}, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	var n prNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return model.PRNode{}, err
	}

	out := model.PRNode{
		ID: model.Identity{
			Owner:  n.Repository.Owner.Login,
			Repo:   n.Repository.Name,
			Number: n.Number,
		},
		Title:          n.Title,
		URL:            n.URL,
		HeadRef:        n.HeadRefName,
		State:          mapState(n.State, n.IsDraft),
		IsInMergeQueue: n.IsInMergeQueue,
		Mergeable:      mapMergeable(n.Mergeable),
		ReviewDecision: mapReviewDecision(n.ReviewDecision),
		ApprovalCount:  n.Reviews.TotalCount,
		Additions:      n.Additions,
		Deletions:      n.Deletions,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		Checks:         []model.CheckContext{},
	}
	if n.Author != nil {
		out.Author = n.Author.Login
	}
	if n.IsInMergeQueue && n.MergeQueueEntry != nil {
		pos := n.MergeQueueEntry.Position
		out.QueuePosition = &pos
	}

	if len(n.Commits.Nodes) > 0 {
		if rollup := n.Commits.Nodes[0].Commit.StatusCheckRollup; rollup != nil {
			out.RollupState = rollup.State
			out.ChecksDeclaredTotal = rollup.Contexts.TotalCount
			for _, c := range rollup.Contexts.Nodes {
				if ctx, ok := mapCheckContext(c); ok {
					out.Checks = append(out.Checks, ctx)
				}
			}
		}
	}

	return out, nil
}

func mapCheckContext(c checkNode) (model.CheckContext, bool) {
	switch c.Typename {
	case "CheckRun":
		return model.CheckRunContext{
			Name:       c.Name,
			Status:     c.Status,
			Conclusion: c.Conclusion,
			DetailsURL: c.DetailsURL,
		}, true
	case "StatusContext":
		return model.StatusContext{
			Context:   c.Context,
			State:     c.State,
			TargetURL: c.TargetURL,
		}, true
	default:
		slog.Debug("skipping unknown check context type", "typename", c.Typename)
		return nil, false
	}
}

func mapState(state string, isDraft bool) model.PRState {
	switch state {
	case "MERGED":
		return model.PRStateMerged
	case "CLOSED":
		return model.PRStateClosed
	default:
		if isDraft {
			return model.PRStateDraft
		}
		return model.PRStateOpen
	}
}

func mapMergeable(s string) model.MergeableStatus {
	switch s {
	case "MERGEABLE":
		return model.MergeableMergeable
	case "CONFLICTING":
		return model.MergeableConflicting
	default:
		return model.MergeableUnknown
	}
}

func mapReviewDecision(s string) model.ReviewDecision {
	switch s {
	case "APPROVED":
		return model.ReviewDecisionApproved
	case "CHANGES_REQUESTED":
		return model.ReviewDecisionChangesRequested
	case "REVIEW_REQUIRED":
		return model.ReviewDecisionReviewRequired
	default:
		return model.ReviewDecisionNone
	}
}

// decodeViewerLogin extracts data.viewer.login.
func decodeViewerLogin(data json.RawMessage) (string, error) {
	login := gjson.GetBytes(data, "viewer.login")
	if login.Type != gjson.String || login.String() == "" {
		return "", fmt.Errorf("%w: missing viewer.login", driven.ErrMalformedResponse)
	}
	return login.String(), nil
}
