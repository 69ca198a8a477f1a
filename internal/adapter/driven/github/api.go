package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/auth"
	graphql "github.com/cli/shurcooL-graphql"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gogithub "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SearchClient = (*APIClient)(nil)

const defaultHost = "github.com"

type graphQLDoer interface {
	DoWithContext(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error
}

// APIOptions configures an APIClient.
type APIOptions struct {
	Host      string // Defaults to github.com.
	Token     string // Resolved from gh's stored credentials or GH_TOKEN when empty.
	Timeout   time.Duration
	Transport http.RoundTripper // Base transport; defaults to http.DefaultTransport.

	// RESTBaseURL overrides the REST endpoint. Intended for tests.
	RESTBaseURL string
}

// APIClient talks to GitHub over HTTPS. Search goes through the GraphQL API;
// the viewer lookup uses REST. Both share one transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. auth: go-gh headers for GraphQL, an oauth2 static token source for REST
type APIClient struct {
	gql     graphQLDoer
	rest    *gogithub.Client
	timeout time.Duration
}

// NewAPIClient creates an APIClient. It fails with ErrTransportUnavailable
// when no token can be found for the host.
func NewAPIClient(opts APIOptions) (*APIClient, error) {
	host := opts.Host
	if host == "" {
		host = defaultHost
	}

	token := opts.Token
	if token == "" {
		token, _ = auth.TokenForHost(host)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no token for %s, run `gh auth login` or set GH_TOKEN", driven.ErrTransportUnavailable, host)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cacheTransport := &httpcache.Transport{
		Transport:           base,
		Cache:               httpcache.NewMemoryCache(),
		MarkCachedResponses: true,
	}
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)

	gql, err := api.NewGraphQLClient(api.ClientOptions{
		Host:      host,
		AuthToken: token,
		Timeout:   timeout,
		Transport: rateLimitClient.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating graphql client: %w", err)
	}

	rest := gogithub.NewClient(&http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rateLimitClient.Transport,
		},
		Timeout: timeout,
	})
	if host != defaultHost {
		rest, err = rest.WithEnterpriseURLs("https://"+host+"/api/v3/", "https://"+host+"/api/uploads/")
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise urls: %w", err)
		}
	}
	if opts.RESTBaseURL != "" {
		u, err := url.Parse(opts.RESTBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		rest.BaseURL = u
	}

	return &APIClient{gql: gql, rest: rest, timeout: timeout}, nil
}

// SearchPullRequests runs one page of the search query.
func (c *APIClient) SearchPullRequests(ctx context.Context, filter string, first int, after string) (*model.SearchPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cursor := (*graphql.String)(nil)
	if after != "" {
		s := graphql.String(after)
		cursor = &s
	}
	vars := map[string]interface{}{
		"searchQuery": graphql.String(filter),
		"first":       graphql.Int(first),
		"after":       cursor,
	}

	var data json.RawMessage
	if err := c.gql.DoWithContext(ctx, searchQuery, vars, &data); err != nil {
		return nil, c.classify(ctx, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: response has no data", driven.ErrMalformedResponse)
	}
	return decodeSearchData(data)
}

// CurrentLogin returns the login the token belongs to.
func (c *APIClient) CurrentLogin(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user, resp, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		return "", c.classify(ctx, err)
	}
	logRateLimit(resp, "user")

	if user.GetLogin() == "" {
		return "", fmt.Errorf("%w: user has no login", driven.ErrMalformedResponse)
	}
	return user.GetLogin(), nil
}

func (c *APIClient) classify(ctx context.Context, err error) error {
	var gqlErr *api.GraphQLError
	if errors.As(err, &gqlErr) {
		msgs := make([]string, 0, len(gqlErr.Errors))
		for _, item := range gqlErr.Errors {
			msgs = append(msgs, item.Message)
		}
		return &driven.UpstreamError{Messages: msgs}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: request did not finish within %s", driven.ErrTimeout, c.timeout)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", driven.ErrMalformedResponse, err)
	}

	return fmt.Errorf("%w: %v", driven.ErrLaunchFailed, err)
}

// logRateLimit logs the GitHub API rate limit status after each REST call.
func logRateLimit(resp *gogithub.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
