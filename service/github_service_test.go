package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gh-wrapped/wrapped-backend/config"
	"github.com/gh-wrapped/wrapped-backend/model"
	"github.com/google/go-github/v66/github"
	githubMock "github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

const successResponse = `{
	"data": {
		"user": {
			"login": "octocat",
			"name": "The Octocat",
			"avatarUrl": "https://avatars.test/octocat",
			"organizations": {
				"nodes": [
					{"login": "github", "name": "GitHub", "avatarUrl": "https://avatars.test/github"}
				]
			},
			"contributionsCollection": {
				"contributionCalendar": {
					"totalContributions": 8,
					"weeks": [
						{"contributionDays": [
							{"date": "2025-06-03", "contributionCount": 3, "contributionLevel": "SECOND_QUARTILE"},
							{"date": "2025-06-04", "contributionCount": 5, "contributionLevel": "THIRD_QUARTILE"}
						]}
					]
				},
				"pullRequestContributionsByRepository": [
					{
						"repository": {"name": "hello-world", "owner": {"login": "acme", "avatarUrl": "https://avatars.test/acme"}},
						"contributions": {"totalCount": 3}
					}
				],
				"issueContributionsByRepository": [
					{
						"repository": {"name": "hello-world", "owner": {"login": "acme", "avatarUrl": "https://avatars.test/acme"}},
						"contributions": {"totalCount": 1}
					}
				]
			},
			"repositories": {
				"nodes": [
					{"name": "hello-world", "languages": {"edges": [{"size": 100, "node": {"name": "Go", "color": "#00ADD8"}}]}}
				]
			}
		}
	}
}`

// newTestService spins up a graphql test server answering with the given
// status and body, and a service pointed at it with a frozen clock
func newTestService(t *testing.T, status int, body string, rateLimit int) (*wrappedService, *int) {
	t.Helper()

	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	conf := config.GetDefault()
	conf.Github.GraphQLEndpoint = server.URL
	conf.Github.Token = "test-token"

	limiter := rate.NewLimiter(rate.Every(time.Hour), rateLimit)
	svc := NewWrappedService(*conf, server.Client(), limiter).(*wrappedService)
	svc.now = func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) }

	return svc, &requestCount
}

// TestFetchUserProfile will test function FetchUserProfile
func TestFetchUserProfile(t *testing.T) {
	svc, _ := newTestService(t, http.StatusOK, successResponse, 60)

	profile, err := svc.FetchUserProfile(context.Background(), "octocat", 2025)
	assert.NoError(t, err)

	assert.Equal(t, "octocat", profile.Username)
	assert.Equal(t, "The Octocat", profile.Name)
	assert.Equal(t, "https://avatars.test/octocat", profile.AvatarURL)
	assert.Equal(t, 8, profile.TotalContributions)
	assert.Equal(t, model.Streak{Current: 2, Longest: 2}, profile.Streak)

	assert.Equal(t, []model.Organization{
		{Login: "github", Name: "GitHub", AvatarURL: "https://avatars.test/github", Repos: []string{}},
		{Login: "acme", Name: "acme", AvatarURL: "https://avatars.test/acme", TotalPRs: 3, TotalIssues: 1, Repos: []string{"hello-world"}},
	}, profile.Organizations)

	assert.Equal(t, []model.ContributionDay{
		{Date: "2025-06-03", Count: 3, Level: 2},
		{Date: "2025-06-04", Count: 5, Level: 3},
	}, profile.ContributionCalendar)

	assert.Equal(t, []model.Language{
		{Name: "Go", Color: "#00ADD8", Size: 100, Percentage: 100},
	}, profile.TopLanguages)
}

// TestFetchUserProfileUpstreamErrors checks the fetcher failure contract:
// transport status first, then the graphql error array, then a null user
func TestFetchUserProfileUpstreamErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		checkError func(t *testing.T, err error)
	}{
		{
			name:   "Non success status becomes an upstream http error",
			status: http.StatusInternalServerError,
			body:   "boom",
			checkError: func(t *testing.T, err error) {
				var httpErr *model.UpstreamHTTPError
				assert.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
				assert.Equal(t, "boom", httpErr.Body)
			},
		},
		{
			name:   "Graphql error array carries the first message",
			status: http.StatusOK,
			body:   `{"errors": [{"message": "rate limited"}, {"message": "second"}]}`,
			checkError: func(t *testing.T, err error) {
				var gqlErr *model.UpstreamGraphQLError
				assert.ErrorAs(t, err, &gqlErr)
				assert.Equal(t, "rate limited", gqlErr.Message)
			},
		},
		{
			name:   "Null user without errors means the user does not exist",
			status: http.StatusOK,
			body:   `{"data": {"user": null}}`,
			checkError: func(t *testing.T, err error) {
				var notFoundErr *model.UserNotFoundError
				assert.ErrorAs(t, err, &notFoundErr)
				assert.Equal(t, "octocat", notFoundErr.Username)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.status, tt.body, 60)

			profile, err := svc.FetchUserProfile(context.Background(), "octocat", 2025)
			assert.Error(t, err)
			assert.Equal(t, model.UserProfile{}, profile)

			tt.checkError(t, err)
		})
	}
}

// TestFetchUserProfileRateLimited checks that an exhausted local limiter
// fails before any outbound request is made
func TestFetchUserProfileRateLimited(t *testing.T) {
	svc, requestCount := newTestService(t, http.StatusOK, successResponse, 0)

	_, err := svc.FetchUserProfile(context.Background(), "octocat", 2025)

	var rateLimitErr *model.RateLimitError
	assert.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 0, *requestCount)
}

// TestFetchUserProfiles will test function FetchUserProfiles
func TestFetchUserProfiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request model.GraphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		// the unknown user answers with a null user object, everyone else
		// gets the canned octocat payload with the requested login
		if request.Variables["login"] == "ghost" {
			_, _ = w.Write([]byte(`{"data": {"user": null}}`))
			return
		}

		var response model.GraphQLResponse
		assert.NoError(t, json.Unmarshal([]byte(successResponse), &response))
		response.Data.User.Login = request.Variables["login"]

		assert.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(server.Close)

	conf := config.GetDefault()
	conf.Github.GraphQLEndpoint = server.URL
	conf.Github.Token = "test-token"

	svc := NewWrappedService(*conf, server.Client(), rate.NewLimiter(rate.Every(time.Hour), 60)).(*wrappedService)
	svc.now = func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) }

	t.Run("Profiles keep the requested order", func(t *testing.T) {
		profiles, err := svc.FetchUserProfiles(context.Background(), []string{"alice", "bob", "carol"}, 2025)

		assert.NoError(t, err)
		assert.Len(t, profiles, 3)
		assert.Equal(t, "alice", profiles[0].Username)
		assert.Equal(t, "bob", profiles[1].Username)
		assert.Equal(t, "carol", profiles[2].Username)
	})

	t.Run("A single failing user fails the whole batch", func(t *testing.T) {
		_, err := svc.FetchUserProfiles(context.Background(), []string{"alice", "ghost"}, 2025)

		var notFoundErr *model.UserNotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "ghost", notFoundErr.Username)
	})
}

// TestPrimeRateLimiter will test function PrimeRateLimiter
func TestPrimeRateLimiter(t *testing.T) {
	mockedHTTPClient := githubMock.NewMockedHTTPClient(
		githubMock.WithRequestMatchHandler(
			githubMock.GetRateLimit,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, err := w.Write(githubMock.MustMarshal(struct {
					Resources *github.RateLimits `json:"resources"`
				}{
					Resources: &github.RateLimits{
						Core: &github.Rate{Limit: 60, Remaining: 58},
					},
				}))

				if err != nil {
					t.Error("unable to configure mock http client")
				}
			}),
		),
	)

	mockedGithubClient := github.NewClient(mockedHTTPClient)
	limiter, err := PrimeRateLimiter(context.Background(), mockedGithubClient)

	assert.NoError(t, err)
	assert.Equal(t, 60, limiter.Burst())

	// two requests were already spent upstream, 58 remain locally
	assert.True(t, limiter.AllowN(time.Now(), 58))
	assert.False(t, limiter.Allow())
}
