package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gh-wrapped/wrapped-backend/config"
	"github.com/gh-wrapped/wrapped-backend/model"
	"github.com/google/go-github/v66/github"

	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

// userAgent identifies this client to Github, the GraphQL API rejects
// requests without one
const userAgent = "gh-wrapped/1.0"

type WrappedService interface {
	FetchUserProfile(ctx context.Context, username string, year int) (model.UserProfile, error)
	FetchUserProfiles(ctx context.Context, usernames []string, year int) ([]model.UserProfile, error)
}

type wrappedService struct {
	httpClient        *http.Client
	githubRateLimiter *rate.Limiter
	config            config.Config

	// injected clock so streak tests do not depend on the wall clock
	now func() time.Time
}

// NewWrappedService builds the service around an injected http client and
// rate limiter, so tests can swap both for mocked ones
func NewWrappedService(config config.Config, httpClient *http.Client, rateLimiter *rate.Limiter) WrappedService {
	return &wrappedService{
		httpClient:        httpClient,
		githubRateLimiter: rateLimiter,
		config:            config,
		now:               time.Now,
	}
}

// PrimeRateLimiter builds the local outbound rate limiter from the current
// Github rate limit state, consuming the requests already spent elsewhere.
// this keeps the local limiter right even when other clients share the token
func PrimeRateLimiter(ctx context.Context, githubClient *github.Client) (*rate.Limiter, error) {
	rateLimits, _, err := githubClient.RateLimit.Get(ctx)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup local rate limiter with rate limits infos from github")

	rateLimiter := rate.NewLimiter(rate.Every(time.Hour), rateLimits.Core.Limit)

	if !rateLimiter.AllowN(time.Now(), rateLimits.Core.Limit-rateLimits.Core.Remaining) {
		return nil, fmt.Errorf("unable to consume already spent requests from the rate limiter")
	}

	return rateLimiter, nil
}

// FetchUserProfile runs the whole pipeline for one user: build the query,
// fetch, validate, aggregate, assemble. A single failed request propagates
// immediately, there are no retries
func (s *wrappedService) FetchUserProfile(ctx context.Context, username string, year int) (model.UserProfile, error) {
	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return model.UserProfile{}, &model.RateLimitError{}
	}

	log.WithFields(log.Fields{
		"username": username,
		"year":     year,
	}).Info("fetch yearly contributions from github")

	user, err := s.fetchContributions(ctx, username, year)
	if err != nil {
		return model.UserProfile{}, err
	}

	return AssembleProfile(*user, s.now().UTC()), nil
}

// fetchContributions issues the single GraphQL POST and validates the
// response per the upstream contract: transport status first, then the
// graphql error array, then the presence of the user object
func (s *wrappedService) fetchContributions(ctx context.Context, username string, year int) (*model.GithubUser, error) {
	body, err := json.Marshal(model.ContributionQuery{Username: username, Year: year}.ToGraphQLRequest())
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Github.GraphQLEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.config.Github.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	res, err := s.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("error catched when fetching data from github")
		return nil, &model.UpstreamHTTPError{StatusCode: 0, Body: err.Error()}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &model.UpstreamHTTPError{StatusCode: res.StatusCode, Body: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"status":   res.StatusCode,
			"username": username,
		}).Error("github graphql endpoint answered with an error status")

		return nil, &model.UpstreamHTTPError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	var response model.GraphQLResponse
	if err := json.Unmarshal(resBody, &response); err != nil {
		return nil, &model.UpstreamHTTPError{StatusCode: res.StatusCode, Body: "unable to decode response body"}
	}

	if len(response.Errors) > 0 {
		log.WithFields(log.Fields{
			"message":  response.Errors[0].Message,
			"username": username,
		}).Error("github graphql endpoint answered with errors")

		return nil, &model.UpstreamGraphQLError{Message: response.Errors[0].Message}
	}

	if response.Data.User == nil {
		return nil, &model.UserNotFoundError{Username: username}
	}

	return response.Data.User, nil
}

// FetchUserProfiles fetches several users in parallel for the compare
// endpoint, bounded by the configured number of parallel tasks.
// results keep the order of the requested usernames, any per-user failure
// fails the whole call
func (s *wrappedService) FetchUserProfiles(ctx context.Context, usernames []string, year int) ([]model.UserProfile, error) {
	type profileResult struct {
		username string
		profile  model.UserProfile
		err      error
	}

	swg := sizedwaitgroup.New(s.config.Tasks.MaxParallelTasksAllowed)
	results := make(chan profileResult, len(usernames))

	for _, username := range usernames {
		swg.Add()

		go func(username string) {
			defer swg.Done()

			profile, err := s.FetchUserProfile(ctx, username, year)
			results <- profileResult{username: username, profile: profile, err: err}
		}(username)
	}

	log.Debug("waiting for all threads for loading user profiles to be finished")
	swg.Wait()
	log.Debug("all threads for loading user profiles finished")

	close(results)

	profilesByUsername := make(map[string]model.UserProfile, len(usernames))

	for result := range results {
		if result.err != nil {
			return nil, result.err
		}

		profilesByUsername[result.username] = result.profile
	}

	profiles := make([]model.UserProfile, 0, len(usernames))
	for _, username := range usernames {
		profiles = append(profiles, profilesByUsername[username])
	}

	return profiles, nil
}
