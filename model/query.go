package model

import "fmt"

// contributionsQuery is the fixed GraphQL document sent to Github.
// limits are intentionally hardcoded: there is no pagination, a single
// request carries everything the aggregation needs
const contributionsQuery = `query ($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    login
    name
    avatarUrl
    organizations(first: 10) {
      nodes {
        login
        name
        avatarUrl
      }
    }
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
            contributionLevel
          }
        }
      }
      pullRequestContributionsByRepository(maxRepositories: 25) {
        repository {
          name
          owner {
            login
            avatarUrl
          }
        }
        contributions {
          totalCount
        }
      }
      issueContributionsByRepository(maxRepositories: 25) {
        repository {
          name
          owner {
            login
            avatarUrl
          }
        }
        contributions {
          totalCount
        }
      }
    }
    repositories(first: 100, ownerAffiliations: OWNER, isFork: false) {
      nodes {
        name
        languages(first: 10, orderBy: {field: SIZE, direction: DESC}) {
          edges {
            size
            node {
              name
              color
            }
          }
        }
      }
    }
  }
}`

// GraphQLRequest is the POST body sent to the Github GraphQL endpoint
type GraphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type ContributionQuery struct {
	Username string
	Year     int
}

// ToGraphQLRequest builds the request body for a full-year contributions query.
// the year is not validated here: an out-of-range year simply yields an empty
// calendar from Github
func (params ContributionQuery) ToGraphQLRequest() GraphQLRequest {
	return GraphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]string{
			"login": params.Username,
			"from":  fmt.Sprintf("%d-01-01T00:00:00Z", params.Year),
			"to":    fmt.Sprintf("%d-12-31T23:59:59Z", params.Year),
		},
	}
}
