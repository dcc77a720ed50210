package model

// Types mirroring the Github GraphQL response shape
// https://docs.github.com/en/graphql/reference/objects#contributionscollection
// every optional field tolerates absence: missing collections decode to empty
// slices and are treated as such by the aggregation, never as errors

type GraphQLResponse struct {
	Data struct {
		User *GithubUser `json:"user"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type GithubUser struct {
	Login         string `json:"login"`
	Name          string `json:"name"`
	AvatarURL     string `json:"avatarUrl"`
	Organizations struct {
		Nodes []GithubOrganization `json:"nodes"`
	} `json:"organizations"`
	ContributionsCollection GithubContributions `json:"contributionsCollection"`
	Repositories            struct {
		Nodes []GithubRepository `json:"nodes"`
	} `json:"repositories"`
}

type GithubOrganization struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type GithubContributions struct {
	ContributionCalendar struct {
		TotalContributions int `json:"totalContributions"`
		Weeks              []struct {
			ContributionDays []GithubContributionDay `json:"contributionDays"`
		} `json:"weeks"`
	} `json:"contributionCalendar"`
	PullRequestContributionsByRepository []GithubRepositoryContributions `json:"pullRequestContributionsByRepository"`
	IssueContributionsByRepository       []GithubRepositoryContributions `json:"issueContributionsByRepository"`
}

type GithubContributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
	ContributionLevel string `json:"contributionLevel"`
}

// GithubRepositoryContributions groups a user's contributions of one kind
// (pull requests or issues) towards a single repository
type GithubRepositoryContributions struct {
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login     string `json:"login"`
			AvatarURL string `json:"avatarUrl"`
		} `json:"owner"`
	} `json:"repository"`
	Contributions struct {
		TotalCount int `json:"totalCount"`
	} `json:"contributions"`
}

type GithubRepository struct {
	Name      string `json:"name"`
	Languages struct {
		Edges []GithubLanguageEdge `json:"edges"`
	} `json:"languages"`
}

type GithubLanguageEdge struct {
	Size int `json:"size"`
	Node struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"node"`
}
