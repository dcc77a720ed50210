package model

// ContributionDay is a single day of the flattened contribution calendar.
// Level is the 0-4 intensity bucket published by Github, not the raw count.
type ContributionDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Organization aggregates a user's activity towards a single Github organization.
// It merges two sources: declared memberships and contribution records, so an
// organization can appear here even if the user never joined it.
type Organization struct {
	Login       string   `json:"login"`
	Name        string   `json:"name"`
	AvatarURL   string   `json:"avatarUrl"`
	TotalPRs    int      `json:"totalPRs"`
	TotalIssues int      `json:"totalIssues"`
	Repos       []string `json:"repos"`
}

type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Language is an aggregated language entry, sizes summed across every
// repository the language appears in
type Language struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Size       int     `json:"size"`
	Percentage float64 `json:"percentage"`
}

// UserProfile is the wrapped summary returned to consumers.
// This shape is the stable contract with the UI, do not rename fields
type UserProfile struct {
	Username             string            `json:"username"`
	Name                 string            `json:"name"`
	AvatarURL            string            `json:"avatarUrl"`
	Organizations        []Organization    `json:"organizations"`
	ContributionCalendar []ContributionDay `json:"contributionCalendar"`
	TotalContributions   int               `json:"totalContributions"`
	Streak               Streak            `json:"streak"`
	TopLanguages         []Language        `json:"topLanguages"`
}
