package service

import (
	"sort"
	"time"

	"github.com/gh-wrapped/wrapped-backend/model"
)

const dateLayout = "2006-01-02"

// topLanguagesCount is the maximum number of entries returned by RankLanguages
// fewer entries are returned when the user has fewer languages, never padded
const topLanguagesCount = 5

// contributionLevels maps the ordinal level names published by Github to the
// 0-4 integers exposed on the API. Unknown names fall back to 0
var contributionLevels = map[string]int{
	"NONE":            0,
	"FIRST_QUARTILE":  1,
	"SECOND_QUARTILE": 2,
	"THIRD_QUARTILE":  3,
	"FOURTH_QUARTILE": 4,
}

// AssembleProfile turns a raw Github user into the wrapped summary.
// Pure transform: no I/O, deterministic for a given user and today value
func AssembleProfile(user model.GithubUser, today time.Time) model.UserProfile {
	calendar := FlattenCalendar(user.ContributionsCollection)

	// display name falls back to the login when the user never set one
	name := user.Name
	if name == "" {
		name = user.Login
	}

	return model.UserProfile{
		Username:             user.Login,
		Name:                 name,
		AvatarURL:            user.AvatarURL,
		Organizations:        MergeOrganizations(user),
		ContributionCalendar: calendar,
		TotalContributions:   user.ContributionsCollection.ContributionCalendar.TotalContributions,
		Streak:               ComputeStreak(calendar, today),
		TopLanguages:         RankLanguages(user.Repositories.Nodes),
	}
}

// MergeOrganizations reconciles the two organization sources into one keyed
// collection: declared memberships (which carry no activity counts) and the
// per-repository contribution records (which carry no membership info).
// Output order is deterministic: membership order first, then first-encounter
// order of organizations discovered through contributions
func MergeOrganizations(user model.GithubUser) []model.Organization {
	byLogin := make(map[string]*model.Organization)
	order := make([]string, 0, len(user.Organizations.Nodes))

	for _, org := range user.Organizations.Nodes {
		if _, found := byLogin[org.Login]; found {
			continue
		}

		byLogin[org.Login] = &model.Organization{
			Login:     org.Login,
			Name:      org.Name,
			AvatarURL: org.AvatarURL,
			Repos:     []string{},
		}
		order = append(order, org.Login)
	}

	foldContributions(byLogin, &order, user.ContributionsCollection.PullRequestContributionsByRepository, func(org *model.Organization, count int) {
		org.TotalPRs += count
	})

	foldContributions(byLogin, &order, user.ContributionsCollection.IssueContributionsByRepository, func(org *model.Organization, count int) {
		org.TotalIssues += count
	})

	organizations := make([]model.Organization, 0, len(order))
	for _, login := range order {
		organizations = append(organizations, *byLogin[login])
	}

	return organizations
}

// foldContributions accumulates one kind of contribution records into the
// organization mapping, creating entries for organizations the user
// contributed to without being a member
func foldContributions(byLogin map[string]*model.Organization, order *[]string, records []model.GithubRepositoryContributions, accumulate func(*model.Organization, int)) {
	for _, record := range records {
		ownerLogin := record.Repository.Owner.Login

		org, found := byLogin[ownerLogin]
		if !found {
			// organizations only known through contributions carry no display
			// name, default it to the login
			org = &model.Organization{
				Login:     ownerLogin,
				Name:      ownerLogin,
				AvatarURL: record.Repository.Owner.AvatarURL,
				Repos:     []string{},
			}
			byLogin[ownerLogin] = org
			*order = append(*order, ownerLogin)
		}

		accumulate(org, record.Contributions.TotalCount)

		// the same repository can produce both a PR and an issue record
		if !containsString(org.Repos, record.Repository.Name) {
			org.Repos = append(org.Repos, record.Repository.Name)
		}
	}
}

// FlattenCalendar turns the weeks-of-days structure into a single day list,
// keeping the chronological order the weeks arrive in
func FlattenCalendar(contributions model.GithubContributions) []model.ContributionDay {
	days := make([]model.ContributionDay, 0)

	for _, week := range contributions.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, model.ContributionDay{
				Date:  day.Date,
				Count: day.ContributionCount,
				Level: contributionLevels[day.ContributionLevel],
			})
		}
	}

	return days
}

// ComputeStreak derives the current and longest run of consecutive days with
// contributions. today is injected by the caller so the computation stays
// testable, only its date part matters.
// the current streak only counts when its last active day is today or
// yesterday, otherwise it is considered broken and reported as 0
func ComputeStreak(days []model.ContributionDay, today time.Time) model.Streak {
	if len(days) == 0 {
		return model.Streak{}
	}

	// input is chronological when it comes straight from the calendar, but
	// nothing guarantees that for other callers
	sorted := make([]model.ContributionDay, len(days))
	copy(sorted, days)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	longest := 0
	run := 0

	for _, day := range sorted {
		if day.Count > 0 {
			run++

			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := midnight.AddDate(0, 0, -1)

	current := 0
	counting := false

	for i := len(sorted) - 1; i >= 0; i-- {
		day := sorted[i]

		if day.Count == 0 {
			if counting {
				break
			}

			// zero-count days after the last active day do not break the
			// streak by themselves, the window check below decides
			continue
		}

		if !counting {
			date, err := time.Parse(dateLayout, day.Date)

			// the streak is only current when its most recent active day is
			// within one day of today
			if err != nil || date.After(midnight) || date.Before(cutoff) {
				break
			}

			counting = true
		}

		current++
	}

	return model.Streak{Current: current, Longest: longest}
}

// RankLanguages merges language byte sizes across every repository and
// returns the biggest ones, at most topLanguagesCount entries.
// percentages are computed against the total over all accumulated languages,
// before truncation, so the returned percentages do not sum to 100 when
// languages are cut off
func RankLanguages(repositories []model.GithubRepository) []model.Language {
	bySize := make(map[string]*model.Language)
	order := make([]string, 0)

	for _, repository := range repositories {
		for _, edge := range repository.Languages.Edges {
			language, found := bySize[edge.Node.Name]
			if !found {
				// color comes from the first occurrence, later repositories
				// only contribute size
				language = &model.Language{
					Name:  edge.Node.Name,
					Color: edge.Node.Color,
				}
				bySize[edge.Node.Name] = language
				order = append(order, edge.Node.Name)
			}

			language.Size += edge.Size
		}
	}

	totalSize := 0
	for _, name := range order {
		totalSize += bySize[name].Size
	}

	languages := make([]model.Language, 0, len(order))
	for _, name := range order {
		language := *bySize[name]

		if totalSize > 0 {
			language.Percentage = 100 * float64(language.Size) / float64(totalSize)
		}

		languages = append(languages, language)
	}

	// stable keeps first-encounter order for equal sizes
	sort.SliceStable(languages, func(i, j int) bool {
		return languages[i].Size > languages[j].Size
	})

	if len(languages) > topLanguagesCount {
		languages = languages[:topLanguagesCount]
	}

	return languages
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}

	return false
}
