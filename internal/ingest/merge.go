package ingest

import "github.com/devinsight/devinsight/internal/models"

// MergeContributorStats attaches per-repo contribution totals to each issue
// whose creator appears in the contributor list. It returns a new slice and
// never mutates its inputs.
//
// When the creator is unknown to the contributors endpoint, the login and
// role are still recorded but the counts stay nil: "no data" must remain
// distinguishable from "zero contributions" because the presentation ranking
// depends on it.
func MergeContributorStats(issues []models.Issue, contributors []models.Contributor) []models.Issue {
	byLogin := make(map[string]int, len(contributors))
	for _, c := range contributors {
		if c.Login != "" {
			byLogin[c.Login] = c.Contributions
		}
	}

	out := make([]models.Issue, len(issues))
	for i, is := range issues {
		if is.Creator != "" {
			is.ContributorLogin = is.Creator
			is.ContributorRole = "author"
			if n, ok := byLogin[is.Creator]; ok {
				contributions := n
				commits := n
				is.Contributions = &contributions
				is.CommitCount = &commits
			} else {
				is.Contributions = nil
				is.CommitCount = nil
			}
		}
		out[i] = is
	}
	return out
}
