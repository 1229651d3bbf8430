package app

import (
	"sort"

	"tugofwar-quiz-service/internal/domain"
)

// IndividualRanking sorts participants by score descending, tie-broken by
// join order so standings are stable between recomputations.
func IndividualRanking(participants []*domain.Participant) []domain.PlayerStanding {
	ordered := make([]*domain.Participant, len(participants))
	copy(ordered, participants)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].JoinOrder < ordered[j].JoinOrder
	})

	standings := make([]domain.PlayerStanding, 0, len(ordered))
	for _, p := range ordered {
		standings = append(standings, domain.PlayerStanding{
			ID:    p.ID,
			Name:  p.Name,
			Group: p.Group,
			Score: p.Score,
		})
	}
	return standings
}

// GroupRanking sums scores per group. Every configured group appears with at
// least zero, so an empty group still shows on the board. Ties break by group
// number ascending.
func GroupRanking(participants []*domain.Participant, configuredGroups int) []domain.GroupStanding {
	totals := make(map[int]int)
	for g := 1; g <= configuredGroups; g++ {
		totals[g] = 0
	}
	for _, p := range participants {
		totals[p.Group] += p.Score
	}

	standings := make([]domain.GroupStanding, 0, len(totals))
	for g, score := range totals {
		standings = append(standings, domain.GroupStanding{Group: g, Score: score})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Group < standings[j].Group
	})
	return standings
}
