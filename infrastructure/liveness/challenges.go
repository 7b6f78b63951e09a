package liveness

import (
	"math/rand"
)

var allChallenges = []ChallengeType{ChallengeSmile, ChallengeBlink, ChallengeTurnLeft, ChallengeTurnRight}

var headTurnChallenges = []ChallengeType{ChallengeTurnLeft, ChallengeTurnRight}

// generateChallenges picks count distinct challenges at random. When
// requireHeadTurn is set, at least one head-turn challenge is included.
// Exclusions that would leave too few candidates are ignored.
func generateChallenges(count int, exclude []ChallengeType, requireHeadTurn bool) []ChallengeType {
	if count < 2 {
		count = 2
	}
	if count > len(allChallenges) {
		count = len(allChallenges)
	}

	available := make([]ChallengeType, 0, len(allChallenges))
	for _, challenge := range allChallenges {
		if !containsChallenge(exclude, challenge) {
			available = append(available, challenge)
		}
	}
	if len(available) < count {
		available = append([]ChallengeType(nil), allChallenges...)
	}

	selected := make([]ChallengeType, 0, count)

	if requireHeadTurn {
		turns := make([]ChallengeType, 0, len(headTurnChallenges))
		for _, challenge := range headTurnChallenges {
			if containsChallenge(available, challenge) {
				turns = append(turns, challenge)
			}
		}
		if len(turns) == 0 {
			turns = headTurnChallenges
			available = append(available, headTurnChallenges...)
		}
		pick := turns[rand.Intn(len(turns))]
		selected = append(selected, pick)
		available = removeChallenge(available, pick)
	}

	rand.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	for _, challenge := range available {
		if len(selected) >= count {
			break
		}
		selected = append(selected, challenge)
	}

	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}

func containsChallenge(list []ChallengeType, target ChallengeType) bool {
	for _, challenge := range list {
		if challenge == target {
			return true
		}
	}
	return false
}

func removeChallenge(list []ChallengeType, target ChallengeType) []ChallengeType {
	filtered := list[:0]
	for _, challenge := range list {
		if challenge != target {
			filtered = append(filtered, challenge)
		}
	}
	return filtered
}
