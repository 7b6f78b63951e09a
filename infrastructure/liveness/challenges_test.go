package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateChallengesCountAndUniqueness(t *testing.T) {
	for count := 2; count <= 4; count++ {
		for i := 0; i < 50; i++ {
			challenges := generateChallenges(count, nil, false)
			assert.Len(t, challenges, count)

			seen := map[ChallengeType]bool{}
			for _, challenge := range challenges {
				assert.False(t, seen[challenge], "duplicate challenge %s", challenge)
				seen[challenge] = true
				assert.Contains(t, allChallenges, challenge)
			}
		}
	}
}

func TestGenerateChallengesClampsCount(t *testing.T) {
	assert.Len(t, generateChallenges(0, nil, false), 2)
	assert.Len(t, generateChallenges(10, nil, false), len(allChallenges))
}

func TestGenerateChallengesRequireHeadTurn(t *testing.T) {
	for i := 0; i < 50; i++ {
		challenges := generateChallenges(2, nil, true)
		hasTurn := containsChallenge(challenges, ChallengeTurnLeft) ||
			containsChallenge(challenges, ChallengeTurnRight)
		assert.True(t, hasTurn, "expected a head turn in %v", challenges)
	}
}

func TestGenerateChallengesHonoursExclusions(t *testing.T) {
	for i := 0; i < 50; i++ {
		challenges := generateChallenges(2, []ChallengeType{ChallengeSmile, ChallengeBlink}, false)
		assert.NotContains(t, challenges, ChallengeSmile)
		assert.NotContains(t, challenges, ChallengeBlink)
	}
}

func TestGenerateChallengesIgnoresInfeasibleExclusions(t *testing.T) {
	challenges := generateChallenges(3, []ChallengeType{ChallengeSmile, ChallengeBlink}, false)
	assert.Len(t, challenges, 3)
}
