package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/divijg19/Gamemaster-sub000/gamemaster/database/models"
)

func TestParseJob(t *testing.T) {
	for _, name := range []string{"fishing", "mining", "coding"} {
		job, ok := ParseJob(name)
		assert.True(t, ok)
		assert.Equal(t, Job(name), job)
	}
	_, ok := ParseJob("alchemy")
	assert.False(t, ok)
}

func TestJobXPForLevelGrows(t *testing.T) {
	assert.Equal(t, int64(75), jobXPForLevel(1))
	assert.Equal(t, int64(100), jobXPForLevel(2))
	assert.Less(t, jobXPForLevel(3), jobXPForLevel(10))
}

func TestJobTrackRoundTrip(t *testing.T) {
	p := &models.Profile{FishingLevel: 1, MiningLevel: 1, CodingLevel: 1}

	setJobTrack(p, JobMining, 40, 3)
	xp, level := jobTrack(p, JobMining)
	assert.Equal(t, int64(40), xp)
	assert.Equal(t, 3, level)

	// Other tracks untouched.
	xp, level = jobTrack(p, JobFishing)
	assert.Zero(t, xp)
	assert.Equal(t, 1, level)

	setJobTrack(p, JobCoding, 10, 2)
	assert.Equal(t, int64(10), p.CodingXP)
	assert.Equal(t, 2, p.CodingLevel)
}
