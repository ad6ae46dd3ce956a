package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodCategoryForScore(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, MoodStressed},
		{40, MoodStressed},
		{41, MoodTired},
		{60, MoodTired},
		{61, MoodHappy},
		{80, MoodHappy},
		{81, MoodEnergetic},
		{100, MoodEnergetic},
		{-1, MoodUnknown},
		{101, MoodUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MoodCategoryForScore(tc.score), "score=%d", tc.score)
	}
}

func TestValidMoodScore(t *testing.T) {
	assert.True(t, ValidMoodScore(0))
	assert.True(t, ValidMoodScore(100))
	assert.False(t, ValidMoodScore(-1))
	assert.False(t, ValidMoodScore(101))
}

func TestFilterMoodTags(t *testing.T) {
	got := FilterMoodTags([]string{" Happy", "happy", "bogus", "CALM", ""})
	assert.Equal(t, []string{"happy", "calm"}, got)
	assert.Empty(t, FilterMoodTags(nil))
}

func TestNewMoodEntry(t *testing.T) {
	e := NewMoodEntry(7, 85, []string{"energetic", "nope"}, "", time.Time{})
	assert.Equal(t, uint(7), e.UserID)
	assert.Equal(t, MoodEnergetic, e.MoodCategory)
	assert.Equal(t, []string{"energetic"}, []string(e.MoodTags))
	assert.False(t, e.Timestamp.IsZero())

	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	e = NewMoodEntry(7, 85, nil, "Custom", ts)
	assert.Equal(t, "Custom", e.MoodCategory)
	assert.Equal(t, ts, e.Timestamp)

	e.SetScore(20)
	assert.Equal(t, 20, e.MoodScore)
	assert.Equal(t, MoodStressed, e.MoodCategory)
}

func TestNewFriendship(t *testing.T) {
	f, err := NewFriendship(9, 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), f.UserID1)
	assert.Equal(t, uint(9), f.UserID2)
	assert.Equal(t, uint(9), f.Other(3))
	assert.Equal(t, uint(3), f.Other(9))

	_, err = NewFriendship(4, 4)
	assert.ErrorIs(t, err, ErrSelfFriendship)
}

func TestNewFriendRequest(t *testing.T) {
	r, err := NewFriendRequest(1, 2)
	require.NoError(t, err)
	assert.Equal(t, FriendRequestPending, r.Status)

	_, err = NewFriendRequest(5, 5)
	assert.ErrorIs(t, err, ErrSelfRequest)

	assert.True(t, FriendRequestRejected.Valid())
	assert.False(t, FriendRequestStatus("maybe").Valid())
}

func TestPreferencesIsEmpty(t *testing.T) {
	var nilPrefs *Preferences
	assert.True(t, nilPrefs.IsEmpty())
	assert.True(t, EmptyPreferences(1).IsEmpty())

	p := EmptyPreferences(1)
	p.Allergies = CleanList([]string{"peanut"})
	assert.False(t, p.IsEmpty())
}

func TestCleanList(t *testing.T) {
	got := CleanList([]string{" Jazz ", "", "  ", "Rock"})
	assert.Equal(t, []string{"Jazz", "Rock"}, []string(got))
}
