package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethods(t *testing.T) {
	tm, err := ParseTeamMethod(" AutoBalance ")
	require.NoError(t, err)
	assert.Equal(t, TeamAutobalance, tm)

	cm, err := ParseCaptainMethod("rank")
	require.NoError(t, err)
	assert.Equal(t, CaptainRank, cm)

	mm, err := ParseMapMethod("vote")
	require.NoError(t, err)
	assert.Equal(t, MapVote, mm)
}

func TestParseMethodRejectsUnknown(t *testing.T) {
	_, err := ParseTeamMethod("draft")
	require.Error(t, err)

	var me *MethodError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "team", me.Axis)
	assert.Equal(t, "draft", me.Value)

	_, err = ParseCaptainMethod("")
	assert.Error(t, err)
	_, err = ParseMapMethod("captain")
	assert.Error(t, err)
}
