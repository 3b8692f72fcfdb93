package session_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/game/character"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/session"
	"github.com/cory-johannsen/goodnight/internal/testutil"
)

func newGame(t *testing.T) (*session.GameSession, *ruleset.Tables) {
	t.Helper()
	tables := testutil.Tables(t)
	s, err := session.NewGame(tables, testutil.Roller(0), config.GameConfig{
		PlayerTemplate: "candidate",
		PlayerLevel:    1,
		StartingMoney:  100,
	})
	require.NoError(t, err)
	return s, tables
}

func addAide(t *testing.T, s *session.GameSession, tables *ruleset.Tables) *character.Combatant {
	t.Helper()
	c, err := character.NewAlly(tables.Variants("aide")[0], 1, tables.Levels(), nil)
	require.NoError(t, err)
	require.NoError(t, s.AddAlly(c))
	return c
}

func TestNewGame_PlayerFromLevelTable(t *testing.T) {
	s, _ := newGame(t)
	p := s.Player()
	require.NotNil(t, p)
	assert.Equal(t, "candidate", p.Template.ID)
	assert.Equal(t, 30, p.MaxVotes)
	assert.Equal(t, 100, s.Money())
	assert.Same(t, s.Items(), p.Items)
}

func TestNewGame_UnknownTemplate(t *testing.T) {
	_, err := session.NewGame(testutil.Tables(t), testutil.Roller(0), config.GameConfig{PlayerTemplate: "senator", PlayerLevel: 1})
	assert.Error(t, err)
}

func TestAddAlly_PartyFull(t *testing.T) {
	s, tables := newGame(t)
	for i := 1; i < session.MaxAllies; i++ {
		addAide(t, s, tables)
	}
	c, err := character.NewAlly(tables.Variants("aide")[0], 1, tables.Levels(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.AddAlly(c), session.ErrPartyFull)
}

func TestRemoveAlly_KeepsPlayer(t *testing.T) {
	s, tables := newGame(t)
	addAide(t, s, tables)
	assert.False(t, s.RemoveAlly("candidate"))
	assert.True(t, s.RemoveAlly("aide"))
	assert.Len(t, s.Allies(), 1)
}

func TestFlags(t *testing.T) {
	s, _ := newGame(t)
	s.SetFlag("met_donor", true)
	s.SetFlag("debated", true)
	s.SetFlag("debated", false)
	assert.True(t, s.Flag("met_donor"))
	assert.Equal(t, []string{"met_donor"}, s.Flags())
}

func TestGrantRewards_SplitsAcrossSurvivors(t *testing.T) {
	s, tables := newGame(t)
	aide := addAide(t, s, tables)
	fallen := addAide(t, s, tables)
	fallen.SetVotes(0)
	enc, _ := tables.Encounter("hallway")

	ups := s.GrantRewards(enc.XP, enc.Money, enc.Drops)

	assert.Empty(t, ups)
	assert.Equal(t, 20, s.Player().XP)
	assert.Equal(t, 20, aide.XP)
	assert.Zero(t, fallen.XP)
	assert.Equal(t, 120, s.Money())
	coffee, _ := tables.Attack("coffee")
	assert.Equal(t, 1, s.Items().Quantity(coffee))
}

func TestLevelUp_AllocatesSkillPoints(t *testing.T) {
	s, _ := newGame(t)
	p := s.Player()
	p.XP = 90
	cunning := p.Cunning

	ups := s.GrantRewards(40, 0, nil)
	require.Len(t, ups, 1)
	lu := ups[0]
	assert.Equal(t, 90, p.XP, "share is held until the level-up begins")

	lu.Begin()
	lu.Begin()
	assert.Equal(t, 130, p.XP)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 40, p.MaxVotes)
	assert.Equal(t, 12, p.MaxSpin)
	assert.Equal(t, 3, lu.Remaining())
	assert.False(t, lu.Done())

	assert.False(t, lu.Adjust(session.SkillWit, -1))
	assert.True(t, lu.Adjust(session.SkillCunning, 2))
	assert.True(t, lu.Adjust(session.SkillWit, 1))
	assert.False(t, lu.Adjust(session.SkillSpeed, 1))
	assert.True(t, lu.Adjust(session.SkillWit, -1))
	assert.True(t, lu.Adjust(session.SkillFlair, 1))
	require.True(t, lu.Done())

	flair := p.Flair
	lu.Commit()
	assert.Equal(t, cunning+2, p.Cunning)
	assert.Equal(t, flair+1, p.Flair)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	s, tables := newGame(t)
	addAide(t, s, tables)
	coffee, _ := tables.Attack("coffee")
	s.Items().Add(coffee, 3)
	s.SetFlag("met_donor", true)
	s.Player().Spin = 4

	raw, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)
	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	restored, err := session.Restore(snap, tables)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	for _, c := range restored.Allies() {
		assert.Same(t, restored.Items(), c.Items)
	}
}

func TestRestore_UnknownItem(t *testing.T) {
	s, tables := newGame(t)
	snap := s.Snapshot()
	snap.Items = append(snap.Items, character.ItemSnapshot{Attack: "yacht", Quantity: 1})
	_, err := session.Restore(snap, tables)
	assert.ErrorContains(t, err, "yacht")
}

func TestProperty_MoneyNeverNegative(t *testing.T) {
	s, _ := newGame(t)
	rapid.Check(t, func(rt *rapid.T) {
		for _, d := range rapid.SliceOf(rapid.IntRange(-500, 500)).Draw(rt, "deltas") {
			s.AdjustMoney(d)
			if s.Money() < 0 {
				rt.Fatalf("money %d", s.Money())
			}
		}
	})
}
