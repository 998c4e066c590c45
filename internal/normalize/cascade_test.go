package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/recordloom-cli/internal/record"
)

// tagStage resolves any value containing match to a string naming the stage.
func tagStage(name, match string) Stage {
	return Stage{
		Name: name,
		Parse: func(raw string) Outcome {
			if strings.Contains(raw, match) {
				return Resolved(record.Str(name + ":" + raw))
			}
			return Unresolved
		},
	}
}

func TestStart_MissingIsResolved(t *testing.T) {
	state := Start([]record.Value{record.Null(), record.Str("x")})
	require.Len(t, state, 2)
	assert.True(t, state[0].IsResolved())
	assert.True(t, state[0].Value().IsMissing())
	assert.False(t, state[1].IsResolved())
}

func TestCascade_FirstMatchWins(t *testing.T) {
	raw := []record.Value{record.Str("ab"), record.Str("b"), record.Str("c"), record.Null()}
	c := Cascade{tagStage("first", "a"), tagStage("second", "b")}

	state, trace := c.Run(raw)

	assert.Equal(t, "first:ab", state[0].Value().String())
	assert.Equal(t, "second:b", state[1].Value().String())
	assert.False(t, state[2].IsResolved())
	assert.True(t, state[3].IsResolved())

	require.Len(t, trace, 2)
	assert.Equal(t, StageReport{Stage: "first", Attempted: 3, Resolved: 1, Remaining: 2}, trace[0])
	assert.Equal(t, StageReport{Stage: "second", Attempted: 2, Resolved: 1, Remaining: 1}, trace[1])
	assert.Equal(t, []string{"first", "second"}, c.Names())
}

func TestStage_ApplyDoesNotTouchPriorState(t *testing.T) {
	raw := []record.Value{record.Str("a"), record.Str("a")}
	prior := []Outcome{Resolved(record.Str("kept")), Unresolved}

	next, rep := tagStage("s", "a").Apply(raw, prior)

	assert.Equal(t, "kept", next[0].Value().String())
	assert.Equal(t, "s:a", next[1].Value().String())
	assert.False(t, prior[1].IsResolved(), "prior snapshot must stay unchanged")
	assert.Equal(t, 1, rep.Attempted)
}

func TestStage_AppliesNarrowsAttempts(t *testing.T) {
	s := tagStage("slash", "/")
	s.Applies = func(raw string) bool { return strings.Contains(raw, "/") }
	raw := []record.Value{record.Str("1/2"), record.Str("1-2")}

	_, rep := s.Apply(raw, Start(raw))
	assert.Equal(t, StageReport{Stage: "slash", Attempted: 1, Resolved: 1, Remaining: 1}, rep)
}

func TestValuesAndSamples(t *testing.T) {
	raw := []record.Value{record.Str(" bad "), record.Str("ok"), record.Str("worse")}
	state, _ := Cascade{tagStage("ok", "ok")}.Run(raw)

	vals := Values(state)
	assert.True(t, vals[0].IsMissing())
	assert.Equal(t, "ok:ok", vals[1].String())
	assert.Equal(t, []string{"bad"}, UnresolvedSamples(raw, state, 1))
	assert.Equal(t, []string{"bad", "worse"}, UnresolvedSamples(raw, state, 0))
}
