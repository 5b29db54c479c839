package scenario

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countVerb(trace []string, verb string) int {
	n := 0
	for _, line := range trace {
		if strings.HasPrefix(line, verb+" ") {
			n++
		}
	}
	return n
}

func TestReplayReorder(t *testing.T) {
	s, err := Load("testdata/reorder.yaml")
	require.NoError(t, err)

	res, err := Replay(s)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "reorder", []byte(res.Dump))

	// Swapping two adjacent items costs one relocation, not two.
	assert.Equal(t, 1, countVerb(res.Trace, "move"))
	assert.Equal(t, 0, countVerb(res.Trace, "remove"))
	assert.Equal(t, 2, countVerb(res.Trace, "settext"))
}

func TestReplayChurn(t *testing.T) {
	s, err := Load("testdata/churn.yaml")
	require.NoError(t, err)

	res, err := Replay(s)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "churn", []byte(res.Dump))

	// Dropping a middle item and appending a new one never shifts survivors.
	assert.Equal(t, 1, countVerb(res.Trace, "remove"))
	assert.Equal(t, 1, countVerb(res.Trace, "insert"))
	assert.Equal(t, 0, countVerb(res.Trace, "move"))
}

func TestReplayTextOnlyUpdate(t *testing.T) {
	s, err := Parse([]byte(`
schemaVersion: v1
steps:
  - set:
      - key: a
        text: before
  - set:
      - key: a
        text: after
`))
	require.NoError(t, err)

	res, err := Replay(s)
	require.NoError(t, err)

	assert.Contains(t, res.Dump, `"after"`)
	assert.Equal(t, 1, countVerb(res.Trace, "settext"))
	assert.Equal(t, 0, countVerb(res.Trace, "move"))
	assert.Equal(t, 0, countVerb(res.Trace, "remove"))
	assert.Equal(t, 0, countVerb(res.Trace, "insert"))
}

func TestReplayEmptyScenario(t *testing.T) {
	s, err := Parse([]byte("schemaVersion: v1\nsteps: []\n"))
	require.NoError(t, err)

	res, err := Replay(s)
	require.NoError(t, err)
	assert.Equal(t, "<root>\n  #marker\n  #marker\n", res.Dump)
	assert.Empty(t, res.Trace)
}

func TestValidateRejectsNonSemver(t *testing.T) {
	s := &Scenario{SchemaVersion: "1.0"}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schemaVersion")
}

func TestValidateRejectsUnsupportedMajor(t *testing.T) {
	s := &Scenario{SchemaVersion: "v2.0.0"}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schemaVersion")
}

func TestReplayRejectsInvalidScenario(t *testing.T) {
	_, err := Replay(&Scenario{SchemaVersion: "nope"})
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("steps: [unclosed"))
	require.Error(t, err)
}
