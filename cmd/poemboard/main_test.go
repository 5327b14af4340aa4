package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("POEMS_DIR", "")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestArrangeStagePoem(t *testing.T) {
	out, err := run(t, "arrange", "--stage", "1", "--poem", "0", "--seed", "7", "--solve")
	require.NoError(t, err)
	assert.Contains(t, out, "静夜思 · 李白")
	assert.Contains(t, out, "床前明月光，疑是地上霜，举头望明月，低头思故乡")
	for _, clause := range []string{"0 床前明月光 [", "1 疑是地上霜 [", "2 举头望明月 [", "3 低头思故乡 ["} {
		assert.Contains(t, out, clause)
	}
	assert.NotContains(t, out, "[]")
}

func TestArrangeSeedIsDeterministic(t *testing.T) {
	a, err := run(t, "arrange", "--level", "high", "--seed", "42")
	require.NoError(t, err)
	b, err := run(t, "arrange", "--level", "high", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestArrangeMobileColumns(t *testing.T) {
	out, err := run(t, "arrange", "--stage", "1", "--mobile", "--seed", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	assert.Len(t, strings.Fields(last), 4)
}

func TestArrangeRejectsBadInput(t *testing.T) {
	_, err := run(t, "arrange", "--level", "college")
	assert.Error(t, err)
	_, err = run(t, "arrange", "--stage", "1", "--poem", "9")
	assert.Error(t, err)
	_, err = run(t, "arrange", "--stage", "40")
	assert.Error(t, err)
}

func TestStages(t *testing.T) {
	out, err := run(t, "stages", "--level", "elementary")
	require.NoError(t, err)
	assert.Contains(t, out, "elementary (小学): 6 poems, 3 stages")
	assert.Contains(t, out, "stage 3")
	assert.Contains(t, out, "0. 静夜思 · 李白")
}
