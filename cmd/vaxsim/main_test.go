// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vaxsim/config"
	"github.com/katalvlaran/vaxsim/driver"
)

const smallConfig = `
run:
  seed: 5
  horizon: 6
  statistics: 2
epidemic:
  model: sir
  beta: 0.8
  gamma: 0.4
  regions:
    - name: a
      initial: {S: 95, I: 5}
    - name: b
      initial: {S: 50}
population:
  size: 40
  attractors: 2
network:
  degree: 4
attitude:
  every: 1
  offset: 1
vaccination:
  every: 3
  offset: 3
  uptake: 0.5
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaxsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vaxsim version "+version+"\n", out)
}

func TestRun_Table(t *testing.T) {
	path := writeConfig(t, smallConfig)
	out, err := execute(t, "run", "--config", path, "--log-level", "error", "--regions")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header + 4 records (t = 0, 2, 4, 6) × (total + 2 regions)
	require.Len(t, lines, 1+4*3)
	assert.Contains(t, lines[0], "willingness")
	assert.Contains(t, lines[1], "*")
	assert.Contains(t, lines[2], " a ")
}

func TestRun_JSONAndSeedOverride(t *testing.T) {
	path := writeConfig(t, smallConfig)
	run := func(seed string) []map[string]any {
		out, err := execute(t, "run", "--config", path, "--json", "--seed", seed, "--log-level", "error")
		require.NoError(t, err)
		var recs []map[string]any
		sc := bufio.NewScanner(strings.NewReader(out))
		for sc.Scan() {
			var rec map[string]any
			require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
			recs = append(recs, rec)
		}
		return recs
	}

	a := run("11")
	require.Len(t, a, 4)
	assert.Equal(t, 6.0, a[3]["t"])
	total := a[0]["total"].(map[string]any)
	assert.Equal(t, 95.0+50, total["S"])
	assert.Equal(t, a, run("11"))
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "run:\n  horizon: -1\n")
	_, err := execute(t, "run", "--config", path)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRun_WallBudget(t *testing.T) {
	path := writeConfig(t, smallConfig)
	_, err := execute(t, "run", "--config", path, "--log-level", "error", "--pace", "1s", "--wall-budget", "50ms")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var re *driver.RunError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, uint64(5), re.Seed)
}

func TestEnsemble_Compare(t *testing.T) {
	path := writeConfig(t, smallConfig)
	out, err := execute(t, "ensemble", "--config", path, "--members", "40", "--compare", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "model SIR")
	assert.Contains(t, out, "N 150")
	assert.Contains(t, out, "gillespie  mean")
	assert.Contains(t, out, "sellke     mean")
	assert.Contains(t, out, "KS distance gillespie vs sellke")
}

func TestEnsemble_At(t *testing.T) {
	path := writeConfig(t, smallConfig)
	out, err := execute(t, "ensemble", "--config", path, "--members", "10", "--at", "2", "--compartment", "I", "--log-level", "error")
	require.NoError(t, err)
	assert.NotContains(t, out, "KS distance")
	assert.Contains(t, out, "members 10")
}
