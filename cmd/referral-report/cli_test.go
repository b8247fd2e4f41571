package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referralreport/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestInitConfig_ThenValidate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "referral.json")

	_, err := execute(t, "init-config", "--data-dir", dir, "-o", cfgPath)
	require.NoError(t, err)

	p, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "user_referrals.csv"), p.Sources.UserReferrals.Location)

	out, err := execute(t, "validate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidate_ReportsErrors(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("job: x\noutput: { kind: parquet, path: out.parquet }\n"), 0o644))

	out, err := execute(t, "validate", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, out, "output.kind")
	assert.Contains(t, out, "sources.user_referrals.location")
}

func TestInitConfig_StdoutYAML(t *testing.T) {
	out, err := execute(t, "init-config")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "job: referral_report"), out)
}

func TestRun_CommandWritesReport(t *testing.T) {
	p := writeFixtures(t, nil)
	b, err := config.Marshal(p, "yaml")
	require.NoError(t, err)
	cfgPath := filepath.Join(t.TempDir(), "referral.yaml")
	require.NoError(t, os.WriteFile(cfgPath, b, 0o644))

	out, err := execute(t, "run", "--config", cfgPath, "--metrics-backend", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	got, err := os.ReadFile(p.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, wantReport, string(got))
}

func TestProfile_Command(t *testing.T) {
	p := writeFixtures(t, nil)
	b, err := config.Marshal(p, "json")
	require.NoError(t, err)
	cfgPath := filepath.Join(t.TempDir(), "referral.json")
	require.NoError(t, os.WriteFile(cfgPath, b, 0o644))

	out, err := execute(t, "profile", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "paid_transactions")
	_, statErr := os.Stat(p.Output.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildLogger_Levels(t *testing.T) {
	l, err := buildLogger(true, "")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = buildLogger(true, "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(0))

	_, err = buildLogger(false, "loud")
	assert.Error(t, err)
}
