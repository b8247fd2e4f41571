package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referralreport/internal/ddl"
	"referralreport/internal/referral"
	"referralreport/internal/table"
)

func mergedFixture(t *testing.T) *table.Table {
	t.Helper()
	cols := []string{"referral_id", "referrer_id", "referee_id", "referral_source", "referral_at", "transaction_id",
		"transaction_status", "transaction_type", "reward_value", "description", "is_reward_granted", "id_reward", "is_deleted", "transaction_at"}
	m := table.New("user_referrals", cols)
	at := time.Date(2024, 1, 5, 3, 30, 0, 0, time.UTC)
	require.NoError(t, m.Append([]table.Value{"r1", "u1", "l1", "Sign Up Form", at, "t1", "PAID", "NEW", int64(50000), "Berhasil", true, "7", false, at.AddDate(0, 0, 15)}))
	require.NoError(t, m.Append([]table.Value{"r2", "u2", nil, "Draft, \"Offline\"", nil, nil, nil, nil, nil, "Menunggu", nil, nil, nil, nil}))
	return m
}

func TestProject_LayoutAndSummary(t *testing.T) {
	m := mergedFixture(t)
	out, sum, err := Project(m, referral.Derive(m))
	require.NoError(t, err)

	assert.Equal(t, Columns, out.Columns)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "Online", out.Get(0, ColReferralCategory))
	assert.Equal(t, true, out.Get(0, ColValid))
	assert.Equal(t, "Offline", out.Get(1, ColReferralCategory))
	assert.Equal(t, true, out.Get(1, ColValid))
	assert.Nil(t, out.Get(1, "transaction_id"))
	assert.Equal(t, Summary{Total: 2, Valid: 2, Invalid: 0}, sum)

	_, _, err = Project(m, referral.Outcome{})
	assert.Error(t, err)
}

func TestProject_MissingColumnsAreNull(t *testing.T) {
	m := table.New("user_referrals", []string{"referral_id"})
	require.NoError(t, m.Append([]table.Value{"r1"}))

	out, sum, err := Project(m, referral.Derive(m))
	require.NoError(t, err)
	assert.Nil(t, out.Get(0, "reward_value"))
	assert.Equal(t, "Other", out.Get(0, ColReferralCategory))
	assert.Equal(t, false, out.Get(0, ColValid))
	assert.Equal(t, Summary{Total: 1, Valid: 0, Invalid: 1}, sum)
}

func TestEncode_Format(t *testing.T) {
	m := mergedFixture(t)
	out, _, err := Project(m, referral.Derive(m))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, out))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Columns, ","), lines[0])
	assert.Equal(t, "r1,u1,l1,Sign Up Form,Online,2024-01-05 03:30:00+00:00,t1,PAID,NEW,50000,Berhasil,true,true", lines[1])
	assert.Equal(t, `r2,u2,,"Draft, ""Offline""",Offline,,,,,,Menunggu,,true`, lines[2])
}

func TestWriteCSV_AtomicAndIdempotent(t *testing.T) {
	m := mergedFixture(t)
	out, _, err := Project(m, referral.Derive(m))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "referral_business_logic_report.csv")
	fp1, n, err := WriteCSV(path, out)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)
	assert.Equal(t, Fingerprint(first), fp1)

	fp2, _, err := WriteCSV(path, out)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, fp1, fp2)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteCSV_UnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := WriteCSV(filepath.Join(blocker, "report.csv"), table.New("report", Columns))
	require.Error(t, err)
}

func TestSchema_FollowsColumns(t *testing.T) {
	t.Parallel()

	s := Schema()
	require.Len(t, s, len(Columns))
	for i, f := range s {
		assert.Equal(t, Columns[i], f.Name)
	}
	assert.Equal(t, ddl.KindTimestamp, s[5].Kind)
	assert.Equal(t, ddl.KindFloat, s[9].Kind)
	assert.Equal(t, ddl.KindText, s[11].Kind)
	assert.Equal(t, ddl.KindBool, s[12].Kind)
}
