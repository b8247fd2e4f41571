package builtin

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referralreport/internal/table"
)

func mustTable(t *testing.T, name string, cols []string, rows ...[]table.Value) *table.Table {
	t.Helper()
	tbl := table.New(name, cols)
	for _, r := range rows {
		require.NoError(t, tbl.Append(r))
	}
	return tbl
}

/*
TestTrimStrings verifies that text cells are trimmed (NBSP included), blank
cells become null and non-text cells are untouched.
*/
func TestTrimStrings(t *testing.T) {
	in := mustTable(t, "x", []string{"a", "b", "c", "d"},
		[]table.Value{"  Berhasil ", " Paid ", "   ", int64(4)},
	)
	out := TrimStrings{}.Apply(in)

	want := []table.Value{"Berhasil", "Paid", nil, int64(4)}
	if diff := cmp.Diff(want, out.Rows[0]); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "  Berhasil ", in.Rows[0][0], "input must not change")
}

/*
TestTimestamps covers the accepted layouts, including colon-less and
space-separated offsets and US slash dates. Zones normalize to UTC and
unparseable cells degrade to null. Non-temporal columns are skipped.
*/
func TestTimestamps(t *testing.T) {
	in := mustTable(t, "paid_transactions", []string{"transaction_at", "transaction_status"},
		[]table.Value{"2024-01-20", "PAID"},
		[]table.Value{"2024-01-20 10:30:00+07:00", "PAID"},
		[]table.Value{"2024-01-20T03:30:00Z", "PAID"},
		[]table.Value{"2024-01-20 03:30:00.250", "PAID"},
		[]table.Value{"2024-01-20 03:30:00 UTC", "PAID"},
		[]table.Value{"2024-01-20T10:30:00+0700", "PAID"},
		[]table.Value{"2024-01-20T10:30:00.123+0700", "PAID"},
		[]table.Value{"2024-01-20 10:30:00.123456 +07:00", "PAID"},
		[]table.Value{"2024-01-20 10:30:00 +0700", "PAID"},
		[]table.Value{"01/20/2024 10:30", "PAID"},
		[]table.Value{"01/20/2024 10:30:15", "PAID"},
		[]table.Value{"01/20/2024", "PAID"},
		[]table.Value{"not a date", "PAID"},
		[]table.Value{nil, "PAID"},
	)
	out := Timestamps{}.Apply(in)

	want := []table.Value{
		time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 250_000_000, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 123_000_000, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 123_456_000, time.UTC),
		time.Date(2024, 1, 20, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 10, 30, 15, 0, time.UTC),
		time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		nil,
		nil,
	}
	require.Equal(t, len(want), out.Len())
	for i, w := range want {
		got := out.Rows[i][0]
		if w == nil {
			assert.Nil(t, got, "row %d", i)
			continue
		}
		gt, ok := got.(time.Time)
		require.True(t, ok, "row %d: got %T", i, got)
		assert.True(t, gt.Equal(w.(time.Time)), "row %d: got %v want %v", i, gt, w)
		assert.Equal(t, time.UTC, gt.Location(), "row %d", i)
		assert.Equal(t, "PAID", out.Rows[i][1])
	}
}

/*
TestCoerce verifies per-column inference: int wins over float, bool words are
recognized, and any stray value keeps the column as text. Identifier columns
stay text even when every cell is numeric.
*/
func TestCoerce(t *testing.T) {
	in := mustTable(t, "referral_rewards", []string{"id", "reward_value", "is_reward_granted", "note", "ratio", "empty"},
		[]table.Value{"1", "50000", "True", "a", "0.5", nil},
		[]table.Value{"2", "0", "false", "7", "2", nil},
		[]table.Value{"3", nil, nil, "b", "1e3", nil},
	)
	out := Coerce{}.Apply(in)

	want := [][]table.Value{
		{"1", int64(50000), true, "a", 0.5, nil},
		{"2", int64(0), false, "7", 2.0, nil},
		{"3", nil, nil, "b", 1000.0, nil},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

/*
TestCoerce_NaNStaysText ensures "NaN" and "Inf" do not turn a column numeric.
*/
func TestCoerce_NaNStaysText(t *testing.T) {
	in := mustTable(t, "x", []string{"v"}, []table.Value{"1.5"}, []table.Value{"NaN"})
	out := Coerce{}.Apply(in)
	assert.Equal(t, "1.5", out.Rows[0][0])
	assert.Equal(t, "NaN", out.Rows[1][0])
}

/*
TestNormalize_EndToEnd runs the whole chain on a raw relation and checks that
identifiers stored as numbers or padded text collapse to the same key.
*/
func TestNormalize_EndToEnd(t *testing.T) {
	in := mustTable(t, "user_referrals",
		[]string{" referral_id", "referrer_id ", "referral_reward_id", "referral_at", "referral_source", "user_referral_status_id"},
		[]table.Value{"r1", " 10 ", "7", "2024-01-05 10:00:00+07:00", " User Sign Up ", "1"},
		[]table.Value{"r2", "11", nil, "garbage", nil, "2"},
	)
	out := Normalize(in)

	assert.Equal(t, []string{"referral_id", "referrer_id", "referral_reward_id", "referral_at", "referral_source", "user_referral_status_id"}, out.Columns)
	assert.Equal(t, "r1", out.Get(0, "referral_id"))
	assert.Equal(t, "10", out.Get(0, "referrer_id"))
	assert.Equal(t, "7", out.Get(0, "referral_reward_id"))
	assert.Nil(t, out.Get(1, "referral_reward_id"))
	assert.Equal(t, "1", out.Get(0, "user_referral_status_id"))
	assert.Equal(t, "User Sign Up", out.Get(0, "referral_source"))
	assert.Equal(t, time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC), out.Get(0, "referral_at"))
	assert.Nil(t, out.Get(1, "referral_at"))

	again := Normalize(out)
	if diff := cmp.Diff(out.Rows, again.Rows); diff != "" {
		t.Fatalf("normalization is not idempotent (-first +second):\n%s", diff)
	}
}

/*
TestCanonicalIDs checks float-backed identifiers lose their fractional zero.
*/
func TestCanonicalIDs(t *testing.T) {
	in := mustTable(t, "x", []string{"lead_id", "amount"},
		[]table.Value{float64(42), float64(42)},
		[]table.Value{int64(7), int64(7)},
		[]table.Value{" ", nil},
	)
	out := CanonicalIDs{}.Apply(in)
	assert.Equal(t, []table.Value{"42", "7", nil}, out.Column("lead_id"))
	assert.Equal(t, []table.Value{float64(42), int64(7), nil}, out.Column("amount"))
}
