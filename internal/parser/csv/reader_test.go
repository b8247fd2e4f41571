package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referralreport/internal/config"
	"referralreport/internal/table"
)

func TestReadTable_Basic(t *testing.T) {
	in := "referral_id, referral_source ,referral_reward_id\n" +
		"r1,User Sign Up,7\n" +
		"r2,,\n" +
		"\"r3\",\"Draft, Transaction\",8\n"

	tbl, err := ReadTable(context.Background(), "user_referrals", strings.NewReader(in), Options{})
	require.NoError(t, err)

	assert.Equal(t, "user_referrals", tbl.Name)
	assert.Equal(t, []string{"referral_id", " referral_source ", "referral_reward_id"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []table.Value{"r1", "User Sign Up", "7"}, tbl.Rows[0])
	assert.Equal(t, []table.Value{"r2", nil, nil}, tbl.Rows[1])
	assert.Equal(t, "Draft, Transaction", tbl.Rows[2][1])
}

func TestReadTable_BOMAndDelimiter(t *testing.T) {
	in := "\ufeffid;name\n1;a\n"
	tbl, err := ReadTable(context.Background(), "user_logs", strings.NewReader(in), Options{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns)
	assert.Equal(t, []table.Value{"1", "a"}, tbl.Rows[0])
}

func TestReadTable_RaggedRowsAdjusted(t *testing.T) {
	in := "a,b,c\n1,2\n1,2,3,4\n"
	var warnings []string
	tbl, err := ReadTable(context.Background(), "lead_logs", strings.NewReader(in), Options{
		OnWarning: func(msg string) { warnings = append(warnings, msg) },
	})
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, []table.Value{"1", "2", nil}, tbl.Rows[0])
	assert.Equal(t, []table.Value{"1", "2", "3"}, tbl.Rows[1])
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "lead_logs line 2")
}

func TestReadTable_EmptyInputAndHeaderOnly(t *testing.T) {
	tbl, err := ReadTable(context.Background(), "paid_transactions", strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, tbl.Columns)
	assert.Equal(t, 0, tbl.Len())

	tbl, err = ReadTable(context.Background(), "paid_transactions", strings.NewReader("transaction_id,transaction_status\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"transaction_id", "transaction_status"}, tbl.Columns)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadTable_MalformedQuoteIsFatal(t *testing.T) {
	in := "a,b\n\"unterminated,2\n"
	_, err := ReadTable(context.Background(), "user_referral_logs", strings.NewReader(in), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read user_referral_logs")
}

func TestReadTable_HeaderMap(t *testing.T) {
	in := "Referral ID,status\nr1,ok\n"
	tbl, err := ReadTable(context.Background(), "x", strings.NewReader(in), Options{
		HeaderMap: map[string]string{"Referral ID": "referral_id"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"referral_id", "status"}, tbl.Columns)
}

func TestOptionsFrom(t *testing.T) {
	opt := OptionsFrom(config.Options{
		"comma":       "|",
		"lazy_quotes": true,
		"header_map":  map[string]any{"Id": "id"},
	})
	assert.Equal(t, '|', opt.Comma)
	assert.True(t, opt.LazyQuotes)
	assert.False(t, opt.TrimLeadingSpace)
	assert.Equal(t, map[string]string{"Id": "id"}, opt.HeaderMap)

	def := OptionsFrom(nil)
	assert.Equal(t, ',', def.Comma)
	assert.Nil(t, def.HeaderMap)
}
