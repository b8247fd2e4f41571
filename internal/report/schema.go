package report

import "referralreport/internal/ddl"

// Schema returns the report columns with their logical SQL kinds. Columns
// that carry raw source text (ids, statuses, the granted flag) stay text so
// no source value is lost in a SQL sink.
func Schema() []ddl.Field {
	out := make([]ddl.Field, len(Columns))
	for i, c := range Columns {
		out[i] = ddl.Field{Name: c, Kind: kindOf(c)}
	}
	return out
}

func kindOf(col string) ddl.Kind {
	switch col {
	case "referral_at":
		return ddl.KindTimestamp
	case "reward_value":
		return ddl.KindFloat
	case ColValid:
		return ddl.KindBool
	}
	return ddl.KindText
}
