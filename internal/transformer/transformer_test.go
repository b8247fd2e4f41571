package transformer

import (
	"testing"

	"referralreport/internal/table"
)

/*
TestChainApply_Order verifies that a Chain threads each step's output into the
next step, in order, and leaves the input table untouched.
*/
func TestChainApply_Order(t *testing.T) {
	in := table.New("t", []string{"a"})
	_ = in.Append([]table.Value{"x"})

	appendCol := func(suffix string) Transformer {
		return Func(func(t *table.Table) *table.Table {
			out := t.Clone()
			out.Rows[0][0] = out.Rows[0][0].(string) + suffix
			return out
		})
	}

	got := Chain{appendCol("1"), appendCol("2"), appendCol("3")}.Apply(in)

	if v := got.Rows[0][0]; v != "x123" {
		t.Fatalf("got %v; want x123", v)
	}
	if v := in.Rows[0][0]; v != "x" {
		t.Fatalf("input mutated: got %v; want x", v)
	}
	if out := (Chain{}).Apply(in); out != in {
		t.Fatalf("empty chain should return its input")
	}
}
