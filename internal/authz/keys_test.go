package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sick-Leave", "sick_leave"},
		{"sick leave", "sick_leave"},
		{"SICK_LEAVE", "sick_leave"},
		{"Business Travel", "business_travel"},
		{"global-mobility", "global_mobility"},
		{"a--b", "a_b"},
		{"a__b", "a_b"},
		{"  documents  ", "documents"},
		{"-lead-", "lead"},
		{"expense.reports", "expense_reports"},
		{"", ""},
		{"   ", ""},
		{"Dokumente", "dokumente"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeKey(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	for _, in := range []string{"Sick-Leave", "Business Travel", "permission_matrix"} {
		once := NormalizeKey(in)
		require.Equal(t, once, NormalizeKey(once))
	}
}
