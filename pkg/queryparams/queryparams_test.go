package queryparams

import "testing"

func TestListParams_Validate(t *testing.T) {
	cases := []struct {
		name string
		in   ListParams
		want ListParams
	}{
		{"zero values", ListParams{}, ListParams{Page: 1, PerPage: 20, OrderBy: "desc"}},
		{"negative page", ListParams{Page: -3, PerPage: 10, OrderBy: "asc"}, ListParams{Page: 1, PerPage: 10, OrderBy: "asc"}},
		{"per page over cap", ListParams{Page: 2, PerPage: 500}, ListParams{Page: 2, PerPage: 20, OrderBy: "desc"}},
		{"mixed case order", ListParams{Page: 1, PerPage: 5, OrderBy: "ASC"}, ListParams{Page: 1, PerPage: 5, OrderBy: "asc"}},
		{"garbage order", ListParams{Page: 1, PerPage: 5, OrderBy: "sideways"}, ListParams{Page: 1, PerPage: 5, OrderBy: "desc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.Validate()
			if p.Page != tc.want.Page || p.PerPage != tc.want.PerPage || p.OrderBy != tc.want.OrderBy {
				t.Errorf("got %+v, want %+v", p, tc.want)
			}
		})
	}
}

func TestListParams_Offset(t *testing.T) {
	p := ListParams{Page: 3, PerPage: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("offset = %d, want 40", got)
	}
}

func TestCalculateTotalPages(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 0, 0},
	}
	for _, tc := range cases {
		if got := CalculateTotalPages(tc.total, tc.perPage); got != tc.want {
			t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}
