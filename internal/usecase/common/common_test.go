package common

import "testing"

func TestPageDefaultsAndTotalPages(t *testing.T) {
	p := NewPage(0, 0)
	if p.Page != 1 || p.Limit != DefaultPageLimit {
		t.Fatalf("ожидались значения по умолчанию, получено %+v", p)
	}
	if NewPage(1, 500).Limit != MaxPageLimit {
		t.Fatal("лимит должен ограничиваться сверху")
	}

	p = NewPage(3, 10)
	if p.Offset() != 20 {
		t.Fatalf("ожидался offset 20, получено %d", p.Offset())
	}
	cases := map[int]int{0: 0, 1: 1, 10: 1, 11: 2, 25: 3}
	for total, want := range cases {
		if got := p.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, ожидалось %d", total, got, want)
		}
	}
}
