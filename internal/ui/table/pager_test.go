package table

import (
	"reflect"
	"testing"
)

func TestPageWindow(t *testing.T) {
	e := Ellipsis
	tests := []struct {
		selected, count int
		want            []int
	}{
		{0, 0, nil},
		{0, 3, []int{0, 1, 2}},
		{0, 10, []int{0, 1, 2, 3, e, 8, 9}},
		{5, 10, []int{0, 1, e, 4, 5, 6, e, 8, 9}},
		{9, 10, []int{0, 1, e, 7, 8, 9}},
		{2, 5, []int{0, 1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := PageWindow(tt.selected, tt.count, marginPages, rangePages)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageWindow(%d, %d) = %v, want %v", tt.selected, tt.count, got, tt.want)
		}
	}
}
