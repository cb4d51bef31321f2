package breakpoint_test

import (
	"testing"

	"github.com/aretw0/simscope/pkg/breakpoint"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/value"
	"github.com/stretchr/testify/assert"
)

// obs is one observation of a field: nil means absent.
type obs *int64

func some(n int64) obs { return &n }

func TestBreakpoint_Update(t *testing.T) {
	tests := []struct {
		name string
		kind domain.BreakpointKind
		seed obs
		seq  []obs
		want []bool
	}{
		{
			name: "appeared",
			kind: domain.BreakpointOnValueAppeared,
			seed: nil,
			seq:  []obs{nil, nil, some(1), some(2)},
			want: []bool{false, false, true, false},
		},
		{
			name: "changed",
			kind: domain.BreakpointOnValueChanged,
			seed: some(1),
			seq:  []obs{some(1), some(1), some(2), some(2)},
			want: []bool{false, false, true, false},
		},
		{
			name: "disappeared",
			kind: domain.BreakpointOnValueDisappeared,
			seed: some(1),
			seq:  []obs{some(1), nil},
			want: []bool{false, true},
		},
		{
			name: "disabled",
			kind: domain.BreakpointDisabled,
			seed: nil,
			seq:  []obs{nil, some(1), some(2), nil},
			want: []bool{false, false, false, false},
		},
		{
			name: "changed counts appearance and disappearance",
			kind: domain.BreakpointOnValueChanged,
			seed: nil,
			seq:  []obs{nil, some(1), nil},
			want: []bool{false, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := &breakpoint.Breakpoint{Entity: "ping", Field: "counter", Kind: tt.kind}
			if tt.seed != nil {
				v := value.Int(*tt.seed)
				bp.Last = &v
			}

			got := make([]bool, len(tt.seq))
			for i, o := range tt.seq {
				if o == nil {
					got[i] = bp.Update(value.Value{}, false)
				} else {
					got[i] = bp.Update(value.Int(*o), true)
				}
				assert.Equal(t, got[i], bp.Triggered)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreakpoint_UpdateRemembersObservation(t *testing.T) {
	bp := &breakpoint.Breakpoint{Kind: domain.BreakpointDisabled}

	bp.Update(value.String("x"), true)
	if assert.NotNil(t, bp.Last) {
		assert.True(t, value.Equal(value.String("x"), *bp.Last))
	}

	bp.Update(value.Value{}, false)
	assert.Nil(t, bp.Last)
}
