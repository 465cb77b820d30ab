package pricing

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"

	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
)

func ptr(v int64) *int64 { return &v }

func TestResolve(t *testing.T) {
	classID := snowflake.ID(42)

	tests := []struct {
		name      string
		class     classdomain.Class
		overrides Overrides
		want      int64
	}{
		{
			name:  "per student price",
			class: classdomain.Class{ID: classID, PricingMode: classdomain.PricingModePerStudent, MonthlyPriceCents: ptr(30000)},
			want:  30000,
		},
		{
			name:  "fixed total charged whole",
			class: classdomain.Class{ID: classID, PricingMode: classdomain.PricingModeFixedTotal, FixedMonthlyPriceCents: ptr(50000)},
			want:  50000,
		},
		{
			name:      "override wins over class price",
			class:     classdomain.Class{ID: classID, PricingMode: classdomain.PricingModePerStudent, MonthlyPriceCents: ptr(30000)},
			overrides: Overrides{classID: 5000},
			want:      5000,
		},
		{
			name:      "override wins over fixed total",
			class:     classdomain.Class{ID: classID, PricingMode: classdomain.PricingModeFixedTotal, FixedMonthlyPriceCents: ptr(50000)},
			overrides: Overrides{classID: 1000},
			want:      1000,
		},
		{
			name:      "zero override still wins",
			class:     classdomain.Class{ID: classID, PricingMode: classdomain.PricingModePerStudent, MonthlyPriceCents: ptr(30000)},
			overrides: Overrides{classID: 0},
			want:      0,
		},
		{
			name:  "missing price resolves to zero",
			class: classdomain.Class{ID: classID, PricingMode: classdomain.PricingModePerStudent},
			want:  0,
		},
		{
			name:  "fixed total without price resolves to zero",
			class: classdomain.Class{ID: classID, PricingMode: classdomain.PricingModeFixedTotal, MonthlyPriceCents: ptr(30000)},
			want:  0,
		},
		{
			name:      "override for another class ignored",
			class:     classdomain.Class{ID: classID, PricingMode: classdomain.PricingModePerStudent, MonthlyPriceCents: ptr(30000)},
			overrides: Overrides{snowflake.ID(7): 5000},
			want:      30000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.class, tt.overrides))
		})
	}
}
