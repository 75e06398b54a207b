package periods

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"same status is a no-op", StatusOpen, StatusOpen, true},
		{"open to closing", StatusOpen, StatusClosing, true},
		{"open straight to closed", StatusOpen, StatusClosed, false},
		{"closing to closed", StatusClosing, StatusClosed, true},
		{"closing back to open", StatusClosing, StatusOpen, true},
		{"closed reopen to closing", StatusClosed, StatusClosing, true},
		{"closed straight to open", StatusClosed, StatusOpen, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPeriodLabel(t *testing.T) {
	p := Period{Year: 38, Month: 7}
	assert.Equal(t, "38-07", p.Label())
}
