package domain_test

import (
	"testing"
	"time"

	"github.com/lankaline/freight-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyValidity(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		validTo time.Time
		want    domain.RateValidity
	}{
		{"already lapsed", now.Add(-time.Minute), domain.RateValidityExpired},
		{"inside the expiring window", now.Add(48 * time.Hour), domain.RateValidityExpiring},
		{"exactly at the window edge", now.Add(domain.ExpiringWindow), domain.RateValidityExpiring},
		{"just past the window edge", now.Add(domain.ExpiringWindow + time.Second), domain.RateValidityActive},
		{"far in the future", now.AddDate(1, 0, 0), domain.RateValidityActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyValidity(tt.validTo, now))
		})
	}
}

func TestRateRequestStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.RateRequestPending.IsTerminal())
	assert.False(t, domain.RateRequestProcessing.IsTerminal())
	assert.True(t, domain.RateRequestCompleted.IsTerminal())
	assert.True(t, domain.RateRequestRejected.IsTerminal())
}
