package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceTypeCode(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"会议室", "huiyishi"},
		{"工位", "gongwei"},
		{"Private Office", "private_office"},
		{"  Meeting-Room  ", "meeting_room"},
		{"VIP 工位", "vip_gongwei"},
		{"desk", "desk"},
		{"Phone Booth 2", "phone_booth_2"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ResourceTypeCode(tt.label))
		})
	}
}

func TestGenerateRandomLocationWeek(t *testing.T) {
	for range 20 {
		week := GenerateRandomLocationWeek(uuid.New())
		require.NoError(t, domain.ValidateWeek(week, true))
		assert.True(t, week[time.Sunday].IsClosed)
		assert.False(t, week[time.Monday].IsClosed)
	}
}

func TestGenerateRandomOverride(t *testing.T) {
	for range 20 {
		entries := GenerateRandomOverride(uuid.New())
		assert.LessOrEqual(t, len(entries), 3)
		require.NoError(t, domain.ValidateWeek(entries, false))
	}
}

func TestGenerateRandomClosure(t *testing.T) {
	from := domain.NewDate(2025, time.January, 1)
	for range 20 {
		c := GenerateRandomClosure(uuid.New(), domain.LocationClosure(uuid.New()), from)
		require.NoError(t, c.Validate())
		assert.False(t, c.StartDate.Before(from))
	}
}
