package quota_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncharlet/bibliart/internal/models"
	"github.com/ncharlet/bibliart/internal/quota"
)

func fixedUsage(used, limit int64) quota.UsageFunc {
	return func() (models.QuotaUsage, error) {
		return models.QuotaUsage{UsedBytes: used, QuotaBytes: limit}, nil
	}
}

func TestCheckThresholds(t *testing.T) {
	cases := []struct {
		used int64
		want quota.EventLevel // 0 means no event
	}{
		{used: 0, want: 0},
		{used: 799, want: 0},
		{used: 800, want: quota.EventWarning},
		{used: 949, want: quota.EventWarning},
		{used: 950, want: quota.EventCritical},
		{used: 1000, want: quota.EventCritical},
	}
	for _, tc := range cases {
		name := fmt.Sprintf("%d of 1000", tc.used)
		m := quota.New(fixedUsage(tc.used, 1000), nil)
		ev := m.Check(context.Background())
		if tc.want == 0 {
			assert.Nil(t, ev, name)
		} else {
			require.NotNil(t, ev, name)
			assert.Equal(t, tc.want, ev.Level, name)
			assert.Equal(t, tc.used, ev.Usage.UsedBytes, name)
		}
	}
}

func TestCheckInertWithoutLimit(t *testing.T) {
	m := quota.New(fixedUsage(5000, 0), nil)
	assert.Nil(t, m.Check(context.Background()))
	assert.Nil(t, m.LastEvent())
}

func TestCheckInertWhenUsageUnreadable(t *testing.T) {
	called := false
	m := quota.New(func() (models.QuotaUsage, error) {
		return models.QuotaUsage{}, fmt.Errorf("statfs: permission denied")
	}, func(quota.Event) { called = true })

	assert.Nil(t, m.Check(context.Background()))
	assert.False(t, called)
}

func TestCheckInvokesCallback(t *testing.T) {
	var got []quota.Event
	m := quota.New(fixedUsage(960, 1000), func(ev quota.Event) { got = append(got, ev) })

	m.Check(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, quota.EventCritical, got[0].Level)
}

func TestLastEventTracksAndClears(t *testing.T) {
	used := int64(850)
	m := quota.New(func() (models.QuotaUsage, error) {
		return models.QuotaUsage{UsedBytes: used, QuotaBytes: 1000}, nil
	}, nil)

	m.Check(context.Background())
	last := m.LastEvent()
	require.NotNil(t, last)
	assert.Equal(t, quota.EventWarning, last.Level)

	// Usage drops back below the thresholds: the sticky event clears.
	used = 100
	assert.Nil(t, m.Check(context.Background()))
	assert.Nil(t, m.LastEvent())
}

func TestUsagePercent(t *testing.T) {
	u := models.QuotaUsage{UsedBytes: 250, QuotaBytes: 1000}
	assert.InDelta(t, 25.0, u.Percent(), 0.001)
	assert.Equal(t, -1.0, models.QuotaUsage{UsedBytes: 10}.Percent())
}
