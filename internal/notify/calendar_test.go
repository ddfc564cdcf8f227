package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

func TestRenderCalendar_Empty(t *testing.T) {
	data, err := RenderCalendar(nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(data))

	// The stub must still parse as a calendar.
	_, err = ical.NewDecoder(bytes.NewReader(data)).Decode()
	assert.NoError(t, err)
}

func TestRenderCalendar_EventsWithAlarms(t *testing.T) {
	now := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	reqs := []engine.ReminderRequest{
		request("visa", engine.KindPayment, time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)),
		request("visa", engine.KindCut, time.Date(2025, 1, 25, 9, 0, 0, 0, time.UTC)),
	}

	data, err := RenderCalendar(reqs, now)
	require.NoError(t, err)

	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	uid, err := first.Props.Text(config.PropUID)
	require.NoError(t, err)
	assert.Equal(t, "payment-reminder-visa@cardcal", uid)

	summary, err := first.Props.Text(config.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "title visa", summary)

	start, err := first.DateTimeStart(time.UTC)
	require.NoError(t, err)
	assert.True(t, start.Equal(reqs[0].FireAt))

	require.Len(t, first.Children, 1)
	alarm := first.Children[0]
	assert.Equal(t, config.ICalComponent, alarm.Name)
	assert.Equal(t, config.ICalTriggerAt, alarm.Props.Get(config.PropTrigger).Value)
	assert.Equal(t, config.ICalAction, alarm.Props.Get(config.PropAction).Value)

	assert.Contains(t, string(data), "CATEGORIES:payment")
	assert.Contains(t, string(data), "CATEGORIES:cut")
}
