package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
)

// RenderCalendar encodes pending reminders as an iCalendar feed. Each reminder
// becomes an event at its fire time carrying a DISPLAY alarm, so any calendar
// client subscribed to the feed delivers it locally.
func RenderCalendar(reqs []engine.ReminderRequest, now time.Time) ([]byte, error) {
	if len(reqs) == 0 {
		// A valid empty VCALENDAR keeps clients from flagging the feed as broken.
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, req := range reqs {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, req.Key, config.ICalDomain))
		event.Props.SetText(config.PropSummary, req.Title)
		event.Props.SetText(config.PropDescription, req.Body)
		event.Props.SetText(config.PropCategories, req.Kind.String())
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDateTime(req.FireAt.UTC())
		event.Props.Set(dtStartProp)

		addAlarm(event, req.Body)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// addAlarm appends a DISPLAY alarm firing at the event start.
func addAlarm(event *ical.Event, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = config.ICalTriggerAt
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
