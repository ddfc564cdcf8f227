package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/viczaid25/CreditCardApp/internal/config"
	"github.com/viczaid25/CreditCardApp/internal/engine"
	"github.com/viczaid25/CreditCardApp/internal/locale"
)

var urgencyColors = map[engine.Urgency]text.Color{
	engine.UrgencyNormal:   text.FgGreen,
	engine.UrgencyUpcoming: text.FgYellow,
	engine.UrgencyUrgent:   text.FgHiRed,
	engine.UrgencyOverdue:  text.FgRed,
}

// renderSnapshots prints one row per card with its urgency coloured.
func renderSnapshots(w io.Writer, tr *locale.Translator, snaps []engine.Snapshot) {
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(w, tr.Msg(config.TKeyNoCards, nil))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{
		tr.Msg(config.TKeyColID, nil),
		tr.Msg(config.TKeyColName, nil),
		tr.Msg(config.TKeyColCut, nil),
		tr.Msg(config.TKeyColDue, nil),
		tr.Msg(config.TKeyColDays, nil),
		tr.Msg(config.TKeyColStatus, nil),
	})

	for _, s := range snaps {
		status := urgencyColors[s.Urgency].Sprint(tr.Urgency(s.Urgency))
		t.AppendRow(table.Row{
			s.ID,
			s.Name,
			tr.FormatDate(s.NextCutDate),
			tr.FormatDate(s.PaymentDueDate),
			strconv.Itoa(s.DaysUntil),
			status,
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}
