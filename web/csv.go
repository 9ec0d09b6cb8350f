package web

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/operatorhq/creditwatch/app"
)

// writeCSV renders the dashboard as the billing report spreadsheet:
// tool and service rows under one shared header, then a summary block,
// then the alert list.
func writeCSV(w io.Writer, dash app.Dashboard) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Type", "Name/Service", "Credits/Amount", "% Used", "Daily Avg", "Exhaustion Date", "Status"},
	}

	for _, t := range dash.Tools {
		exhaustion := ""
		if t.PredictedExhaustion != nil {
			exhaustion = *t.PredictedExhaustion
		}
		rows = append(rows, []string{
			"Tool",
			t.Name,
			formatFloat(t.CreditsRemaining),
			formatFloat(t.PercentRemaining) + "%",
			formatFloat(t.DailyAvgUsage),
			exhaustion,
			t.Status,
		})
	}

	for _, svc := range dash.AWS.Services {
		rows = append(rows, []string{"AWS Service", svc.Name, formatFloat(svc.Amount), "", "", "", ""})
	}

	rows = append(rows,
		[]string{},
		[]string{"Summary", "", "", "AWS: " + formatFloat(dash.AWS.PercentUsed) + "%", "", "", ""},
		[]string{"Alert Count", strconv.Itoa(dash.AlertCount), "", "", "", "", ""},
		[]string{},
		[]string{"Alerts"},
		[]string{"Severity", "Message", "Affected"},
	)
	for _, a := range dash.Alerts {
		rows = append(rows, []string{string(a.Severity), a.Message, a.Affected})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
