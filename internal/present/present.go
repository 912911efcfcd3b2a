package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/asheeshkh/mausam/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	dividerStyle = lipgloss.NewStyle().Faint(true)
)

const dividerWidth = 30

// Divider returns the separator line used between reports.
func Divider() string {
	return dividerStyle.Render(strings.Repeat("━", dividerWidth))
}

// Render formats a weather report as multi-line terminal text. Pure: the only
// inputs are the report and the reference time used to pick tomorrow's
// forecast window.
func Render(report models.Report, now time.Time) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Current weather"))
	b.WriteString("\n\n")
	writeCurrent(&b, report.Current)

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Tomorrow's forecast"))
	b.WriteString("\n\n")
	writeForecast(&b, report.Forecast, now)

	b.WriteString("\n")
	when := report.FetchedAt.Format("2006-01-02 15:04:05")
	if report.Cached {
		b.WriteString(dimStyle.Render("Served from cache, fetched at " + when))
	} else {
		b.WriteString(dimStyle.Render("Data fetched at " + when))
	}
	b.WriteString("\n")

	return b.String()
}

func writeCurrent(b *strings.Builder, c models.Current) {
	location := c.Location
	if c.Country != "" {
		location += ", " + c.Country
	}
	writeField(b, "Location", location)
	writeField(b, "Temperature", fmt.Sprintf("%.1f°C (feels like %.1f°C)", c.Temperature, c.FeelsLike))
	writeField(b, "Condition", titleCase(c.Condition))
	writeField(b, "Humidity", fmt.Sprintf("%d%%", c.Humidity))
	writeField(b, "Pressure", fmt.Sprintf("%d hPa", c.Pressure))
	writeField(b, "Visibility", fmt.Sprintf("%.1f km", c.VisibilityKM))
	writeField(b, "Wind", fmt.Sprintf("%.1f m/s at %d°", c.WindSpeed, c.WindDeg))
	if !c.Sunrise.IsZero() {
		writeField(b, "Sunrise", c.Sunrise.Format("15:04"))
	}
	if !c.Sunset.IsZero() {
		writeField(b, "Sunset", c.Sunset.Format("15:04"))
	}
}

func writeField(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label + ":"))
	b.WriteString(" ")
	b.WriteString(value)
	b.WriteString("\n")
}

// maxForecastRows limits output to four 3-hour periods, enough to read
// tomorrow at a glance.
const maxForecastRows = 4

func writeForecast(b *strings.Builder, points []models.ForecastPoint, now time.Time) {
	selected := tomorrowWindow(points, now)
	if len(selected) == 0 {
		b.WriteString(dimStyle.Render("Forecast data not available"))
		b.WriteString("\n")
		return
	}

	if len(selected) > maxForecastRows {
		selected = selected[:maxForecastRows]
	}
	for _, p := range selected {
		fmt.Fprintf(b, "  %s  %.1f°C  %s\n", p.Time.Format("15:04"), p.Temperature, titleCase(p.Condition))
		fmt.Fprintf(b, "         humidity %d%%, wind %.1f m/s\n", p.Humidity, p.WindSpeed)
	}
}

// tomorrowWindow picks the points falling on the next calendar day in local
// time. When the response has none (e.g. a trimmed test fixture), it falls
// back to the next eight 3-hour intervals.
func tomorrowWindow(points []models.ForecastPoint, now time.Time) []models.ForecastPoint {
	y, m, d := now.AddDate(0, 0, 1).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var tomorrow []models.ForecastPoint
	for _, p := range points {
		local := p.Time.In(now.Location())
		if !local.Before(start) && local.Before(end) {
			tomorrow = append(tomorrow, p)
		}
	}
	if len(tomorrow) > 0 {
		return tomorrow
	}

	if len(points) > 8 {
		return points[:8]
	}
	return points
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
