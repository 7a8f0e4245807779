package booking

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ShopName is the business the booking demo schedules for.
const ShopName = "Main Street Barbershop"

// FormatSummary renders a plain-text summary of a captured booking for the shop.
func FormatSummary(s State, collectedAt time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Customer: %s\n", valueOrNA(s.Name)))
	b.WriteString(fmt.Sprintf("Phone: %s\n", valueOrNA(s.Phone)))
	b.WriteString(fmt.Sprintf("Service: %s\n", valueOrNA(string(s.Service))))
	b.WriteString(fmt.Sprintf("When: %s\n", scheduleString(s)))
	b.WriteString(fmt.Sprintf("Collected: %s\n", collectedAt.Format(time.RFC1123)))

	return b.String()
}

// FormatSummaryHTML renders the booking summary for email.
func FormatSummaryHTML(s State, collectedAt time.Time) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;">
<h2 style="color:#333;">New Booking: %s</h2>
<table style="border-collapse:collapse;width:100%%;">
<tr><td style="padding:6px 12px;font-weight:bold;">Customer</td><td style="padding:6px 12px;">%s</td></tr>
<tr><td style="padding:6px 12px;font-weight:bold;">Phone</td><td style="padding:6px 12px;"><a href="tel:%s">%s</a></td></tr>
<tr><td style="padding:6px 12px;font-weight:bold;">Service</td><td style="padding:6px 12px;">%s</td></tr>
<tr><td style="padding:6px 12px;font-weight:bold;">When</td><td style="padding:6px 12px;">%s</td></tr>
<tr><td style="padding:6px 12px;font-weight:bold;">Collected</td><td style="padding:6px 12px;">%s</td></tr>
</table>
<p style="color:#666;font-size:12px;">Booked by BookingBot. A $10 deposit is due to hold the slot.</p>
</div>`,
		html.EscapeString(ShopName),
		html.EscapeString(valueOrNA(s.Name)),
		html.EscapeString(s.Phone), html.EscapeString(valueOrNA(s.Phone)),
		html.EscapeString(valueOrNA(string(s.Service))),
		html.EscapeString(scheduleString(s)),
		collectedAt.Format(time.RFC1123),
	)
}

func scheduleString(s State) string {
	var parts []string
	if s.Date != "" {
		parts = append(parts, s.Date)
	}
	if s.Time != "" {
		parts = append(parts, s.Time)
	}
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, " at ")
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
