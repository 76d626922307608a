package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shravanasati/guestserver/request"
	"github.com/shravanasati/guestserver/response"
	"github.com/shravanasati/guestserver/server"
)

// method name as sent, so unsupported verbs show up too
func methodOf(r *request.Request) string {
	if r.Method.Valid() {
		return r.Method.String()
	}
	return r.RawMethod
}

// Logging returns an access logger writing plain lines to l, or to the
// standard logger if l is nil.
func Logging(l *log.Logger) server.AccessLogger {
	if l == nil {
		l = log.Default()
	}
	return func(r *request.Request, resp *response.Response, elapsed time.Duration) {
		l.Printf("%s %s %d in %s\n", methodOf(r), r.Target, resp.StatusCode, elapsed)
	}
}

// LoggingColored is Logging with the method and status styled for a terminal.
func LoggingColored(l *log.Logger) server.AccessLogger {
	if l == nil {
		l = log.Default()
	}
	methodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

	return func(r *request.Request, resp *response.Response, elapsed time.Duration) {
		statusCode := int(resp.StatusCode)
		styledStatus := statusCodeStyle(statusCode).Render(fmt.Sprintf("%d", statusCode))
		styledMethod := methodStyle.Render(methodOf(r))

		l.Printf("%s %s %s in %s\n", styledMethod, r.Target, styledStatus, elapsed)
	}
}

func statusCodeStyle(statusCode int) lipgloss.Style {
	var color string
	switch {
	case statusCode >= 200 && statusCode < 300:
		color = "46" // green
	case statusCode >= 300 && statusCode < 400:
		color = "226" // yellow
	case statusCode >= 400 && statusCode < 500:
		color = "208" // orange
	case statusCode >= 500:
		color = "196" // red
	default:
		color = "15"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
