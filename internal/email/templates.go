package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/jwalitptl/booking-api/internal/model"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

type templateSet struct {
	subject string
	html    string
	text    string
}

var outcomeTemplates = map[model.NotificationOutcome]templateSet{
	model.NotificationOutcomeConfirmed: {
		subject: "Appointment confirmed",
		html:    "confirmed.html",
		text:    "confirmed.txt",
	},
	model.NotificationOutcomeCancelled: {
		subject: "Appointment cancelled",
		html:    "cancelled.html",
		text:    "cancelled.txt",
	},
}

type templateData struct {
	FullName  string
	LongDate  string
	Slot      string
	PayerName string
}

// LongDate formats a YYYY-MM-DD date as "Monday, June 10, 2024". Unparseable
// input is returned unchanged.
func LongDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// Render builds the patient message for outcome
func Render(outcome model.NotificationOutcome, appt *model.Appointment) (*model.EmailMessage, error) {
	set, ok := outcomeTemplates[outcome]
	if !ok {
		return nil, fmt.Errorf("no template for outcome %q", outcome)
	}

	data := templateData{
		FullName:  appt.FullName(),
		LongDate:  LongDate(appt.Date),
		Slot:      appt.Slot,
		PayerName: appt.PayerName,
	}

	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, set.html, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", set.html, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, set.text, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", set.text, err)
	}

	return &model.EmailMessage{
		To:       appt.Email,
		Subject:  set.subject,
		HTMLBody: html.String(),
		TextBody: text.String(),
	}, nil
}
