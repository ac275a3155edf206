package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/model"
)

var funcs = template.FuncMap{
	"day": func(t time.Time) string {
		if t.IsZero() {
			return "a date to be announced"
		}
		return t.Format("Monday, 2 January 2006")
	},
}

var subjects = map[Kind]string{
	KindConfirmation: "You're in: coffee meetup on {{day .Event.Date}}",
	KindCancellation: "Your coffee meetup booking was cancelled",
	KindReminder:     "Reminder: coffee meetup {{day .Event.Date}} at {{.Event.Time}}",
}

const locationBlock = `{{if .Location}}
Where: {{.Location.Name}}, {{.Location.Address}}, {{.Location.City}}{{if .Location.MapURL}}
Map: {{.Location.MapURL}}{{end}}{{else}}
Where: we'll reveal the venue on {{day .RevealOn}}.{{end}}`

var bodies = map[Kind]string{
	KindConfirmation: `Hi {{.Name}},

Your seat is booked{{if .HasCompanion}} for you and your guest{{end}}.

When: {{day .Event.Date}} at {{.Event.Time}}{{if .Event.TableLabel}} ({{.Event.TableLabel}}){{end}}` + locationBlock + `

Booking reference: {{.BookingID}}
`,
	KindCancellation: `Hi {{.Name}},

Your booking for {{day .Event.Date}} at {{.Event.Time}} has been cancelled{{if .HasCompanion}}, including your guest's seat{{end}}.

Booking reference: {{.BookingID}}
`,
	KindReminder: `Hi {{.Name}},

See you soon! Your coffee meetup is on {{day .Event.Date}} at {{.Event.Time}}{{if .Event.TableLabel}} ({{.Event.TableLabel}}){{end}}.` + locationBlock + `
{{if .HasCompanion}}
Your guest is expected too.{{end}}
Booking reference: {{.BookingID}}
`,
}

type templatePair struct {
	subject *template.Template
	body    *template.Template
}

var templates = mustParse()

func mustParse() map[Kind]templatePair {
	out := make(map[Kind]templatePair, len(bodies))
	for kind, body := range bodies {
		out[kind] = templatePair{
			subject: template.Must(template.New(string(kind) + "_subject").Funcs(funcs).Parse(subjects[kind])),
			body:    template.Must(template.New(string(kind) + "_body").Funcs(funcs).Parse(body)),
		}
	}
	return out
}

// Render builds the email for msg.
func Render(msg Message) (Email, error) {
	tpl, ok := templates[msg.Kind]
	if !ok {
		return Email{}, fmt.Errorf("%w: unknown notification kind %q", model.ErrValidation, msg.Kind)
	}
	if msg.To == "" {
		return Email{}, fmt.Errorf("%w: notification has no recipient", model.ErrValidation)
	}
	if msg.Name == "" {
		msg.Name = "there"
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, msg); err != nil {
		return Email{}, fmt.Errorf("render %s subject: %w", msg.Kind, err)
	}
	if err := tpl.body.Execute(&body, msg); err != nil {
		return Email{}, fmt.Errorf("render %s body: %w", msg.Kind, err)
	}
	return Email{To: msg.To, Subject: subject.String(), Body: body.String()}, nil
}
