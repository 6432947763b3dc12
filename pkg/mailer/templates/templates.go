// Package templates renders the small set of account-lifecycle emails the
// worker sends.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

var tmpl = template.Must(template.New("emails").Parse(`
{{define "welcome"}}
<h2>Welcome to FoodShare, {{.Name}}!</h2>
<p>Your account for {{.Email}} is ready. Log in to list or claim food donations near you.</p>
{{end}}

{{define "password_changed"}}
<h2>Your password was changed</h2>
<p>Hi {{.Name}}, the password for {{.Email}} was just updated and all active
logins were signed out. If this wasn't you, reset your password immediately.</p>
{{end}}
`))

// Render produces subject, text, and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	var buf bytes.Buffer
	if err = tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", name, err)
	}
	html = buf.String()

	switch name {
	case "welcome":
		subject = "Welcome to FoodShare"
		text = fmt.Sprintf("Welcome to FoodShare, %v! Your account is ready.", data["Name"])
	case "password_changed":
		subject = "Your FoodShare password was changed"
		text = fmt.Sprintf("Hi %v, your password was updated and all active logins were signed out.", data["Name"])
	default:
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	return subject, text, html, nil
}
