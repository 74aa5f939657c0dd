package mailer

import "strings"

// Render substitutes every {{key}} occurrence in the body. Placeholders
// with no matching variable are left as-is rather than treated as errors.
func Render(body string, vars map[string]string) string {
	for key, value := range vars {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return body
}
