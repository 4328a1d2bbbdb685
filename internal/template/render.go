package template

import "strings"

// Render substitutes named placeholders of the form {Key} in a tenant
// template. Placeholders without a matching value are left in place so a
// misconfigured template is visible in the delivered text rather than
// silently blanked.
func Render(tpl string, data map[string]string) string {
	if len(data) == 0 {
		return tpl
	}

	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
