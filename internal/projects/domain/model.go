package domain

import "regexp"

// Project is a tenant's registered site: identity, routing keys, and the
// source program that gets deployed into the execution registry under the
// subdomain name. Timestamps are ISO-8601 strings, set once at creation.
type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Subdomain      string  `json:"subdomain"`
	CustomHostname *string `json:"custom_hostname"`
	ScriptContent  string  `json:"script_content"`
	CreatedOn      string  `json:"created_on"`
	ModifiedOn     string  `json:"modified_on"`
}

var subdomainRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSubdomain reports whether s is a usable routing key: lowercase
// letters, digits, and hyphens only.
func ValidSubdomain(s string) bool {
	return subdomainRe.MatchString(s)
}
