package config

import (
	"os"
	"strings"
)

// Credentials holds the secrets read from the environment. They never
// appear in the TOML settings file.
type Credentials struct {
	OrgToken  string
	AppKey    string
	OpenAIKey string
}

// placeholderPrefixes mark values copied from the .env template and
// never replaced with real credentials.
var placeholderPrefixes = []string{"your_", "sk-your", "BPUAK-your"}

// CredentialsFromEnv reads the required secrets from the process
// environment. Call after any .env file has been loaded.
func CredentialsFromEnv() Credentials {
	return Credentials{
		OrgToken:  os.Getenv("BIGPANDA_ORG_ACCESS_TOKEN"),
		AppKey:    os.Getenv("BIGPANDA_APP_KEY"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
	}
}

// Missing returns the names of credentials that are unset or still hold
// a placeholder value.
func (c Credentials) Missing() []string {
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"BIGPANDA_ORG_ACCESS_TOKEN", c.OrgToken},
		{"BIGPANDA_APP_KEY", c.AppKey},
		{"OPENAI_API_KEY", c.OpenAIKey},
	} {
		if isPlaceholder(v.value) {
			missing = append(missing, v.name)
		}
	}
	return missing
}

func isPlaceholder(v string) bool {
	if v == "" {
		return true
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}
