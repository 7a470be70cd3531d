package config

import "strings"

// Environment variables read by Load
const (
	EnvName           = "KRA_ENV"
	EnvConsumerKey    = "KRA_CONSUMER_KEY"
	EnvConsumerSecret = "KRA_CONSUMER_SECRET"
	EnvTIN            = "KRA_TIN"
	EnvBranchID       = "KRA_BHF_ID"
	EnvCMCKey         = "KRA_CMC_KEY"
	EnvTokenCache     = "KRA_TOKEN_CACHE"
)

// applyEnv writes KRA_* overrides into raw. Credentials land in the section
// of the environment that is active after KRA_ENV is applied.
func applyEnv(raw map[string]any, lookup LookupFunc) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvName); ok {
		raw["env"] = strings.ToLower(v)
	}
	env, _ := raw["env"].(string)
	if env == "" {
		env = Defaults().Env
	}

	if v, ok := get(EnvConsumerKey); ok {
		setPath(raw, v, "auth", env, "consumer_key")
	}
	if v, ok := get(EnvConsumerSecret); ok {
		setPath(raw, v, "auth", env, "consumer_secret")
	}
	if v, ok := get(EnvTIN); ok {
		setPath(raw, v, "oscu", "tin")
	}
	if v, ok := get(EnvBranchID); ok {
		setPath(raw, v, "oscu", "bhf_id")
	}
	if v, ok := get(EnvCMCKey); ok {
		setPath(raw, v, "oscu", "cmc_key")
	}
	if v, ok := get(EnvTokenCache); ok {
		setPath(raw, v, "cache", "path")
	}
}

func setPath(raw map[string]any, value any, path ...string) {
	node := raw
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[key] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}
