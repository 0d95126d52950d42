package shell

import "os"

// allowedEnvVars is the fixed set of variables forwarded to child
// processes. Everything else in the host environment, credentials and
// tokens in particular, is withheld.
var allowedEnvVars = []string{
	"PATH",
	"HOME",
	"USER",
	"LOGNAME",
	"LANG",
	"LC_ALL",
	"LC_CTYPE",
	"TMPDIR",
}

// scrubbedEnv builds a child environment from the allow-list, copying
// values from the host only when present.
func scrubbedEnv() []string {
	env := make([]string, 0, len(allowedEnvVars))
	for _, key := range allowedEnvVars {
		if value, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+value)
		}
	}
	return env
}
