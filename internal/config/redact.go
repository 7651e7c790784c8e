package config

import "net/url"

// RedactURL replaces the password in a database connection URL with "***"
// so DSNs can be echoed to the user without leaking credentials. URLs that
// do not parse or carry no password are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}

	if _, hasPassword := u.User.Password(); !hasPassword {
		return raw
	}

	u.User = url.UserPassword(u.User.Username(), "***")

	return u.String()
}
