package profile

import (
	"regexp"
	"run_the_numbers/internal/model"
	"strings"
)

const (
	maxUsernameLen = 32
	maxNameLen     = 120
)

var (
	usernameInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)
	whitespace      = regexp.MustCompile(`\s+`)
)

type Seed struct {
	Username  string
	FirstName string
	LastName  string
}

// DeriveSeed имя пользователя из полного имени или email, иначе player-<id>
func DeriveSeed(u *model.User) Seed {
	fullName := strings.TrimSpace(u.Name)
	parts := whitespace.Split(fullName, -1)

	var first, last string
	if fullName != "" {
		first = parts[0]
		if len(parts) > 1 {
			last = strings.Join(parts[1:], " ")
		}
	}

	var emailPrefix string
	if at := strings.Index(u.Email, "@"); at > 0 {
		emailPrefix = u.Email[:at]
	}

	candidates := []string{
		strings.ToLower(whitespace.ReplaceAllString(fullName, "")),
		emailPrefix,
	}
	username := ""
	for _, c := range candidates {
		if v := sanitizeUsername(c); v != "" {
			username = v
			break
		}
	}
	if username == "" {
		id := u.ID
		if len(id) > 8 {
			id = id[:8]
		}
		username = sanitizeUsername("player-" + id)
	}

	return Seed{
		Username:  username,
		FirstName: normalizeName(first),
		LastName:  normalizeName(last),
	}
}

func sanitizeUsername(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = usernameInvalid.ReplaceAllString(v, "-")
	v = strings.Trim(v, "-")
	if len(v) > maxUsernameLen {
		v = v[:maxUsernameLen]
	}
	return v
}

func normalizeName(v string) string {
	v = strings.TrimSpace(v)
	if len([]rune(v)) > maxNameLen {
		v = string([]rune(v)[:maxNameLen])
	}
	return v
}
