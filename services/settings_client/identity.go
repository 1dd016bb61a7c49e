package settings_client

import (
	"strings"

	"novaremote/services/settingsync"
)

// StaticIdentity is a fixed profile id. The empty value is unbound.
type StaticIdentity string

var _ settingsync.IdentityProvider = StaticIdentity("")

func (s StaticIdentity) CurrentUserID() (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}
