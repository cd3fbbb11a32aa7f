package session

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/studentportal/portal-server-go/internal/config"
)

// The remember-me token is base64("<userId>:<unixSeconds>"). The format
// is kept byte-compatible with cookies already in the wild; signing it
// would invalidate them.

// EncodeRememberToken builds a remember-me cookie value for the user.
func EncodeRememberToken(userID string, issuedAt time.Time) string {
	payload := userID + ":" + strconv.FormatInt(issuedAt.Unix(), 10)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ResolveRememberToken decodes a remember-me cookie value and returns
// the user ID it names. It fails when the value is malformed or the
// token is older than the 30-day window.
func ResolveRememberToken(value string) (string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", false
	}

	userID, tsPart, ok := strings.Cut(string(decoded), ":")
	if !ok || userID == "" {
		return "", false
	}

	issued, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return "", false
	}

	if time.Since(time.Unix(issued, 0)) >= config.RememberMeWindow {
		return "", false
	}
	return userID, true
}
