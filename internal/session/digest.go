package session

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ComputeAnswer returns the password digest expected by the second global.login.
//
//	passwordHash = upper(hex(MD5(username:realm:password)))
//	answer       = upper(hex(MD5(username:random:passwordHash)))
//
// MD5 is fixed by the device firmware. It offers no real protection and is used
// for wire compatibility only; changing it breaks the login.
func ComputeAnswer(username, realm, random, password string) string {
	passwordHash := md5Hex(username + ":" + realm + ":" + password)
	return md5Hex(username + ":" + random + ":" + passwordHash)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
