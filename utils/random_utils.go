package utils

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// RandomInt32 generates a secure random 32-bit integer
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// GenerateResetToken returns a 32-hex-char random token
func GenerateResetToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateTempPassword returns a short random plaintext credential for
// admin-created accounts. Valid until the first password change.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// DirectUIDPrefix marks locally-provisioned accounts whose federated
// identity could not be created.
const DirectUIDPrefix = "direct-"

// GenerateDirectUID returns a pseudo federated uid for accounts that only
// authenticate locally.
func GenerateDirectUID() string {
	n := RandomInt32()
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%s%d-%06d", DirectUIDPrefix, time.Now().UnixNano(), n%1000000)
}

// IsDirectUID reports whether a federated uid was locally generated
func IsDirectUID(uid string) bool {
	return strings.HasPrefix(uid, DirectUIDPrefix)
}
