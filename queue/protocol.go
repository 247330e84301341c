package queue

import (
	"math/rand"
	"time"
)

var r *rand.Rand

func init() {
	r = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Ambiguous characters 0/O/1/I are excluded on purpose: the protocol is read
// back to call-center agents over the phone.
const protocolChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const protocolLen = 8

// GenerateProtocol produces the human-facing tracking code for a report. It is
// not a security token; collisions over 32^8 codes are accepted as negligible
// and no uniqueness check is made on the client side.
func GenerateProtocol() string {
	b := make([]byte, protocolLen)
	for i := range b {
		b[i] = protocolChars[r.Intn(len(protocolChars))]
	}
	return string(b)
}
