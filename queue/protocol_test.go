package queue

import (
	"strings"
	"testing"
)

func TestGenerateProtocolFormat(t *testing.T) {
	for i := 0; i < 1000; i++ {
		p := GenerateProtocol()
		if len(p) != protocolLen {
			t.Fatalf("Protocol %q has length %d, expected %d", p, len(p), protocolLen)
		}
		for _, c := range p {
			if !strings.ContainsRune(protocolChars, c) {
				t.Fatalf("Protocol %q contains %q which is not in the alphabet", p, c)
			}
		}
	}
}

func TestGenerateProtocolExcludesAmbiguousChars(t *testing.T) {
	for _, c := range "0O1I" {
		if strings.ContainsRune(protocolChars, c) {
			t.Errorf("Alphabet must not contain ambiguous character %q", c)
		}
	}
}

func TestGenerateProtocolVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[GenerateProtocol()] = true
	}
	// 100 draws from a 32^8 space colliding down to a handful would mean a
	// broken generator.
	if len(seen) < 90 {
		t.Errorf("Got only %d distinct protocols out of 100", len(seen))
	}
}
