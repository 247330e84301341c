package queue

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "Empty", data: []byte{}},
		{name: "Plain text", data: []byte("hello world")},
		{name: "All byte values", data: allBytes},
		{name: "JPEG magic", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}},
		{name: "Invalid UTF-8", data: []byte{0xC3, 0x28, 0xA0, 0xA1}},
	}

	for _, testCase := range testCases {
		encoded := EncodeFileContent(testCase.data)
		decoded, err := DecodeFileContent(encoded)
		if err != nil {
			t.Errorf("%s: decode failed: %v", testCase.name, err)
			continue
		}
		if !bytes.Equal(decoded, testCase.data) {
			t.Errorf("%s: round trip mismatch, got %v, expected %v", testCase.name, decoded, testCase.data)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeFileContent("not!!base64***"); err == nil {
		t.Error("Expected an error decoding invalid base64")
	}
}
