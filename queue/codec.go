package queue

import "encoding/base64"

// EncodeFileContent turns raw attachment bytes into the text form stored
// inside the serialized queue.
func EncodeFileContent(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeFileContent is the exact inverse of EncodeFileContent. It is used by
// the sync driver right before uploading an attachment.
func DecodeFileContent(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
