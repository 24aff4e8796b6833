package crypto

import "encoding/base64"

// EncodeText returns the standard Base64 encoding of text's bytes.
func EncodeText(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// DecodeText reverses EncodeText.
func DecodeText(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
