package crypto

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs routes logrus output into a buffer at debug level for the
// duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(prevLevel)
	})
	return &buf
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("Encrypt")

	assert.Equal(t, "Encrypt", logger.function)
	assert.Equal(t, "crypto", logger.pkg)
	assert.Equal(t, "Encrypt", logger.fields["function"])
	assert.Equal(t, "crypto", logger.fields["package"])
}

func TestLoggerHelper_Chaining(t *testing.T) {
	logger := NewLogger("TestFunction")
	err := errors.New("boom")

	same := logger.
		WithField("size", 12).
		WithFields(logrus.Fields{"status": "ok", "chunk": 3}).
		WithError(err, "codec", "decode_text")

	require.Same(t, logger, same)
	assert.Equal(t, 12, logger.fields["size"])
	assert.Equal(t, "ok", logger.fields["status"])
	assert.Equal(t, 3, logger.fields["chunk"])
	assert.Equal(t, "boom", logger.fields["error"])
	assert.Equal(t, "codec", logger.fields["error_type"])
	assert.Equal(t, "decode_text", logger.fields["operation"])
}

func TestLoggerHelper_LoggingMethods(t *testing.T) {
	tests := []struct {
		name        string
		method      func(*LoggerHelper, string)
		message     string
		expectLevel string
	}{
		{"Entry", func(l *LoggerHelper, m string) { l.Entry(m) }, "Function entry: enter", "level=debug"},
		{"Debug", func(l *LoggerHelper, m string) { l.Debug(m) }, "debug message", "level=debug"},
		{"Info", func(l *LoggerHelper, m string) { l.Info(m) }, "info message", "level=info"},
		{"Warn", func(l *LoggerHelper, m string) { l.Warn(m) }, "warn message", "level=warning"},
		{"Error", func(l *LoggerHelper, m string) { l.Error(m) }, "error message", "level=error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			msg := tt.message
			if tt.name == "Entry" {
				msg = "enter"
			}
			tt.method(NewLogger("TestFunction"), msg)

			output := buf.String()
			assert.Contains(t, output, tt.expectLevel)
			assert.Contains(t, output, tt.message)
			assert.Contains(t, output, "function=TestFunction")
			assert.Contains(t, output, "package=crypto")
		})
	}
}

func TestLoggerHelper_Exit(t *testing.T) {
	buf := captureLogs(t)

	NewLogger("Decrypt").Exit()

	assert.Contains(t, buf.String(), "Function exit: Decrypt")
}

func TestOperationFields(t *testing.T) {
	fields := OperationFields("encrypt", "success",
		logrus.Fields{"plaintext_size": 13},
		logrus.Fields{"ciphertext_size": 20, "status": "overridden"},
	)

	assert.Equal(t, "encrypt", fields["operation"])
	assert.Equal(t, "overridden", fields["status"])
	assert.Equal(t, 13, fields["plaintext_size"])
	assert.Equal(t, 20, fields["ciphertext_size"])
}

func TestEncryptLogsNoSecrets(t *testing.T) {
	buf := captureLogs(t)

	plaintext := "attack at dawn"
	ciphertext, err := Encrypt(plaintext, identityKey)
	require.NoError(t, err)
	_, err = Decrypt(ciphertext, identityKey)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Encryption completed")
	assert.Contains(t, output, "Decryption completed")
	assert.Contains(t, output, KeyFingerprint(identityKey))
	assert.NotContains(t, output, identityKey)
	assert.NotContains(t, output, plaintext)
	assert.False(t, strings.Contains(output, ciphertext), "ciphertext leaked into logs")
}
