package testutil

import (
	"bytes"

	"github.com/TheMichaelB/filecrypt/internal/config"
	"github.com/TheMichaelB/filecrypt/internal/events"
)

// Well-known credentials for tests. Never use outside tests.
const (
	TestKeyHex    = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	TestKeyBase64 = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	TestPassword  = "correct horse battery staple"
)

// NewTestLogger creates a debug JSON logger writing to a private buffer.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// TestConfig returns a valid configuration with no journal and debug JSON
// logging.
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Workers.Parallel = 4
	cfg.Journal.Path = ""
	cfg.Log = config.LogConfig{
		Level:  "debug",
		Format: "json",
		Color:  false,
	}
	return cfg
}

// SampleFiles provides text plaintexts keyed by file name.
var SampleFiles = map[string]string{
	"hello.txt":        "hello",
	"notes.md":         "# Notes\n\nMeeting at 10am.\n",
	"empty.txt":        "",
	"unicode.txt":      "Grüße aus Zürich 🔐\n",
	"config/app.json":  `{"debug": true, "port": 8080}`,
	"report.final.csv": "id,amount\n1,10.50\n2,99.99\n",
}

// SampleBinaryFiles provides binary plaintexts keyed by file name.
var SampleBinaryFiles = map[string][]byte{
	"image.png": {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00},
	"zeros.bin": make([]byte, 4096),
	"all.bin":   allBytes(),
}

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}
