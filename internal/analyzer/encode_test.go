package analyzer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/nexus/internal/ai"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 1024, 65537} {
		data := bytes.Repeat([]byte{0xde, 0xad, 0xbe}, n)[:n]
		got, err := DecodePayload(EncodeBytes(data))
		require.NoError(t, err)
		assert.Equal(t, len(data), len(got))
		assert.True(t, bytes.Equal(data, got), "n=%d", n)
	}
}

func TestStripDataURI(t *testing.T) {
	tests := map[string]string{
		"data:image/png;base64,iVBORw0KGgo=": "iVBORw0KGgo=",
		"data:text/plain,aGk=":              "aGk=",
		"iVBORw0KGgo=":                      "iVBORw0KGgo=",
		"":                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripDataURI(in), in)
	}
}

func TestNewFileInput(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	tests := []struct {
		name     string
		mimeType string
		data     []byte
		wantType string
		wantErr  bool
	}{
		{"sniff pdf", "", pdf, "application/pdf", false},
		{"sniff png", "application/octet-stream", png, "image/png", false},
		{"declared text keeps base type", "text/markdown; charset=utf-8", []byte("# Deck"), "text/markdown", false},
		{"sniff plain text", "", []byte("We are building the Stripe for robots."), "text/plain", false},
		{"reject zip", "application/zip", []byte("PK\x03\x04"), "", true},
		{"reject empty", "text/plain", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFileInput("upload", tt.mimeType, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ai.IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, f.MIMEType)
			decoded, err := DecodePayload(f.Data)
			require.NoError(t, err)
			assert.Equal(t, tt.data, decoded)
		})
	}
}

func TestLoadFileInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.txt")
	require.NoError(t, os.WriteFile(path, []byte("Seed round, $2M at $12M post."), 0o600))

	f, err := LoadFileInput(path)
	require.NoError(t, err)
	assert.Equal(t, "pitch.txt", f.Name)
	assert.Equal(t, "text/plain", f.MIMEType)

	_, err = LoadFileInput(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestClampScoresReportsPaths(t *testing.T) {
	r := sampleResult()
	r.FounderMetrics.RecruitingAbility = 250
	r.Simulations[0].SurvivalRate = -1

	clamped := ClampScores(r)
	assert.Equal(t, []string{"founderMetrics.recruitingAbility", "simulations.0.survivalRate"}, clamped)
	assert.Empty(t, ClampScores(r))
}
