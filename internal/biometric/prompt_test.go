package biometric

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompt_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" ya \n", true},
		{"n\n", false},
		{"\n", false},
		{"y", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewTerminalPrompt(strings.NewReader(tt.input), &out)

			res, err := p.Authenticate(context.Background(), Options{PromptMessage: "Verifikasi identitas", CancelLabel: "Tidak"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Success)
			assert.Contains(t, out.String(), "Verifikasi identitas")
			assert.Contains(t, out.String(), "n = Tidak")
		})
	}
}

func TestTerminalPrompt_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewTerminalPrompt(strings.NewReader("y\n"), &bytes.Buffer{})
	_, err := p.Authenticate(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
