package output

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "text", want: ModeText},
		{in: "json", want: ModeJSON},
		{in: "markdown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_BufferIsPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeAuto)

	assert.False(t, r.Styled())
	assert.Equal(t, ModeText, r.EffectiveMode())

	r.Success("all clean")
	r.Printf("%s:%d\n", "a.js", 3)
	r.Warn("slow disk")

	assert.Equal(t, "all clean\na.js:3\n", out.String())
	assert.Equal(t, "warning: slow disk\n", errOut.String())
	assert.Equal(t, "plain", r.Styles().Error.Render("plain"))
}

func TestRenderer_Styled(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithProfile(&out, &out, ModeAuto, termenv.ANSI)

	assert.True(t, r.Styled())
	r.Success("done")
	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "✓ done")
}

func TestRenderer_JSON(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeJSON)

	assert.Equal(t, ModeJSON, r.EffectiveMode())
	require.NoError(t, r.JSON(map[string]int{"violations": 2}))
	assert.Equal(t, "{\n  \"violations\": 2\n}\n", out.String())
}
