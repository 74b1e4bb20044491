package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    Mode
		wantErr bool
	}{
		{raw: "", want: ModeNormal},
		{raw: "   ", want: ModeNormal},
		{raw: "normal", want: ModeNormal},
		{raw: "fun", want: ModeFun},
		{raw: "Frustrated", want: ModeFrustrated},
		{raw: " KID ", want: ModeKid},
		{raw: "pirate", wantErr: true},
		{raw: "fun!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseMode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableCoversEveryMode(t *testing.T) {
	for _, m := range Modes() {
		t.Run(string(m), func(t *testing.T) {
			assert.True(t, m.Valid())
			p := Lookup(m)
			assert.NotEmpty(t, p.Persona)
			assert.NotEmpty(t, p.Instructions)
			assert.Len(t, p.Examples, 5)
			assert.Contains(t, p.Persona, "three")
		})
	}
	assert.False(t, Mode("pirate").Valid())
}

func TestLookup_PanicsOnUnvalidatedMode(t *testing.T) {
	assert.Panics(t, func() { Lookup(Mode("pirate")) })
}

func TestBuild(t *testing.T) {
	p := Build(ModeKid, "kubernetes")
	persona := Lookup(ModeKid)

	assert.Equal(t, "Explain kubernetes in exactly three words.", p.User)
	assert.True(t, strings.HasPrefix(p.System, persona.Persona+"\n\n"+persona.Instructions))
	assert.Contains(t, p.System, "\n\nExample responses:\n"+strings.Join(persona.Examples, "\n"))

	text := p.Text()
	assert.True(t, strings.HasPrefix(text, p.System))
	assert.True(t, strings.HasSuffix(text, "\n\nExplain kubernetes in exactly three words."))
}
