package forms_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jainjy/servo-sub017/internal/forms"
)

func TestLoadShippedFile(t *testing.T) {
	reg, err := forms.LoadFile(filepath.Join("..", "..", "configs", "forms.yaml"), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"contact-partenaire", "demande-visite", "inscription-formation", "reservation-bien-etre"}, reg.Names())

	d, err := reg.Get("reservation-bien-etre")
	require.NoError(t, err)
	assert.Equal(t, "/appointments", d.Endpoint)
	assert.Equal(t, "serviceId", d.ItemKey)
	assert.Equal(t, "nomComplet", d.NameField)
	assert.Equal(t, [][]string{{"email", "telephone"}}, d.AnyOf)
	assert.Equal(t, 2*time.Second, d.AutoClose)
	assert.True(t, d.Accepts("bien-etre"))
	assert.False(t, d.Accepts("immobilier"))

	f, err := reg.Get("inscription-formation")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, f.AutoClose)
	assert.Equal(t, [][]string{{"email"}}, f.AnyOf)
}

func TestGetUnknown(t *testing.T) {
	reg, err := forms.NewRegistry(nil, time.Second)
	require.NoError(t, err)
	_, err = reg.Get("missing")
	assert.True(t, errors.Is(err, forms.ErrUnknownForm))
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"missing endpoint": "forms:\n  - name: a\n",
		"bad endpoint":     "forms:\n  - name: a\n    endpoint: appointments\n",
		"unknown key":      "forms:\n  - name: a\n    endpoint: /x\n    colour: red\n",
		"bad duration":     "forms:\n  - name: a\n    endpoint: /x\n    auto_close: soon\n",
		"empty":            "forms: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := forms.Parse([]byte(doc), time.Second)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := forms.Parse([]byte("forms:\n  - name: a\n    endpoint: /x\n  - name: a\n    endpoint: /y\n"), time.Second)
	assert.Error(t, err)
}
