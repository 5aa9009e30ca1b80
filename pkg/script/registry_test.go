package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kreyren/Krura/pkg/config"
)

type fakeScript struct {
	name string
}

func (f *fakeScript) Name() string        { return f.name }
func (f *fakeScript) SettingData() string { return `{"name":"Fake","settings":{}}` }
func (f *fakeScript) Execute(buffers []string) ([]string, error) {
	return buffers, nil
}

func fakeFactory(name string) Factory {
	return func(sec *config.Section) (Script, error) {
		return &fakeScript{name: name}, nil
	}
}

func TestLoadScriptsProfileOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("first", fakeFactory("first"))
	reg.Register("second", fakeFactory("second"))

	cfg, err := config.LoadString("[second]\n\n[first]\n")
	require.NoError(t, err)

	scripts, err := reg.LoadScripts(cfg)
	require.NoError(t, err)
	require.Len(t, scripts, 2)

	// Profile order wins over registration order.
	assert.Equal(t, "second", scripts[0].Name())
	assert.Equal(t, "first", scripts[1].Name())
}

func TestLoadScriptsSkipsUnknownSections(t *testing.T) {
	reg := NewRegistry()
	reg.Register("known", fakeFactory("known"))

	cfg, err := config.LoadString("[known]\n\n[mystery]\nkey: value\n")
	require.NoError(t, err)

	scripts, err := reg.LoadScripts(cfg)
	require.NoError(t, err)
	require.Len(t, scripts, 1)

	assert.Equal(t, []string{"mystery"}, cfg.GetUnusedSections())
}

func TestRegisteredNames(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a", fakeFactory("a"))
	reg.Register("b", fakeFactory("b"))
	reg.Register("a", fakeFactory("a")) // replace, not duplicate

	assert.Equal(t, []string{"a", "b"}, reg.RegisteredNames())
	assert.True(t, reg.HasFactory("a"))
	assert.False(t, reg.HasFactory("c"))
}

func TestSettingDefault(t *testing.T) {
	data := `{"settings":{"annealMinutes":{"type":"int","default_value":120}}}`

	res, ok := SettingDefault(data, "annealMinutes")
	require.True(t, ok)
	assert.Equal(t, int64(120), res.Int())

	_, ok = SettingDefault(data, "missing")
	assert.False(t, ok)
}

func TestSettingKeys(t *testing.T) {
	data := `{"settings":{"one":{},"two":{},"three":{}}}`
	assert.Equal(t, []string{"one", "two", "three"}, SettingKeys(data))
}

func TestStampValues(t *testing.T) {
	data := `{"settings":{"annealMinutes":{"default_value":120}}}`

	stamped, err := StampValues(data, map[string]interface{}{"annealMinutes": 30})
	require.NoError(t, err)
	assert.Contains(t, stamped, `"value":30`)
}
