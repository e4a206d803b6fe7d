package cmd

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestFlagName(t *testing.T) {
	typ := reflect.TypeOf(struct {
		BytesPerLine int
		ImportPath   []string
		Lang         string
		Named        string `name:"custom"`
		HTTPAddr     string
	}{})
	var got []string
	for i := 0; i < typ.NumField(); i++ {
		got = append(got, flagName(typ.Field(i)))
	}
	assert.Equal(t, []string{"bytes-per-line", "import-path", "lang", "custom", "http-addr"}, got)
}

func TestConfigInitGenerateJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, (&ConfigInit{Command: "generate", Format: "json"}).Write(fs))

	data, err := afero.ReadFile(fs, "generate.json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "java", got["lang"])
	assert.Equal(t, "eager", got["runtime"])
	assert.Equal(t, float64(40), got["bytes_per_line"])
	assert.Equal(t, float64(400), got["lines_per_part"])
	assert.Equal(t, false, got["annotate"])
	assert.Equal(t, []any{"."}, got["import_path"])
	assert.Equal(t, ".", got["output"])
	assert.NotContains(t, got, "file")
}

func TestConfigInitFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, (&ConfigInit{Command: "plugin", Format: "yaml", Output: "conf/plugin.yaml"}).Write(fs))
	data, err := afero.ReadFile(fs, "conf/plugin.yaml")
	require.NoError(t, err)
	var y map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &y))
	require.Contains(t, y, "plugin")
	assert.Equal(t, "import", y["plugin"]["paths"])
	assert.Equal(t, 40, y["plugin"]["bytes-per-line"])
	assert.NotContains(t, y["plugin"], "output")

	require.NoError(t, (&ConfigInit{Command: "plugin", Format: "toml"}).Write(fs))
	data, err = afero.ReadFile(fs, "plugin.toml")
	require.NoError(t, err)
	tree, err := toml.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "java", tree.Get("lang"))
	assert.Equal(t, int64(400), tree.Get("lines-per-part"))
}

// setEverywhere replaces the value of every key named like flag, at any
// depth, whatever its word separator.
func setEverywhere(m map[string]any, flag string, v any) int {
	norm := func(s string) string {
		return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(s))
	}
	n := 0
	for k, cur := range m {
		if sub, ok := cur.(map[string]any); ok {
			n += setEverywhere(sub, flag, v)
			continue
		}
		if norm(k) == norm(flag) {
			m[k] = v
			n++
		}
	}
	return n
}

func TestConfigTemplatesLoad(t *testing.T) {
	for _, tc := range []struct {
		format string
		loader kong.ConfigurationLoader
		decode func([]byte) (map[string]any, error)
		encode func(map[string]any) ([]byte, error)
	}{
		{
			"json", kong.JSON,
			func(b []byte) (map[string]any, error) {
				var m map[string]any
				return m, json.Unmarshal(b, &m)
			},
			func(m map[string]any) ([]byte, error) { return json.Marshal(m) },
		},
		{
			"yaml", kongyaml.Loader,
			func(b []byte) (map[string]any, error) {
				var m map[string]any
				return m, yaml.Unmarshal(b, &m)
			},
			func(m map[string]any) ([]byte, error) { return yaml.Marshal(m) },
		},
		{
			"toml", kongtoml.Loader,
			func(b []byte) (map[string]any, error) {
				tree, err := toml.LoadBytes(b)
				if err != nil {
					return nil, err
				}
				return tree.ToMap(), nil
			},
			func(m map[string]any) ([]byte, error) { return toml.Marshal(m) },
		},
	} {
		t.Run(tc.format, func(t *testing.T) {
			fs := afero.NewOsFs()
			path := filepath.Join(t.TempDir(), "generate."+tc.format)
			require.NoError(t, (&ConfigInit{Command: "generate", Format: tc.format, Output: path}).Write(fs))

			data, err := afero.ReadFile(fs, path)
			require.NoError(t, err)
			m, err := tc.decode(data)
			require.NoError(t, err)
			require.Equal(t, 1, setEverywhere(m, "lines-per-part", 7))
			require.Equal(t, 1, setEverywhere(m, "lang", "go"))
			require.Equal(t, 1, setEverywhere(m, "output", "gen"))
			data, err = tc.encode(m)
			require.NoError(t, err)
			require.NoError(t, afero.WriteFile(fs, path, data, 0o644))

			var cli struct {
				Generate Generate `cmd:""`
				Plugin   Plugin   `cmd:""`
			}
			parser, err := kong.New(&cli, kong.Configuration(tc.loader, path))
			require.NoError(t, err)
			_, err = parser.Parse([]string{"generate", "x.proto"})
			require.NoError(t, err)

			assert.Equal(t, 7, cli.Generate.LinesPerPart)
			assert.Equal(t, 40, cli.Generate.BytesPerLine)
			assert.Equal(t, "go", cli.Generate.Lang)
			assert.Equal(t, "gen", cli.Generate.Output)
			assert.Equal(t, []string{"x.proto"}, cli.Generate.Files)
		})
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "generate.json", []byte("{}"), 0o644))

	err := (&ConfigInit{Command: "generate", Format: "json"}).Write(fs)
	assert.ErrorContains(t, err, "--force")

	require.NoError(t, (&ConfigInit{Command: "generate", Format: "json", Force: true}).Write(fs))
	data, err := afero.ReadFile(fs, "generate.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "bytes_per_line")

	assert.Error(t, (&ConfigInit{Command: "generate", Format: "ini"}).Write(fs))
	assert.Error(t, (&ConfigInit{Command: "server", Format: "json"}).Write(fs))
}
