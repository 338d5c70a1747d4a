package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/productmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRODUCTMATCH_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func decodeItems(t *testing.T, output string) []domain.BatchItem {
	t.Helper()
	var items []domain.BatchItem
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		var item domain.BatchItem
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &item))
		items = append(items, item)
	}
	return items
}

func TestBuildCmd_CSV(t *testing.T) {
	isolateEnv(t)
	input := writeFile(t, "records.csv", "brand,manufacturer,manufacturerNumber,gtins\nSony,SonyCorp,ABC123,012345678905\n,,,\n")

	out, err := runRoot(t, "", "build", "--input", input)
	require.NoError(t, err)

	items := decodeItems(t, out)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Request)
	assert.Equal(t, `((brand:"Sony" OR manufacturer:"SonyCorp") AND manufacturerNumber:"ABC123") OR gtins:"012345678905"`, items[0].Request.Query)
	assert.Equal(t, 5, items[0].Request.NumRecords)
	assert.NotEmpty(t, items[1].Error)
}

func TestBuildCmd_StdinJSONL(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, `{"gtins":"0123"}`+"\n", "build", "--input", "-", "--format", "jsonl")
	require.NoError(t, err)

	items := decodeItems(t, out)
	require.Len(t, items, 1)
	assert.Equal(t, `((brand:"" OR manufacturer:"") AND manufacturerNumber:"") OR gtins:"0123"`, items[0].Request.Query)
}

func TestBuildCmd_ConfigFileAndOutputFile(t *testing.T) {
	isolateEnv(t)
	cfgPath := writeFile(t, "config.yaml", `
matching:
  query:
    strategy: gtin_only
    num_records: 2
`)
	input := writeFile(t, "records.jsonl", `{"gtins":"gtins:0123","brand":"Sony"}`+"\n")
	output := filepath.Join(t.TempDir(), "out.jsonl")

	stdout, err := runRoot(t, "", "build", "-i", input, "-o", output, "--config", cfgPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	items := decodeItems(t, string(data))
	require.Len(t, items, 1)
	assert.Equal(t, `gtins:"0123"`, items[0].Request.Query)
	assert.Equal(t, 2, items[0].Request.NumRecords)
	assert.Equal(t, "0123", items[0].Request.KeyValue)
}

func TestBuildCmd_FailFast(t *testing.T) {
	isolateEnv(t)
	input := writeFile(t, "records.jsonl", "{}\n{\"gtins\":\"0123\"}\n")

	out, err := runRoot(t, "", "build", "--input", input, "--fail-fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Len(t, decodeItems(t, out), 1)
}

func TestBuildCmd_Errors(t *testing.T) {
	isolateEnv(t)

	t.Run("input is required", func(t *testing.T) {
		_, err := runRoot(t, "", "build")
		assert.Error(t, err)
	})

	t.Run("stdin needs format", func(t *testing.T) {
		_, err := runRoot(t, "", "build", "--input", "-")
		assert.Error(t, err)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := runRoot(t, "", "build", "--input", "records.txt")
		assert.Error(t, err)
	})

	t.Run("malformed matching config", func(t *testing.T) {
		cfgPath := writeFile(t, "config.yaml", "matching:\n  query:\n    strategy: fuzzy\n")
		input := writeFile(t, "records.jsonl", `{"gtins":"0123"}`+"\n")

		_, err := runRoot(t, "", "build", "--input", input, "--config", cfgPath)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := runRoot(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "querygen 1.0.0\n", out)
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"build", "version"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Fatalf("find %s subcommand: %v", name, err)
		}
	}
}
