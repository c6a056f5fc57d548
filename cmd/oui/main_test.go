package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"oui/manuf"
)

const registry = `00:11:22	Short
00:11:22:33	Long	# narrower
3CD92B  Hewlett Packard
`

func writeRegistry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manuf")
	require.NoError(t, os.WriteFile(path, []byte(registry), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueries(t *testing.T) {
	in := strings.NewReader("00:11:22\n\n  3CD92B  \n")
	qs, err := queries(in, []string{"aa", "-", "bb"})
	require.NoError(t, err)
	require.Equal(t, []string{"aa", "00:11:22", "3CD92B", "bb"}, qs)
}

func TestWriteResult(t *testing.T) {
	idx, err := manuf.Read(strings.NewReader(registry))
	require.NoError(t, err)

	var buf bytes.Buffer
	writeResult(&buf, idx.Lookup("00:11:22:33:44:55"))
	require.Equal(t, "Vendor: Long\nPrefix: 00:11:22:33/32\nComment: narrower\n", buf.String())

	buf.Reset()
	writeResult(&buf, idx.Lookup("3C-D9-2B-00-00-00"))
	require.Equal(t, "Vendor: Hewlett Packard\nPrefix: 3C:D9:2B/24\n", buf.String())

	buf.Reset()
	writeResult(&buf, idx.Lookup("zz"))
	require.Equal(t, "No match\n", buf.String())
}

func TestCommands(t *testing.T) {
	path := writeRegistry(t)

	t.Run("lookup", func(t *testing.T) {
		out, err := run(t, "lookup", "--db", path, "3CD92BAABBCC")
		require.NoError(t, err)
		require.Equal(t, "Vendor: Hewlett Packard\nPrefix: 3C:D9:2B/24\n", out)
	})

	t.Run("lookup json", func(t *testing.T) {
		out, err := run(t, "lookup", "--db", path, "--json", "00:11:22:33:00:00", "FF:FF:FF")
		require.NoError(t, err)
		require.Equal(t,
			`{"found":true,"vendor":"Long","prefix":"00:11:22:33","mask_bits":32,"comment":"narrower"}`+"\n"+
				`{"found":false}`+"\n",
			out)
	})

	t.Run("lookup without registry", func(t *testing.T) {
		_, err := run(t, "lookup", "--db", filepath.Join(t.TempDir(), "missing"), "001122")
		require.ErrorContains(t, err, "load registry")
	})

	t.Run("lookup without args", func(t *testing.T) {
		_, err := run(t, "lookup", "--db", path)
		require.Error(t, err)
	})

	t.Run("search", func(t *testing.T) {
		out, err := run(t, "search", "--db", path, "hewlett")
		require.NoError(t, err)
		require.Contains(t, out, "3C:D9:2B/24")
		require.Contains(t, out, "Hewlett Packard")
	})

	t.Run("info", func(t *testing.T) {
		out, err := run(t, "info", "--db", path)
		require.NoError(t, err)
		require.Contains(t, out, "Entries: 3\n")
		require.Contains(t, out, "/32")
		require.Contains(t, out, "/24")
	})
}

func TestUpdateCommand(t *testing.T) {
	src := writeRegistry(t)
	dir := t.TempDir()
	dst := filepath.Join(dir, "data", "manuf")
	t.Setenv("OUI_HISTORY", filepath.Join(dir, "data", "history.db"))

	out, err := run(t, "update", "--db", dst, "--url", src, "--verify")
	require.NoError(t, err)
	require.Contains(t, out, "Updated DB: "+dst+"\n")
	require.Contains(t, out, "Bytes: "+strconv.Itoa(len(registry))+"\n")
	require.Contains(t, out, "Transport: file\n")
	require.Contains(t, out, "Entries: 3\n")
	require.NotContains(t, out, "Unchanged")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, registry, string(data))

	out, err = run(t, "update", "--db", dst, "--url", src)
	require.NoError(t, err)
	require.Contains(t, out, "Unchanged since")

	out, err = run(t, "history", "--limit", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "ID"))
	require.True(t, strings.HasPrefix(lines[1], "2"))
}
