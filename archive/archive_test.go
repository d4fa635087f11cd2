package archive

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
	body string
	dir  bool
}

func writeTarZst(t *testing.T, path string, entries ...entry) {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(zw)
	for _, e := range entries {
		if e.dir {
			require.NoError(t, tw.WriteHeader(&tar.Header{Name: e.name, Typeflag: tar.TypeDir, Mode: 0o755}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     e.name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(e.body)),
		}))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.dcm"))
	touch(t, filepath.Join(root, "nested", "deeper", "a.tar.zst"))
	touch(t, filepath.Join(root, "nested", "c.dcm"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "report.dcm.bak"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.dcm"), 0o755))

	paths, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "b.dcm"),
		filepath.Join(root, "nested", "c.dcm"),
		filepath.Join(root, "nested", "deeper", "a.tar.zst"),
	}, paths)
}

func TestDiscover_Errors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "a.dcm")
	touch(t, file)
	_, err = Discover(file)
	assert.Error(t, err)
}

func TestDiscover_Empty(t *testing.T) {
	paths, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("/in/report.tar.zst"))
	assert.False(t, IsArchive("/in/report.dcm"))
	assert.False(t, IsArchive("/in/zst"))
}

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tar.zst")
	writeTarZst(t, path,
		entry{name: "study/", dir: true},
		entry{name: "study/report.dcm", body: "DICM"},
		entry{name: "study/other.dcm", body: "second"},
	)

	ex, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "report.dcm", filepath.Base(ex.Path))

	data, err := os.ReadFile(ex.Path)
	require.NoError(t, err)
	assert.Equal(t, "DICM", string(data))

	require.NoError(t, ex.Close())
	_, err = os.Stat(ex.Dir)
	assert.True(t, os.IsNotExist(err), "Close removes the extraction directory")
}

func TestExtract_EmptyArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tar.zst")
	writeTarZst(t, path, entry{name: "only-a-dir/", dir: true})

	ex, err := Extract(path)
	assert.ErrorIs(t, err, ErrEmptyArchive)
	assert.Nil(t, ex)
}

func TestExtract_RejectsTraversal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.tar.zst")
	writeTarZst(t, path, entry{name: "../../escaped.dcm", body: "x"})

	_, err := Extract(path)
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestExtract_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.zst")
	require.NoError(t, os.WriteFile(path, []byte("definitely not zstd"), 0o644))

	_, err := Extract(path)
	assert.Error(t, err)

	_, err = Extract(filepath.Join(t.TempDir(), "missing.zst"))
	assert.Error(t, err)
}

func TestExtract_CleansUpOnFailure(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	path := filepath.Join(t.TempDir(), "evil.tar.zst")
	writeTarZst(t, path,
		entry{name: "ok.dcm", body: "x"},
		entry{name: "../escaped.dcm", body: "x"},
	)
	_, err := Extract(path)
	require.Error(t, err)

	left, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "failed extraction leaves no temp dir behind")
}

func TestReadFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.tar.zst")
	writeTarZst(t, path,
		entry{name: "study/", dir: true},
		entry{name: "study/report.dcm", body: "DICM"},
	)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, IsZstd(data))
	assert.False(t, IsZstd([]byte("DICM")))

	name, body, err := ReadFirst(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "study/report.dcm", name)
	assert.Equal(t, "DICM", string(body))

	empty := filepath.Join(t.TempDir(), "empty.tar.zst")
	writeTarZst(t, empty)
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	_, _, err = ReadFirst(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrEmptyArchive)
}
