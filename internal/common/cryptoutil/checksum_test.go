package cryptoutil

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deploymenttheory/go-flow-composer/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("SHA256")
	require.NoError(t, err)
	assert.Equal(t, SHA256, a)

	a, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, HashAlgorithm(""), a)

	_, err = ParseAlgorithm("md5")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))
}

func TestHashReader_KnownDigest(t *testing.T) {
	sum, err := HashReader(strings.NewReader("abc"), SHA256)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func TestWriteAndVerifyChecksumFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solution.zip")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))

	sum, out, err := WriteChecksumFile(path, SHA512)
	require.NoError(t, err)
	assert.Equal(t, path+".sha512", out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sum+"  solution.zip\n", string(raw))

	ok, err := VerifyChecksumFile(path, out)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0644))
	ok, err = VerifyChecksumFile(path, out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileChecksum_Missing(t *testing.T) {
	_, err := FileChecksum(filepath.Join(t.TempDir(), "nope"), SHA256)
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
}
