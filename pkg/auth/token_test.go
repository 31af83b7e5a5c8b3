package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestStore_SaveGetDelete(t *testing.T) {
	s := &Store{Dir: t.TempDir()}

	_, err := s.Get()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Save("  secret-token \n"))

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", got)

	require.NoError(t, s.Delete())
	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestStore_SaveEmpty(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	assert.Error(t, s.Save(" "))
}

func TestStore_FileFallbackMigrates(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	require.NoError(t, s.saveFile("from-file"))

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	// migrated into the keychain, file removed
	_, err = s.getFile()
	assert.ErrorIs(t, err, ErrNoToken)

	got, err = keyring.Get(keyringService, keyringUser)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	require.NoError(t, s.Delete())
}

func TestStore_NoDir(t *testing.T) {
	s := &Store{}
	_, err := s.Get()
	assert.ErrorIs(t, err, ErrNoToken)
}
