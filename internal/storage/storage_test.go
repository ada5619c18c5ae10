package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *Local {
	t.Helper()
	local, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	return local
}

func TestGetMissingKeyIsNil(t *testing.T) {
	local := openTestStorage(t)

	value, err := local.Get("never/written")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestPutGetDelete(t *testing.T) {
	local := openTestStorage(t)

	require.NoError(t, local.Put(KeyToken, []byte("tok")))

	value, err := local.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), value)

	require.NoError(t, local.Delete(KeyToken))
	value, err = local.Get(KeyToken)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestValueSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	local, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, local.Put(KeyUIState, []byte(`{"sidebar_open":true}`)))
	require.NoError(t, local.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(KeyUIState)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"sidebar_open":true}`), value)
}

func TestKeysAreIndependent(t *testing.T) {
	local := openTestStorage(t)

	require.NoError(t, local.Put(KeyToken, []byte("tok")))
	require.NoError(t, local.Put(KeyUIState, []byte("{}")))

	// Logout drops the credential without touching the UI state.
	require.NoError(t, local.Delete(KeyToken))

	value, err := local.Get(KeyUIState)
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), value)
}
