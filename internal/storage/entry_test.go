package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryLocationInvariant(t *testing.T) {
	missing := Entry{Name: "orphan"}
	assert.ErrorIs(t, missing.Validate(), ErrNoLocation)
	assert.Equal(t, ModeUnknown, missing.Mode())

	native := NewNativeEntry("a.txt", "/tmp/a.txt", false, 3, 0, "text/plain")
	assert.NoError(t, native.Validate())
	assert.Equal(t, ModeNative, native.Mode())
	assert.Equal(t, "/tmp/a.txt", native.ID())

	saf := NewSafEntry("a.txt", "content://provider/tree/X/document/X%2Fa.txt", false, 3, 0, "")
	assert.NoError(t, saf.Validate())
	assert.Equal(t, ModeSaf, saf.Mode())
}

func TestEntryDirectorySizeZero(t *testing.T) {
	e := NewNativeEntry("dir", "/tmp/dir", true, 4096, 0, "")
	assert.Zero(t, e.Size)
}

func TestVolumeLocationInvariant(t *testing.T) {
	assert.ErrorIs(t, Volume{Name: "nowhere"}.Validate(), ErrNoLocation)

	v := Volume{Name: "sdcard", Location: PathLocation("/storage/1234-ABCD")}
	assert.NoError(t, v.Validate())
	assert.Equal(t, ModeNative, v.Mode())
}

func TestGrantIsTree(t *testing.T) {
	assert.True(t, Grant{TreeURI: "content://provider/tree/1234"}.IsTree())
	assert.False(t, Grant{TreeURI: "content://provider/document/1234"}.IsTree())
}
