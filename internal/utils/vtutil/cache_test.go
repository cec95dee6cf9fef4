package vtutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"
)

func TestMemoryCacheExpires(t *testing.T) {
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	got, ok, err := c.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clock = clock.Add(2 * time.Minute)
	_, ok, err = c.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Set("a", []byte("1"), time.Hour))
	require.NoError(t, c.Set("b", []byte("2"), time.Hour))

	require.NoError(t, c.Delete("a"))
	_, ok, _ := c.Get("a")
	assert.False(t, ok)

	require.NoError(t, c.Clear())
	_, ok, _ = c.Get("b")
	assert.False(t, ok)
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "vt"))
	require.NoError(t, err)

	require.NoError(t, c.Set("file_report:abc", []byte(`{"found":true}`), time.Hour))
	got, ok, err := c.Get("file_report:abc")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"found":true}`, string(got))

	require.NoError(t, c.Delete("file_report:abc"))
	_, ok, err = c.Get("file_report:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCacheSweeps(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	require.NoError(t, err)

	require.NoError(t, c.Set("fresh", []byte("1"), time.Hour))
	require.NoError(t, c.Set("stale", []byte("2"), -time.Minute))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.cache"), []byte("not json"), 0644))

	require.NoError(t, c.CleanExpiredEntries())

	files, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	assert.Len(t, files, 1)
	_, ok, _ := c.Get("fresh")
	assert.True(t, ok)

	require.NoError(t, c.Clear())
	files, _ = filepath.Glob(filepath.Join(dir, "*.cache"))
	assert.Empty(t, files)
}

func TestNewCacheModes(t *testing.T) {
	none, err := NewCache(CacheModeNone, "")
	require.NoError(t, err)
	assert.Nil(t, none)

	mem, err := NewCache(CacheModeMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, mem)

	file, err := NewCache(CacheModeFile, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, file)

	_, err = NewCache(CacheModeFile, "")
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)

	_, err = NewCache("redis", "")
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}

func TestThreatLevelGrades(t *testing.T) {
	cases := []struct {
		malicious, total int
		found            bool
		want             ThreatLevel
	}{
		{0, 60, true, ThreatLevelClean},
		{1, 60, true, ThreatLevelLow},
		{6, 60, true, ThreatLevelMedium},
		{12, 60, true, ThreatLevelHigh},
		{30, 60, true, ThreatLevelCritical},
		{0, 0, true, ThreatLevelUnknown},
		{5, 60, false, ThreatLevelUnknown},
	}
	for _, tc := range cases {
		r := &FileReport{Found: tc.found, Malicious: tc.malicious, TotalCount: tc.total}
		assert.Equal(t, tc.want, r.ThreatLevel(), "%d/%d", tc.malicious, tc.total)
	}
	assert.Equal(t, "Critical", ThreatLevelCritical.String())
}

func TestThreatNameBreaksTiesByName(t *testing.T) {
	r := &FileReport{EngineResults: map[string]EngineResult{
		"A": {Category: "malicious", Result: "Zeta"},
		"B": {Category: "malicious", Result: "Alpha"},
		"C": {Category: "undetected", Result: "Ignored"},
	}}

	assert.Equal(t, "Alpha", r.ThreatName())
}
