package blobstore_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lareferencia/lareferencia-core-lib-sub002/blobstore"
)

// TestPutGetRoundTripProperty is the property-based form of spec.md §8
// invariant #2: for all stored blobs, get(put(b)) == b, and put(b);
// put(b) never creates two physical copies (checked via ForEachHash).
func TestPutGetRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fsys := afero.NewMemMapFs()
		s, err := blobstore.NewFSStore(fsys, blobstore.Network{Acronym: "PROP"}, blobstore.Options{BasePath: "/data"})
		require.NoError(rt, err)

		content := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(rt, "content")
		repeats := rapid.IntRange(1, 3).Draw(rt, "repeats")

		var fp string
		for i := 0; i < repeats; i++ {
			var err error
			fp, err = s.Put(context.Background(), content)
			require.NoError(rt, err)
		}

		got, err := s.Get(context.Background(), fp)
		require.NoError(rt, err)
		require.Equal(rt, content, got)

		count := 0
		require.NoError(rt, s.ForEachHash(context.Background(), func(string) error {
			count++
			return nil
		}))
		require.Equal(rt, 1, count)
	})
}

func TestHashersAreDeterministic(t *testing.T) {
	content := []byte("deterministic content")
	for _, h := range []blobstore.Hasher{blobstore.MD5Hasher{}, blobstore.SHA256Hasher{}, blobstore.Blake2bHasher{}} {
		require.Equal(t, h.Sum(content), h.Sum(content))
	}
}

func TestRecordIDIsMD5OfIdentifier(t *testing.T) {
	require.Equal(t, blobstore.MD5Hasher{}.Sum([]byte("oai:x:1")), blobstore.RecordID("oai:x:1"))
}
