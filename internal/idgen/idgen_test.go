package idgen

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_URLSafe(t *testing.T) {
	req := require.New(t)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := Generate()
		req.NoError(err)
		req.Len(id, 22)
		req.Equal(id, url.PathEscape(id))
		req.True(Valid(id))
		_, dup := seen[id]
		req.False(dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestGenerate_ShortRead(t *testing.T) {
	_, err := generate(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	require.False(t, Valid(""))
	require.False(t, Valid("unknown-id"))
	require.False(t, Valid("!!!!!!!!!!!!!!!!!!!!!!"))
}
