package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	now := time.Unix(100, 0)

	s := NewStorage()
	s.now = func() time.Time { return now }

	require.Nil(t, s.Get("key"))

	s.Set("key", []byte("value"), time.Minute)
	require.Equal(t, []byte("value"), s.Get("key"))

	now = now.Add(59 * time.Second)
	require.Equal(t, []byte("value"), s.Get("key"))

	now = now.Add(time.Second)
	require.Nil(t, s.Get("key"))
	require.Empty(t, s.items)
}
