package bitmat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushCount(t *testing.T) {
	bm := New()
	require.Equal(t, 0, bm.Count())
	for want := 1; want <= 5; want++ {
		bm.Push()
		require.Equal(t, want, bm.Count())
	}
}

func TestSetGetSmall(t *testing.T) {
	bm := New()
	for i := 0; i < 4; i++ {
		bm.Push()
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got, err := bm.Get(i, j)
			require.NoError(t, err)
			require.False(t, got)
		}
	}

	require.NoError(t, bm.Set(2, 3))
	require.NoError(t, bm.Set(0, 2))
	require.NoError(t, bm.Set(2, 1))
	require.NoError(t, bm.Set(1, 3))
	require.NoError(t, bm.Set(3, 3))

	expected := [4][4]bool{
		{false, false, true, false},
		{false, false, false, true},
		{false, true, false, true},
		{false, false, false, true},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got, err := bm.Get(i, j)
			require.NoError(t, err)
			require.Equal(t, expected[i][j], got, "(%d,%d)", i, j)
		}
	}
}

func TestOrRowIntoSmall(t *testing.T) {
	bm := New()
	for i := 0; i < 4; i++ {
		bm.Push()
	}
	require.NoError(t, bm.Set(0, 1))
	require.NoError(t, bm.Set(0, 2))
	require.NoError(t, bm.Set(1, 0))
	require.NoError(t, bm.Set(1, 2))
	require.NoError(t, bm.Set(2, 3))
	require.NoError(t, bm.Set(3, 1))

	var js []int
	err := bm.OrRowInto(1, 0, func(j int) { js = append(js, j) })
	require.NoError(t, err)
	require.Equal(t, []int{1}, js)

	expected := [4][4]bool{
		{false, true, true, false},
		{true, true, true, false},
		{false, false, false, true},
		{false, true, false, false},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			got, err := bm.Get(i, j)
			require.NoError(t, err)
			require.Equal(t, expected[i][j], got, "(%d,%d)", i, j)
		}
	}
}

func TestLargeAgainstTruthTable(t *testing.T) {
	const n = 1000
	bm := New()
	for i := 0; i < n; i++ {
		bm.Push()
	}
	require.Equal(t, n, bm.Count())

	truth := make([]bool, n*n)
	for k := 0; k < 10000; k++ {
		i := (2551 * k) % n
		j := (3767 * k) % n
		was, err := bm.SetReplace(i, j)
		require.NoError(t, err)
		require.Equal(t, truth[i*n+j], was)
		truth[i*n+j] = true
	}

	for k := 0; k < 200; k++ {
		iDst := (3557 * k) % n
		iSrc := (1607 * k) % n

		var js []int
		err := bm.OrRowInto(iDst, iSrc, func(j int) { js = append(js, j) })
		require.NoError(t, err)

		var expected []int
		for j := 0; j < n; j++ {
			if !truth[iDst*n+j] && truth[iSrc*n+j] {
				expected = append(expected, j)
			}
		}
		require.Equal(t, expected, js)

		for j := 0; j < n; j++ {
			truth[iDst*n+j] = truth[iDst*n+j] || truth[iSrc*n+j]
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			got, err := bm.Get(i, j)
			require.NoError(t, err)
			require.Equal(t, truth[i*n+j], got, "(%d,%d)", i, j)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	bm := New()
	bm.Push()
	_, err := bm.Get(1, 0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	err = bm.Set(-1, 0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}
