package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerInfoRoundTrip(t *testing.T) {
	var li LedgerInfo
	li.Sequence = 32570
	for i := range li.LedgerHash {
		li.LedgerHash[i] = byte(i)
	}
	li.Drops = 100_000_000_000
	li.CloseFlags = 1
	li.CloseTimeResolution = 10
	li.CloseTime = 500000000
	li.ParentCloseTime = 499999990

	buf := make([]byte, LedgerInfoSize)
	PutLedgerInfo(buf, li)

	got, err := ParseLedgerInfo(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, li, got)
}

func TestLedgerInfoSize(t *testing.T) {
	assert.Equal(t, 164, LedgerInfoSize)
}

func TestParseLedgerInfoShortBuffer(t *testing.T) {
	_, err := ParseLedgerInfo(make([]byte, 10), 5)
	require.Error(t, err)
}
