package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

func TestParseTags(t *testing.T) {
	tags, err := parseTags([]string{"2147525040", "0x8000a1b2", " 7 "})
	require.NoError(t, err)
	require.Equal(t, []notes.NoteTag{2147525040, 0x8000a1b2, 7}, tags)

	_, err = parseTags([]string{"0x1ffffffff"})
	require.Error(t, err)
	_, err = parseTags([]string{"tag"})
	require.Error(t, err)
}

func TestNewAccountID(t *testing.T) {
	t.Parallel()

	for _, metadata := range []uint8{faucetMetadata, accountMetadata} {
		id, err := newAccountID(metadata)
		require.NoError(t, err)
		require.Equal(t, metadata, id.Metadata())

		parsed, err := notes.ParseAccountID(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	}
}

func TestWriteOrderTable(t *testing.T) {
	t.Parallel()

	faucetA := notes.AccountID(0x2a1000000000000a)
	faucetB := notes.AccountID(0x2b2000000000000b)
	orders := []domain.ClientOrder{
		{
			Id:     notes.NewWord(1),
			Source: domain.AssetAmount{AssetID: faucetB, Amount: 20},
			Target: domain.AssetAmount{AssetID: faucetA, Amount: 10},
		},
		{
			Id:     notes.NewWord(2),
			Source: domain.AssetAmount{AssetID: faucetB, Amount: 3},
			Target: domain.AssetAmount{AssetID: faucetA, Amount: 10},
		},
	}

	buf := &bytes.Buffer{}
	writeOrderTable(buf, orders)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, tableSeparator, lines[0])
	require.Equal(t, tableSeparator, lines[5])
	require.Contains(t, lines[3], notes.NewWord(1).String())
	require.Contains(t, lines[3], "0.50")
	require.Contains(t, lines[4], "3.33")
	for _, line := range lines {
		require.Len(t, line, len(tableSeparator))
	}
}
