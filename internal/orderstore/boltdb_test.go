package orderstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/okx/WEB3-DEX/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(orderID uint64) *domain.OrderRecord {
	return &domain.OrderRecord{
		OrderID:         uint256.NewInt(orderID),
		FromToken:       common.HexToAddress("0x00000000000000000000000000000000000000a1"),
		ToToken:         common.HexToAddress("0x00000000000000000000000000000000000000b1"),
		Origin:          common.HexToAddress("0x0000000000000000000000000000000000000101"),
		FromTokenAmount: uint256.NewInt(1000),
		ReturnAmount:    uint256.NewInt(1980),
		CompletedAt:     time.Unix(1_700_000_000, 0),
	}
}

func TestRecordAndGet(t *testing.T) {
	s := newTestStorage(t)

	rec := sampleRecord(42)
	require.NoError(t, s.Record(rec))

	got, err := s.Get("42")
	require.NoError(t, err)
	require.Equal(t, "42", got.OrderID)
	require.Equal(t, rec.FromToken.Hex(), got.FromToken)
	require.Equal(t, rec.ToToken.Hex(), got.ToToken)
	require.Equal(t, rec.Origin.Hex(), got.Origin)
	require.Equal(t, "1000", got.FromTokenAmount)
	require.Equal(t, "1980", got.ReturnAmount)
	require.Equal(t, int64(1_700_000_000), got.CompletedAt)
}

func TestRecordIsWriteOnce(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.Record(sampleRecord(7)))
	require.Error(t, s.Record(sampleRecord(7)))

	count, err := s.Count()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGetMissingOrder(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Get("999")
	require.ErrorIs(t, err, ErrOrderNotFound)
}
