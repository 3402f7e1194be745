package orderstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/okx/WEB3-DEX/internal/domain"
)

const (
	OrdersBucket = "orders"

	DefaultDBPath = "./data/dex-router.db"
)

var ErrOrderNotFound = errors.New("order not found")

// StoredOrder is the persisted form of a completed swap. Amounts are decimal
// strings so the records survive without a fixed-width binary layout.
type StoredOrder struct {
	OrderID         string `json:"orderId"`
	FromToken       string `json:"fromToken"`
	ToToken         string `json:"toToken"`
	Origin          string `json:"origin"`
	FromTokenAmount string `json:"fromTokenAmount"`
	ReturnAmount    string `json:"returnAmount"`
	CompletedAt     int64  `json:"completedAt"`
}

type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[orderStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record writes one completed swap. Records are write-once: the order id is
// the key and an existing record is never replaced.
func (s *Storage) Record(rec *domain.OrderRecord) error {
	stored := &StoredOrder{
		OrderID:         rec.OrderID.Dec(),
		FromToken:       rec.FromToken.Hex(),
		ToToken:         rec.ToToken.Hex(),
		Origin:          rec.Origin.Hex(),
		FromTokenAmount: rec.FromTokenAmount.Dec(),
		ReturnAmount:    rec.ReturnAmount.Dec(),
		CompletedAt:     rec.CompletedAt.Unix(),
	}

	existing, err := s.db.List(OrdersBucket)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	if _, ok := existing[stored.OrderID]; ok {
		return fmt.Errorf("order %s already recorded", stored.OrderID)
	}

	data, err := sonic.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return s.db.Set(OrdersBucket, []byte(stored.OrderID), data)
}

func (s *Storage) Get(orderID string) (*StoredOrder, error) {
	data, err := s.db.List(OrdersBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	raw, ok := data[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	var stored StoredOrder
	if err := sonic.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}
	return &stored, nil
}

func (s *Storage) Count() (int, error) {
	data, err := s.db.List(OrdersBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
