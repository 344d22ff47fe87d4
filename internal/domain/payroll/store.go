package payroll

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hrmpay/internal/platform/crypto"
)

// Store is the Postgres implementation of StoreAPI.
type Store struct {
	DB     *pgxpool.Pool
	Crypto *crypto.Service
}

func NewStore(db *pgxpool.Pool, cryptoSvc *crypto.Service) *Store {
	return &Store{DB: db, Crypto: cryptoSvc}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.Ping(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

// resolveSalary prefers the encrypted column when a key is configured.
func resolveSalary(cryptoSvc *crypto.Service, plain decimal.NullDecimal, encrypted []byte) (decimal.Decimal, error) {
	if len(encrypted) > 0 && cryptoSvc != nil && cryptoSvc.Configured() {
		value, err := cryptoSvc.OpenAmount(encrypted)
		if err != nil {
			return decimal.Zero, fmt.Errorf("decrypt basic salary: %w", err)
		}
		return value, nil
	}
	if plain.Valid {
		return plain.Decimal, nil
	}
	return decimal.Zero, nil
}
