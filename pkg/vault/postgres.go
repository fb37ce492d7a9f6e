// pkg/vault/postgres.go
package vault

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgVault stores secrets in the vault_secrets table. Values are encrypted
// with the configured cipher; without one they are stored as-is (dev only).
type pgVault struct {
	dbPool *pgxpool.Pool
	cipher *Cipher
	log    *zap.SugaredLogger
}

func NewPostgresVault(dbPool *pgxpool.Pool, cipher *Cipher, log *zap.SugaredLogger) Store {
	if cipher == nil {
		log.Warn("vault encryption key not set; storing secrets unencrypted")
	}
	return &pgVault{dbPool: dbPool, cipher: cipher, log: log}
}

func (v *pgVault) Get(ctx context.Context, name string) (string, error) {
	var blob []byte
	err := v.dbPool.QueryRow(ctx, `SELECT value FROM vault_secrets WHERE name=$1`, name).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if v.cipher == nil {
		return string(blob), nil
	}
	plain, err := v.cipher.Decrypt(blob)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (v *pgVault) Set(ctx context.Context, name, value string) error {
	blob := []byte(value)
	if v.cipher != nil {
		var err error
		blob, err = v.cipher.Encrypt(blob)
		if err != nil {
			return err
		}
	}
	_, err := v.dbPool.Exec(ctx, `INSERT INTO vault_secrets(name, value, updated_at)
	  VALUES ($1,$2,NOW())
	  ON CONFLICT (name) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`, name, blob)
	return err
}

func (v *pgVault) Delete(ctx context.Context, name string) error {
	tag, err := v.dbPool.Exec(ctx, `DELETE FROM vault_secrets WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
