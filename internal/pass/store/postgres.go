package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgconn"

	"gatepass/internal/pass/models"
	"gatepass/internal/sentinel"
	id "gatepass/pkg/domain"
	txcontext "gatepass/pkg/platform/tx"
)

// PostgresStore persists configuration and passes in PostgreSQL. Every query
// joins the transaction carried in ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadConfig reads the configuration row. Inside a transaction it takes
// FOR UPDATE so writers on other replicas queue behind this one.
func (s *PostgresStore) LoadConfig(ctx context.Context) (*models.Configuration, error) {
	query := `
		SELECT pass_cost::TEXT, pass_duration_seconds, max_supply, metadata_base,
		       admin, payment_token, custody, total_issued, updated_at
		FROM pass_config
		WHERE id = 1
	`
	if _, inTx := txcontext.From(ctx); inTx {
		query += " FOR UPDATE"
	}

	var (
		cost, admin, token, custody string
		durationSecs, maxSupply     int64
		totalIssued                 int64
		cfg                         models.Configuration
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query).Scan(
		&cost, &durationSecs, &maxSupply, &cfg.MetadataBase,
		&admin, &token, &custody, &totalIssued, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load pass config: %w", err)
	}

	passCost, ok := new(big.Int).SetString(cost, 10)
	if !ok {
		return nil, fmt.Errorf("load pass config: malformed pass_cost %q", cost)
	}
	cfg.PassCost = passCost
	cfg.PassDuration = time.Duration(durationSecs) * time.Second
	cfg.MaxSupply = uint64(maxSupply)
	cfg.TotalIssued = uint64(totalIssued)
	cfg.Admin = common.HexToAddress(strings.TrimSpace(admin))
	cfg.PaymentToken = common.HexToAddress(strings.TrimSpace(token))
	cfg.Custody = common.HexToAddress(strings.TrimSpace(custody))
	return &cfg, nil
}

func (s *PostgresStore) InitConfig(ctx context.Context, cfg *models.Configuration) (bool, error) {
	if cfg == nil {
		return false, fmt.Errorf("configuration is required: %w", sentinel.ErrInvalidInput)
	}
	query := `
		INSERT INTO pass_config (id, pass_cost, pass_duration_seconds, max_supply, metadata_base,
		                         admin, payment_token, custody, total_issued, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, 0, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		cfg.PassCost.String(),
		int64(cfg.PassDuration/time.Second),
		int64(cfg.MaxSupply),
		cfg.MetadataBase,
		cfg.Admin.Hex(),
		cfg.PaymentToken.Hex(),
		cfg.Custody.Hex(),
		cfg.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("init pass config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("init pass config: %w", err)
	}
	return n == 1, nil
}

// SaveConfig writes the admin-mutable fields. total_issued is left alone.
func (s *PostgresStore) SaveConfig(ctx context.Context, cfg *models.Configuration) error {
	if cfg == nil {
		return fmt.Errorf("configuration is required: %w", sentinel.ErrInvalidInput)
	}
	query := `
		UPDATE pass_config
		SET pass_cost = $1, pass_duration_seconds = $2, max_supply = $3,
		    metadata_base = $4, admin = $5, updated_at = $6
		WHERE id = 1
	`
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		cfg.PassCost.String(),
		int64(cfg.PassDuration/time.Second),
		int64(cfg.MaxSupply),
		cfg.MetadataBase,
		cfg.Admin.Hex(),
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save pass config: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// RecordIssuance advances the counter only from id-1 to id, then inserts the
// pass. Both statements share the caller's transaction.
func (s *PostgresStore) RecordIssuance(ctx context.Context, pass *models.Pass) error {
	if pass == nil {
		return fmt.Errorf("pass is required: %w", sentinel.ErrInvalidInput)
	}
	exec := txcontext.Pick(ctx, s.db)

	res, err := exec.ExecContext(ctx, `
		UPDATE pass_config
		SET total_issued = $1
		WHERE id = 1 AND total_issued = $1 - 1
	`, int64(pass.ID))
	if err != nil {
		return fmt.Errorf("advance total issued: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance total issued: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pass %d out of sequence: %w", pass.ID, sentinel.ErrAlreadyUsed)
	}

	var payer, amount any
	if pass.Kind == models.KindPaid {
		payer = pass.Payer.Hex()
		amount = pass.PricePaid.String()
	}
	_, err = exec.ExecContext(ctx, `
		INSERT INTO passes (id, recipient, kind, payer, amount_paid, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		int64(pass.ID),
		pass.Recipient.Hex(),
		string(pass.Kind),
		payer,
		amount,
		pass.IssuedAt,
		pass.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pass %d already recorded: %w", pass.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPass(ctx context.Context, passID id.PassID) (*models.Pass, error) {
	query := `
		SELECT id, recipient, kind, payer, amount_paid::TEXT, issued_at, expires_at
		FROM passes
		WHERE id = $1
	`
	var (
		rawID     int64
		recipient string
		kind      string
		payer     sql.NullString
		amount    sql.NullString
		pass      models.Pass
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, int64(passID)).Scan(
		&rawID, &recipient, &kind, &payer, &amount, &pass.IssuedAt, &pass.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pass: %w", err)
	}

	pass.ID = id.PassID(rawID)
	pass.Recipient = common.HexToAddress(strings.TrimSpace(recipient))
	pass.Kind = models.Kind(kind)
	pass.PricePaid = new(big.Int)
	if payer.Valid {
		pass.Payer = common.HexToAddress(strings.TrimSpace(payer.String))
	}
	if amount.Valid {
		if _, ok := pass.PricePaid.SetString(amount.String, 10); !ok {
			return nil, fmt.Errorf("find pass: malformed amount_paid %q", amount.String)
		}
	}
	pass.IssuedAt = pass.IssuedAt.UTC()
	pass.ExpiresAt = pass.ExpiresAt.UTC()
	return &pass, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
