package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"prodsupply/internal/core/id"
	"prodsupply/internal/core/security"
	"prodsupply/internal/domain/supply"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

var _ supply.AuditTrail = (*SupplyAuditTrail)(nil)

// SupplyAuditTrail persists supply events to sys_supply_audit. Large
// payloads are stored zstd-compressed.
type SupplyAuditTrail struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	compressThreshold int
}

// NewSupplyAuditTrail creates a new supply audit trail.
func NewSupplyAuditTrail(txManager *TxManager) (*SupplyAuditTrail, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	return &SupplyAuditTrail{
		txManager:         txManager,
		encoder:           encoder,
		compressThreshold: 4 * 1024,
	}, nil
}

// Record writes one supply event.
func (t *SupplyAuditTrail) Record(ctx context.Context, event supply.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	algo := CompressionNone
	var compressed []byte
	if len(payload) > t.compressThreshold {
		compressed = t.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_supply_audit (
			id, kind, sale_id, line_id, user_id,
			payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = t.txManager.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), event.Kind, event.SaleID, event.LineID,
		security.GetUserID(ctx),
		payload, compressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert supply audit: %w", err)
	}
	return nil
}
