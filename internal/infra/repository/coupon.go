package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"payments-service/internal/domain/coupon"
	"payments-service/internal/infra"
	"payments-service/internal/pkg/geo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// CouponRepository persists coupons as JSONB documents keyed by code, with
// the expiry and geofence center denormalized into indexed columns for the
// candidate scan.
type CouponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func (r *CouponRepository) Insert(ctx context.Context, c *coupon.Coupon) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to marshal coupon", err)
	}

	var longitude, latitude *float64
	if c.Center != nil {
		longitude = &c.Center.Longitude
		latitude = &c.Center.Latitude
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO coupons (code, doc, expires_at, longitude, latitude)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.Code, doc, c.ExpiresAt, longitude, latitude,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "coupon code already exists", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to insert coupon", err)
	}
	return nil
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx,
		`SELECT doc FROM coupons WHERE code = $1`,
		code,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "coupon not found", err)
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find coupon by code", err)
	}

	var c coupon.Coupon
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to unmarshal coupon document", err)
	}
	return &c, nil
}

func (r *CouponRepository) Delete(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM coupons WHERE code = $1`,
		code,
	)
	if err != nil {
		return false, infra.WrapRepoErr(infra.KindDBFailure, "failed to delete coupon", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkUsed records a redemption with a single conditional update: the user
// entry is added to used_by only if that user is not already present. The
// check and the write happen in one statement, so racing attempts by the
// same user cannot both succeed.
func (r *CouponRepository) MarkUsed(ctx context.Context, code, userID string, at time.Time) (bool, error) {
	ts, err := json.Marshal(at)
	if err != nil {
		return false, infra.WrapRepoErr(infra.KindDBFailure, "failed to marshal redemption time", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons
		 SET doc = jsonb_set(doc, ARRAY['used_by', $2], $3::jsonb, true),
		     updated_at = now()
		 WHERE code = $1 AND NOT (doc->'used_by' ? $2)`,
		code, userID, string(ts),
	)
	if err != nil {
		return false, infra.WrapRepoErr(infra.KindDBFailure, "failed to mark coupon used", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListActive returns non-expired coupons. When a reference point is given,
// geofenced coupons come back nearest-first (haversine on the denormalized
// center columns); coupons without a geofence sort as distance zero.
func (r *CouponRepository) ListActive(ctx context.Context, near *geo.Point, now time.Time) ([]*coupon.Coupon, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if near != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT doc FROM coupons
			 WHERE expires_at > $1
			 ORDER BY CASE
			     WHEN latitude IS NULL OR longitude IS NULL THEN 0
			     ELSE 2 * 6371.0088 * asin(sqrt(
			         power(sin(radians(latitude - $2) / 2), 2) +
			         cos(radians($2)) * cos(radians(latitude)) *
			         power(sin(radians(longitude - $3) / 2), 2)))
			 END`,
			now, near.Latitude, near.Longitude,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT doc FROM coupons WHERE expires_at > $1 ORDER BY created_at DESC`,
			now,
		)
	}
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list active coupons", err)
	}
	defer rows.Close()

	var coupons []*coupon.Coupon
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan coupon row", err)
		}
		var c coupon.Coupon
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to unmarshal coupon document", err)
		}
		coupons = append(coupons, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read coupon rows", err)
	}
	return coupons, nil
}
