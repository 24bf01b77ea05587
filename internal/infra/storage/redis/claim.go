package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"
)

const (
	// claimKeyPrefix is the namespace of every claim record key.
	claimKeyPrefix = "faucet:claim"

	// claimScanBatch bounds the keys fetched per SCAN page and per MGET call.
	claimScanBatch = 100
)

// claimKey builds the key holding the claim record of an address.
//
// Format: "faucet:claim:<address>"
func claimKey(address string) string {
	return fmt.Sprintf("%s:%s", claimKeyPrefix, address)
}

// HasClaimed checks for the claim record with EXISTS.
func (c *client) HasClaimed(ctx context.Context, address string) (bool, error) {
	n, err := c.conn.Exists(ctx, claimKey(address)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	return n == 1, nil
}

// MarkClaimed stores the JSON-encoded claim record with SETNX and no expiration.
//
// SETNX is the atomic insert-if-absent: when the key already exists nothing is
// written and faucet.ErrDuplicateClaim is returned.
func (c *client) MarkClaimed(ctx context.Context, address, txReference string) error {
	data, err := json.Marshal(faucet.ClaimRecord{
		Address:     address,
		ClaimedAt:   time.Now().UTC(),
		TxReference: txReference,
	})
	if err != nil {
		return err
	}

	ok, err := c.conn.SetNX(ctx, claimKey(address), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	if !ok {
		return faucet.ErrDuplicateClaim
	}

	return nil
}

// ListClaims walks every claim key with SCAN and loads the records in MGET batches.
// Records are returned ordered by claim time.
func (c *client) ListClaims(ctx context.Context) ([]faucet.ClaimRecord, error) {
	var keys []string
	iter := c.conn.Scan(ctx, 0, claimKeyPrefix+":*", claimScanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	records := make([]faucet.ClaimRecord, 0, len(keys))
	for batch := range slices.Chunk(keys, claimScanBatch) {
		values, err := c.conn.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				// deleted between SCAN and MGET
				continue
			}

			var record faucet.ClaimRecord
			if err := json.Unmarshal([]byte(raw), &record); err != nil {
				return nil, fmt.Errorf("decoding claim record %s: %w", batch[i], err)
			}
			records = append(records, record)
		}
	}

	slices.SortFunc(records, func(a, b faucet.ClaimRecord) int {
		return cmp.Or(a.ClaimedAt.Compare(b.ClaimedAt), cmp.Compare(a.Address, b.Address))
	})

	return records, nil
}

var (
	_ faucet.ClaimStorage = new(client)
	_ faucet.ClaimLister  = new(client)
)
