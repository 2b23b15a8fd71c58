package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Item struct {
	ItemID            string    `json:"item_id"`
	Category          string    `json:"category"`
	Name              string    `json:"name"`
	UnitPrice         int       `json:"unit_price"`
	AvailableQuantity int       `json:"available_quantity"`
	ImageURL          string    `json:"image_url,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PgCatalog reads the menu. The quantity column is the same one the stock
// ledger decrements; the catalog itself never writes it.
type PgCatalog struct{ DB *pgxpool.Pool }

func (c *PgCatalog) List(ctx context.Context) ([]Item, error) {
	rows, err := c.DB.Query(ctx, `
		SELECT item_id, category, name, unit_price, available_quantity,
		       COALESCE(image_url, ''), updated_at
		FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ItemID, &it.Category, &it.Name, &it.UnitPrice,
			&it.AvailableQuantity, &it.ImageURL, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list menu: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ByCategory groups a flat listing the way the menu page renders it.
func ByCategory(items []Item) map[string][]Item {
	out := map[string][]Item{}
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}
