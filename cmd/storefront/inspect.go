package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

type inspection struct {
	User           *models.User      `json:"user"`
	Cart           []models.CartItem `json:"cart"`
	CartItemCount  int               `json:"cartItemCount"`
	CartTotal      string            `json:"cartTotal"`
	Wishlist       []models.Product  `json:"wishlist"`
	Orders         []models.Order    `json:"orders"`
	RecentSearches []string          `json:"recentSearches"`
	Keys           []string          `json:"keys"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the persisted session state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), config.Load(), cmd.OutOrStdout())
		},
	}
}

func runInspect(ctx context.Context, cfg config.Config, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, logging.Discard())
	if err != nil {
		return err
	}
	defer a.Close()

	keys, err := a.KV.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(newInspection(a.Store.Snapshot(), a.Search.Recent.List(), keys))
}

func newInspection(st store.State, recent, keys []string) inspection {
	return inspection{
		User:           st.User,
		Cart:           st.Cart,
		CartItemCount:  st.CartItemCount(),
		CartTotal:      models.FormatPrice(st.CartTotal()),
		Wishlist:       st.Wishlist,
		Orders:         st.Orders,
		RecentSearches: recent,
		Keys:           keys,
	}
}
