package services

import (
	"context"

	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/logger"
)

const (
	menuCachePrefix      = "menu:"
	menuProductsKey      = menuCachePrefix + "products"
	menuCategoriesKey    = menuCachePrefix + "categories"
	menuCustomizationKey = menuCachePrefix + "customizations"
)

// invalidateMenu drops every cached menu listing. A failure only costs a
// stale read until the TTL expires, so it is logged and swallowed.
func invalidateMenu(ctx context.Context) {
	if err := cache.ForgetPrefix(menuCachePrefix); err != nil {
		logger.WithCtx(ctx).Warn("services: menu cache invalidation failed", "error", err)
	}
}
