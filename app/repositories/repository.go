// Package repositories holds the data access layer. Each repository is a thin
// set of queries over pkg/orm; business rules live in app/services.
//
// Repositories run on the application connection by default. WithTx returns
// a copy bound to a transaction handle so a service can compose several
// repositories inside one orm.Transaction.
package repositories

import (
	"context"

	"github.com/shashiranjanraj/cafe/pkg/orm"
)

// base carries the optional transaction handle shared by every repository.
type base struct {
	tx *orm.Query
}

func (b base) query(ctx context.Context) *orm.Query {
	if b.tx != nil {
		return b.tx.WithContext(ctx)
	}
	return orm.DB().WithContext(ctx)
}

// Transaction runs fn in a transaction on the application connection.
func Transaction(ctx context.Context, fn func(tx *orm.Query) error) error {
	return orm.DB().WithContext(ctx).Transaction(fn)
}
