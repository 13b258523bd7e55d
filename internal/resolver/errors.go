package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/graphql-go/graphql"
)

// AmbiguousResultError indicates a by-primary-key lookup that matched more
// than one row: the store no longer agrees with the descriptors' primary key.
type AmbiguousResultError struct {
	Model string
	Count int
}

func (e *AmbiguousResultError) Error() string {
	return fmt.Sprintf("primary key lookup on %q matched %d rows", e.Model, e.Count)
}

// storeError logs the underlying store failure and returns an opaque error,
// so driver messages (which can echo SQL fragments) never reach GraphQL
// responses. Context cancellation passes through untouched.
func (r *Resolver) storeError(p graphql.ResolveParams, modelName string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	r.logger.ErrorContext(p.Context, "store query failed",
		slog.String("model", modelName),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("store error while resolving %s", modelName)
}
