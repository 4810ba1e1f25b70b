package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
)

// getDocument reads a single document into T.
func getDocument[T any](ctx context.Context, ref *firestore.DocumentRef) (T, error) {
	var result T

	snapshot, err := ref.Get(ctx)
	if err != nil {
		return result, translateError(err)
	}

	if err = snapshot.DataTo(&result); err != nil {
		return result, fmt.Errorf("failed to decode %s: %w", ref.Path, err)
	}

	return result, nil
}

// getDocumentTx reads a single document into T inside a transaction.
func getDocumentTx[T any](tx *firestore.Transaction, ref *firestore.DocumentRef) (T, error) {
	var result T

	snapshot, err := tx.Get(ref)
	if err != nil {
		return result, translateError(err)
	}

	if err = snapshot.DataTo(&result); err != nil {
		return result, fmt.Errorf("failed to decode %s: %w", ref.Path, err)
	}

	return result, nil
}

// collectDocuments drains a document iterator into a slice of T.
func collectDocuments[T any](iter *firestore.DocumentIterator) ([]T, error) {
	defer iter.Stop()

	results := make([]T, 0)
	for {
		snapshot, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translateError(err)
		}

		var item T
		if err = snapshot.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", snapshot.Ref.Path, err)
		}
		results = append(results, item)
	}

	return results, nil
}

// countQuery runs a COUNT aggregation over query.
func countQuery(ctx context.Context, query firestore.Query) (int64, error) {
	result, err := query.NewAggregationQuery().WithCount("total").Get(ctx)
	if err != nil {
		return 0, translateError(err)
	}

	return aggregationInt(result, "total")
}

// sumQuery runs a SUM aggregation of field over query.
func sumQuery(ctx context.Context, query firestore.Query, field string) (int64, error) {
	result, err := query.NewAggregationQuery().WithSum(field, "total").Get(ctx)
	if err != nil {
		return 0, translateError(err)
	}

	return aggregationInt(result, "total")
}

func aggregationInt(result firestore.AggregationResult, alias string) (int64, error) {
	raw, ok := result[alias]
	if !ok {
		return 0, fmt.Errorf("aggregation alias %q missing from result", alias)
	}

	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregation value type %T", raw)
	}

	switch v := value.GetValueType().(type) {
	case *firestorepb.Value_IntegerValue:
		return v.IntegerValue, nil
	case *firestorepb.Value_DoubleValue:
		return int64(v.DoubleValue), nil
	case *firestorepb.Value_NullValue:
		return 0, nil
	}

	return 0, fmt.Errorf("unexpected aggregation value %v", value)
}
