package mongo

import "context"

// Drop removes every invoicer collection.
func Drop(ctx context.Context, s *Store) error {
	for col := range migrationIndexes() {
		if err := s.mdb.Collection(col).Drop(ctx); err != nil {
			return err
		}
	}
	return nil
}
