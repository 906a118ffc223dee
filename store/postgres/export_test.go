package postgres

import "context"

// Truncate empties every invoicer table.
func Truncate(ctx context.Context, s *Store) error {
	_, err := s.pg.NewRaw(`TRUNCATE invoicer_sequences, invoicer_records, invoicer_settings RESTART IDENTITY`).Exec(ctx)
	return err
}
