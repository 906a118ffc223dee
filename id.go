package invoicer

import "github.com/xraph/invoicer/id"

// ID is the primary identifier type for stored invoicer entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
