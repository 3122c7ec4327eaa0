package models

import "github.com/google/uuid"

// ensureID assigns a random id when the caller did not provide one. Postgres
// carries the same default; sqlite has no uuid generator.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
