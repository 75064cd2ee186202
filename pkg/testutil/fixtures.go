package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers and instants for deterministic tests.
var (
	TestPropertyID = uuid.MustParse("00000000-0000-0000-0000-000000000101").String()
	TestBorrowerID = uuid.MustParse("00000000-0000-0000-0000-000000000201").String()
	TestActor      = "clerk"

	// TestOpenedAt is a mid-month instant; loans opened then have their
	// first installment due 30 days later.
	TestOpenedAt = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
)
