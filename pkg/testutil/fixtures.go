package testutil

// Fixed identifiers for deterministic tests.
const (
	TestApplicationID1 = "APP-00000000-0000-0000-0000-000000000001"
	TestApplicationID2 = "APP-00000000-0000-0000-0000-000000000002"
	TestOfficer        = "officer-test"
)
