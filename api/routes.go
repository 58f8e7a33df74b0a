package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"

	// TrusteesEndpoint is the endpoint for registering a new trustee
	TrusteesEndpoint = "/trustees"

	// ElectionsEndpoint is the endpoint for creating a new election
	ElectionsEndpoint = "/elections"

	// ElectionURLParam is the URL parameter for an election identifier
	ElectionURLParam = "electionId"

	// SharesEndpoint is the endpoint for submitting a trustee's key shares for an election
	SharesEndpoint = "/elections/{" + ElectionURLParam + "}/shares"
	// BallotsEndpoint is the endpoint for submitting an encrypted ballot
	BallotsEndpoint = "/elections/{" + ElectionURLParam + "}/ballots"
	// TallyEndpoint is the endpoint for starting homomorphic aggregation of an election
	TallyEndpoint = "/elections/{" + ElectionURLParam + "}/tally"
	// TallyPartialEndpoint is the endpoint for submitting a trustee's partial decryption
	TallyPartialEndpoint = "/elections/{" + ElectionURLParam + "}/tally/partial"
	// TallyFinalizeEndpoint is the endpoint for combining partial decryptions into a result
	TallyFinalizeEndpoint = "/elections/{" + ElectionURLParam + "}/tally/finalize"
	// ResultVerifyEndpoint is the endpoint for fetching the result verification digest
	ResultVerifyEndpoint = "/elections/{" + ElectionURLParam + "}/result/verify"
	// AuditEndpoint is the endpoint for paginated audit log retrieval
	AuditEndpoint = "/elections/{" + ElectionURLParam + "}/audit"
)
