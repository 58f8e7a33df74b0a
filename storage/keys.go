package storage

// Key prefixes, one per entity kind, following the teacher's
// prefix-per-entity-kind convention (storage/keys.go's metadataKey/
// censusKey/processKey helpers, generalized to one helper per kind here).
const (
	electionPrefix      = "el/"
	electionKeysPrefix  = "ek/" // private Paillier key material, never read back by API callers
	trusteePrefix       = "tr/"
	trusteeEmailPrefix  = "tre/" // email -> trustee id, for the register_trustee uniqueness check
	trusteeIndexCounter = "trix/"
	sharePrefix         = "sh/"
	ballotPrefix        = "ba/"
	ballotNoncePrefix   = "ban/" // (election, nonce) -> ballot id, for submit_ballot idempotence
	sessionPrefix       = "se/"
	partialPrefix       = "pa/"
	resultPrefix        = "re/"
	proofPrefix         = "vp/"
	auditPrefix         = "au/"
	auditSeqCounter     = "aus/"
	idempotencyPrefix   = "id/"
)

func electionKey(id string) []byte     { return append([]byte(electionPrefix), id...) }
func electionKeysKey(id string) []byte { return append([]byte(electionKeysPrefix), id...) }
func trusteeKey(id string) []byte      { return append([]byte(trusteePrefix), id...) }
func trusteeEmailKey(email string) []byte {
	return append([]byte(trusteeEmailPrefix), email...)
}
func shareKey(electionID, trusteeID string) []byte {
	return append([]byte(sharePrefix), []byte(electionID+"/"+trusteeID)...)
}
func sharePrefixForElection(electionID string) []byte {
	return append([]byte(sharePrefix), []byte(electionID+"/")...)
}
func ballotKey(electionID, ballotID string) []byte {
	return []byte(ballotPrefix + electionID + "/" + ballotID)
}
func ballotNonceKey(electionID, nonce string) []byte {
	return append([]byte(ballotNoncePrefix), []byte(electionID+"/"+nonce)...)
}
func ballotPrefixForElection(electionID string) []byte {
	return []byte(ballotPrefix + electionID + "/")
}
func sessionKey(electionID string) []byte { return append([]byte(sessionPrefix), electionID...) }
func partialKey(electionID, trusteeID string) []byte {
	return append([]byte(partialPrefix), []byte(electionID+"/"+trusteeID)...)
}
func partialPrefixForElection(electionID string) []byte {
	return append([]byte(partialPrefix), []byte(electionID+"/")...)
}
func resultKey(electionID string) []byte { return append([]byte(resultPrefix), electionID...) }
func proofKey(electionID, id string) []byte {
	return append([]byte(proofPrefix), []byte(electionID+"/"+id)...)
}
func proofPrefixForElection(electionID string) []byte {
	return append([]byte(proofPrefix), []byte(electionID+"/")...)
}
func auditKey(electionID string, seq uint64) []byte {
	return []byte(auditPrefix + electionID + "/" + formatSeq(seq))
}
func auditPrefixForElection(electionID string) []byte {
	return append([]byte(auditPrefix), []byte(electionID+"/")...)
}
func idempotencyKey(key string) []byte { return append([]byte(idempotencyPrefix), key...) }

// formatSeq zero-pads seq to a fixed width so lexicographic byte order
// matches numeric order, making audit pagination a plain prefix scan
// (SPEC_FULL.md §4.H).
func formatSeq(seq uint64) string {
	const digits = "0123456789"
	buf := make([]byte, 20)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = digits[seq%10]
		seq /= 10
	}
	return string(buf)
}
