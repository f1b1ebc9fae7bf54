package types

// Request and response payloads for the HTTP API.

// CreateCharityRequest registers a new charity.
type CreateCharityRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	WalletAddress string `json:"wallet_address"`
	TargetAmount  string `json:"target_amount"`
}

// UpdateCharityStatusRequest activates or deactivates a charity.
// Active is a pointer so a missing field can be told apart from false.
type UpdateCharityStatusRequest struct {
	Active *bool `json:"active"`
}

// UpdateOnChainIDRequest records the charity's on-chain registry identifier.
type UpdateOnChainIDRequest struct {
	OnChainID string `json:"on_chain_id"`
}

// RecordDonationRequest records a confirmed donation.
type RecordDonationRequest struct {
	CharityID    string `json:"charity_id"`
	DonorAddress string `json:"donor_address"`
	Amount       string `json:"amount"`
	TxHash       string `json:"tx_hash"`
}

// ProofPayload is the externally supplied inclusion proof as it arrives on
// the wire. Index is a pointer so a missing field can be told apart from
// index 0 before the payload is converted into a proof.
type ProofPayload struct {
	Proof []string `json:"proof"`
	Leaf  string   `json:"leaf"`
	Root  string   `json:"root"`
	Index *int     `json:"index"`
}

// VerifyProofRequest asks for end-to-end verification of a donation
// inclusion proof against a charity's current confirmed donation set.
type VerifyProofRequest struct {
	DonationID  string        `json:"donation_id"`
	CharityID   string        `json:"charity_id"`
	MerkleProof *ProofPayload `json:"merkle_proof"`
}

// ErrorResponse is the uniform error body for the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
