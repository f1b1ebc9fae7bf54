package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kushal2060/charity-ledger-go/pkg/donations"
	"github.com/kushal2060/charity-ledger-go/pkg/merkle"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
	"github.com/kushal2060/charity-ledger-go/pkg/types"
)

// donationProofResponse is the body of GET /donations/{id}/proof.
type donationProofResponse struct {
	DonationID      string           `json:"donation_id"`
	CharityID       string           `json:"charity_id"`
	MerkleProof     *merkle.Proof    `json:"merkle_proof"`
	TreeInfo        merkle.TreeInfo  `json:"tree_info"`
	DonationDetails *types.Donation  `json:"donation_details"`
}

// verifyProofResponse is the body of POST /donations/verify.
type verifyProofResponse struct {
	VerificationResult *donations.Result `json:"verification_result"`
	DonationID         string            `json:"donation_id"`
	CharityID          string            `json:"charity_id"`
	Timestamp          time.Time         `json:"timestamp"`
}

// merkleInfoResponse is the body of GET /charities/{id}/merkle-info.
type merkleInfoResponse struct {
	CharityID   string                       `json:"charity_id"`
	CharityName string                       `json:"charity_name"`
	MerkleInfo  *donations.CharityMerkleInfo `json:"merkle_info"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Sugar().Errorw("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, types.ErrorResponse{Error: message})
}

// handleCreateCharity registers a new charity.
func (s *Server) handleCreateCharity(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCharityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := types.ValidateAddress(req.WalletAddress); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := types.ValidateAmount(req.TargetAmount); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid target amount: %v", err))
		return
	}

	charity := &types.Charity{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		WalletAddress: req.WalletAddress,
		TargetAmount:  req.TargetAmount,
		RaisedAmount:  "0",
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.SaveCharity(charity); err != nil {
		s.logger.Sugar().Errorw("Failed to save charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save charity")
		return
	}

	s.logger.Sugar().Infow("Charity created", "charity_id", charity.ID, "name", charity.Name)
	s.writeJSON(w, http.StatusCreated, charity)
}

// handleListCharities lists all charities.
func (s *Server) handleListCharities(w http.ResponseWriter, r *http.Request) {
	charities, err := s.store.ListCharities()
	if err != nil {
		s.logger.Sugar().Errorw("Failed to list charities", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list charities")
		return
	}

	s.writeJSON(w, http.StatusOK, charities)
}

// handleGetCharity returns a single charity by ID.
func (s *Server) handleGetCharity(w http.ResponseWriter, r *http.Request) {
	charity, err := s.store.GetCharity(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load charity")
		return
	}
	if charity == nil {
		s.writeError(w, http.StatusNotFound, "Charity not found")
		return
	}

	s.writeJSON(w, http.StatusOK, charity)
}

// handleUpdateCharityStatus activates or deactivates a charity.
func (s *Server) handleUpdateCharityStatus(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateCharityStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if req.Active == nil {
		s.writeError(w, http.StatusBadRequest, "active is required")
		return
	}

	charity, err := s.store.GetCharity(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load charity")
		return
	}
	if charity == nil {
		s.writeError(w, http.StatusNotFound, "Charity not found")
		return
	}

	charity.Active = *req.Active
	if err := s.store.SaveCharity(charity); err != nil {
		s.logger.Sugar().Errorw("Failed to save charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save charity")
		return
	}

	s.writeJSON(w, http.StatusOK, charity)
}

// handleUpdateOnChainID records the charity's on-chain registry identifier.
func (s *Server) handleUpdateOnChainID(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateOnChainIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if req.OnChainID == "" {
		s.writeError(w, http.StatusBadRequest, "on_chain_id is required")
		return
	}

	charity, err := s.store.GetCharity(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load charity")
		return
	}
	if charity == nil {
		s.writeError(w, http.StatusNotFound, "Charity not found")
		return
	}

	charity.OnChainID = req.OnChainID
	if err := s.store.SaveCharity(charity); err != nil {
		s.logger.Sugar().Errorw("Failed to save charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save charity")
		return
	}

	s.writeJSON(w, http.StatusOK, charity)
}

// handleRecordDonation records a new confirmed donation.
func (s *Server) handleRecordDonation(w http.ResponseWriter, r *http.Request) {
	var req types.RecordDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	if req.CharityID == "" {
		s.writeError(w, http.StatusBadRequest, "charity_id is required")
		return
	}
	if err := types.ValidateAddress(req.DonorAddress); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid donor address: %v", err))
		return
	}
	if err := types.ValidateAmount(req.Amount); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid amount: %v", err))
		return
	}
	if err := types.ValidateTxHash(req.TxHash); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid tx hash: %v", err))
		return
	}

	charity, err := s.store.GetCharity(req.CharityID)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load charity")
		return
	}
	if charity == nil {
		s.writeError(w, http.StatusBadRequest, "Charity not found")
		return
	}

	// Reject duplicate submissions of the same on-chain transaction
	existing, err := s.store.GetDonationByTxHash(req.TxHash)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to check tx hash", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to check tx hash")
		return
	}
	if existing != nil {
		s.writeError(w, http.StatusBadRequest, "Donation with this transaction hash already exists")
		return
	}

	// Whole seconds: the canonical leaf string embeds the Unix timestamp
	now := time.Now().UTC().Truncate(time.Second)
	donation := &types.Donation{
		ID:           uuid.NewString(),
		CharityID:    req.CharityID,
		DonorAddress: req.DonorAddress,
		Amount:       req.Amount,
		TxHash:       req.TxHash,
		Confirmed:    true,
		CreatedAt:    now,
		ConfirmedAt:  &now,
	}

	if err := s.store.SaveDonation(donation); err != nil {
		s.logger.Sugar().Errorw("Failed to save donation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save donation")
		return
	}

	raised, err := types.AddAmounts(charity.RaisedAmount, donation.Amount)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to update raised amount", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to update raised amount")
		return
	}
	charity.RaisedAmount = raised
	if err := s.store.SaveCharity(charity); err != nil {
		s.logger.Sugar().Errorw("Failed to save charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to save charity")
		return
	}

	s.logger.Sugar().Infow("Donation recorded",
		"donation_id", donation.ID, "charity_id", donation.CharityID, "tx_hash", donation.TxHash)
	s.writeJSON(w, http.StatusCreated, donation)
}

// handleListDonations lists donations, optionally filtered by charity_id
// and donor_address query parameters.
func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	filter := &persistence.DonationFilter{
		CharityID:    r.URL.Query().Get("charity_id"),
		DonorAddress: r.URL.Query().Get("donor_address"),
	}

	result, err := s.store.ListDonations(filter)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to list donations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list donations")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleGetDonation returns a single donation by ID.
func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	donation, err := s.store.GetDonation(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load donation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load donation")
		return
	}
	if donation == nil {
		s.writeError(w, http.StatusNotFound, "Donation not found")
		return
	}

	s.writeJSON(w, http.StatusOK, donation)
}

// handleDonationProof generates a merkle inclusion proof for a donation
// against its charity's current confirmed donation tree.
func (s *Server) handleDonationProof(w http.ResponseWriter, r *http.Request) {
	donation, err := s.store.GetDonation(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load donation", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load donation")
		return
	}
	if donation == nil || !donation.Confirmed {
		s.writeError(w, http.StatusNotFound, "Donation not found")
		return
	}

	tree, err := donations.BuildCharityTree(s.store, donation.CharityID)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to build charity tree", "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate proof: %v", err))
		return
	}
	if tree == nil {
		s.writeError(w, http.StatusNotFound, "No confirmed donations found for this charity")
		return
	}

	proof, found, err := tree.GenerateProof(donation.ID)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to generate proof", "donation_id", donation.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate proof: %v", err))
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "Donation not found in merkle tree")
		return
	}

	s.writeJSON(w, http.StatusOK, donationProofResponse{
		DonationID:      donation.ID,
		CharityID:       donation.CharityID,
		MerkleProof:     proof,
		TreeInfo:        tree.Info(),
		DonationDetails: donation,
	})
}

// handleVerifyProof verifies an externally supplied inclusion proof against
// a charity's current confirmed donation set.
func (s *Server) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	if req.DonationID == "" || req.CharityID == "" || req.MerkleProof == nil {
		s.writeError(w, http.StatusBadRequest, "Missing required fields: donation_id, charity_id, merkle_proof")
		return
	}

	proof, err := donations.ProofFromPayload(req.MerkleProof)
	if err != nil {
		if errors.Is(err, merkle.ErrMalformedProof) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := donations.VerifyInclusion(s.store, req.CharityID, proof)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to verify proof", "charity_id", req.CharityID, "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Verification failed: %v", err))
		return
	}

	s.logger.Sugar().Infow("Proof verified",
		"donation_id", req.DonationID, "charity_id", req.CharityID,
		"verified", result.Verified, "proof_valid", result.ProofValid, "root_matches", result.RootMatches)

	s.writeJSON(w, http.StatusOK, verifyProofResponse{
		VerificationResult: result,
		DonationID:         req.DonationID,
		CharityID:          req.CharityID,
		Timestamp:          time.Now().UTC(),
	})
}

// handleCharityMerkleInfo returns the charity's current merkle commitment
// summary.
func (s *Server) handleCharityMerkleInfo(w http.ResponseWriter, r *http.Request) {
	charity, err := s.store.GetCharity(r.PathValue("id"))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load charity", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load charity")
		return
	}
	if charity == nil {
		s.writeError(w, http.StatusNotFound, "Charity not found")
		return
	}

	info, err := donations.MerkleInfo(s.store, charity.ID)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to build merkle info", "charity_id", charity.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get merkle info: %v", err))
		return
	}

	s.writeJSON(w, http.StatusOK, merkleInfoResponse{
		CharityID:   charity.ID,
		CharityName: charity.Name,
		MerkleInfo:  info,
	})
}

// handleHealth reports store health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
