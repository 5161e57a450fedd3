package handler

import (
	"net/http"

	"github.com/boddenberg/finboard-bfa/internal/domain"
	"github.com/boddenberg/finboard-bfa/internal/form"
	"github.com/boddenberg/finboard-bfa/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Quick transfer (/v1/transfers)
// ============================================================

type amountRequest struct {
	Amount string `json:"amount"`
}

type submitTransferRequest struct {
	RecipientID string `json:"recipientId"`
	Amount      string `json:"amount"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type transferResponse struct {
	Notification domain.Notification `json:"notification"`
	Transfer     *domain.Transfer    `json:"transfer"`
}

func validateAmountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req amountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		_, msg := form.ValidateAmount(req.Amount)
		writeJSON(w, http.StatusOK, validateResponse{Field: "amount", Valid: msg == "", Error: msg})
	}
}

// submitTransferHandler validates the form and returns a confirmation token.
// Nothing is sent until the token is confirmed.
func submitTransferHandler(transfers *service.Transfers, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers")
		defer span.End()

		var req submitTransferRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		conf, n, err := transfers.Prepare(ctx, req.RecipientID, req.Amount)
		if err != nil {
			handleServiceError(w, err, n, logger)
			return
		}
		writeJSON(w, http.StatusOK, conf)
	}
}

func confirmTransferHandler(transfers *service.Transfers, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transfers/confirm")
		defer span.End()

		var req tokenRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		n, transfer, err := transfers.Confirm(ctx, req.Token)
		if err != nil {
			span.RecordError(err)
			handleServiceError(w, err, &n, logger)
			return
		}
		writeJSON(w, http.StatusOK, transferResponse{Notification: n, Transfer: transfer})
	}
}

func cancelTransferHandler(transfers *service.Transfers, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := transfers.Cancel(req.Token); err != nil {
			handleServiceError(w, err, nil, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": domain.TransferCancelled})
	}
}
