package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
	"github.com/google/uuid"
)

// LifecycleManager owns the Pending -> Approved transition of blood requests.
type LifecycleManager struct {
	profiles ports.ProfileRepository
	tx       ports.TxRunner
	metrics  ports.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewLifecycleManager(
	profiles ports.ProfileRepository,
	tx ports.TxRunner,
	metrics ports.Metrics,
	logger *slog.Logger,
) *LifecycleManager {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleManager{
		profiles: profiles,
		tx:       tx,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Approve records that the calling donor will fulfil requestID. The donation
// insert, the status change and the outbox event commit together or not at all.
func (s *LifecycleManager) Approve(ctx context.Context, auth domain.AuthContext, requestID int64) (*domain.Donation, error) {
	if err := auth.Require(domain.RoleDonor); err != nil {
		return nil, err
	}

	donation, err := s.approve(ctx, auth.UserID, requestID)
	if err != nil {
		s.metrics.IncApproval(string(domain.KindOf(err)))
		s.logger.WarnContext(ctx, "approval rejected",
			"request_id", requestID,
			"user_id", auth.UserID,
			"error", err,
		)
		return nil, err
	}

	s.metrics.IncApproval("approved")
	s.logger.InfoContext(ctx, "blood request approved",
		"request_id", requestID,
		"donation_id", donation.ID,
		"donor_id", donation.DonorID,
	)
	return donation, nil
}

func (s *LifecycleManager) approve(ctx context.Context, userID, requestID int64) (*domain.Donation, error) {
	donor, err := s.profiles.GetDonorByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewError(domain.KindNotFound, "donor profile not found", err)
		}
		return nil, domain.StoreUnavailable("failed to load donor profile", err)
	}

	var created *domain.Donation
	err = s.tx.RunInTx(ctx, func(tx ports.LifecycleTx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewError(domain.KindNotFound, fmt.Sprintf("blood request %d not found", requestID), err)
			}
			return domain.StoreUnavailable("failed to load blood request", err)
		}
		if !req.CanApprove() {
			return domain.NewError(domain.KindInvalidState,
				fmt.Sprintf("blood request %d is %s", requestID, req.Status), nil)
		}

		now := s.now().UTC()
		created, err = tx.CreateDonation(ctx, domain.Donation{
			DonorID:   donor.ID,
			PatientID: req.PatientID,
			RequestID: req.ID,
			Status:    domain.DonationApproved,
			DonatedAt: now,
		})
		if err != nil {
			// A unique violation on donations.request_id means another
			// approval committed first.
			if errors.Is(err, domain.ErrConflict) {
				return domain.NewError(domain.KindInvalidState,
					fmt.Sprintf("blood request %d already has a donation", requestID), err)
			}
			return domain.StoreUnavailable("failed to create donation", err)
		}

		if err := tx.SetRequestStatus(ctx, req.ID, domain.RequestPending, domain.RequestApproved); err != nil {
			if errors.Is(err, domain.ErrStaleState) {
				return domain.NewError(domain.KindInvalidState,
					fmt.Sprintf("blood request %d is no longer pending", requestID), err)
			}
			return domain.StoreUnavailable("failed to update blood request", err)
		}

		eventID := uuid.NewString()
		payload, err := json.Marshal(domain.DonationApprovedEvent{
			EventID:    eventID,
			DonationID: created.ID,
			RequestID:  created.RequestID,
			DonorID:    created.DonorID,
			PatientID:  created.PatientID,
			ApprovedAt: now,
		})
		if err != nil {
			return domain.StoreUnavailable("failed to encode donation event", err)
		}
		if err := tx.EnqueueEvent(ctx, eventID, domain.EventDonationApproved, payload); err != nil {
			return domain.StoreUnavailable("failed to enqueue donation event", err)
		}
		return nil
	})
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.StoreUnavailable("approval transaction failed", err)
	}
	return created, nil
}
