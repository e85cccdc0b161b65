package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

type AdminService struct {
	repo ports.AdminRepository
}

func NewAdminService(repo ports.AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

var _ ports.AdminService = (*AdminService)(nil)

// Stats runs the four counts concurrently and fails if any of them fails.
func (s *AdminService) Stats(ctx context.Context, auth domain.AuthContext) (*domain.Stats, error) {
	if err := auth.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}

	var stats domain.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalDonors, err = s.repo.CountDonors(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalPatients, err = s.repo.CountPatients(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRequests, err = s.repo.CountRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalDonations, err = s.repo.CountDonations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.StoreUnavailable("failed to load statistics", err)
	}
	return &stats, nil
}

func (s *AdminService) Donors(ctx context.Context, auth domain.AuthContext) ([]domain.DonorDetail, error) {
	return adminList(ctx, auth, "donors", s.repo.ListDonors)
}

func (s *AdminService) Patients(ctx context.Context, auth domain.AuthContext) ([]domain.PatientDetail, error) {
	return adminList(ctx, auth, "patients", s.repo.ListPatients)
}

func (s *AdminService) Requests(ctx context.Context, auth domain.AuthContext) ([]domain.RequestDetail, error) {
	return adminList(ctx, auth, "blood requests", s.repo.ListRequests)
}

func (s *AdminService) Donations(ctx context.Context, auth domain.AuthContext) ([]domain.DonationDetail, error) {
	return adminList(ctx, auth, "donations", s.repo.ListDonations)
}

func adminList[T any](ctx context.Context, auth domain.AuthContext, what string, load func(context.Context) ([]T, error)) ([]T, error) {
	if err := auth.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	items, err := load(ctx)
	if err != nil {
		return nil, domain.StoreUnavailable("failed to load "+what, err)
	}
	return items, nil
}
