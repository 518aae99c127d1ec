package service

import (
	"context"
	"testing"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTourFixtures() (*MockTourRepository, *MockUserRepository, TourService) {
	tours := new(MockTourRepository)
	users := new(MockUserRepository)
	return tours, users, NewTourService(tours, users)
}

func TestCreateTour_WithinQuota(t *testing.T) {
	tours, users, svc := newTourFixtures()
	ctx := context.Background()

	users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1", TourLimit: 4, CurrentTourCount: 3}, nil)
	tours.On("CreateWithQuota", ctx, mock.MatchedBy(func(tr *domain.Tour) bool {
		return tr.HostID == "host-1" && tr.Status == domain.TourStatusPublished
	})).Return(nil)

	tour, err := svc.CreateTour(ctx, "user-1", &domain.CreateTourRequest{
		Title:        "Lisbon Food Walk",
		Destination:  "Lisbon",
		Price:        49,
		MaxGroupSize: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "host-1", tour.HostID)
}

func TestCreateTour_QuotaExceeded(t *testing.T) {
	tours, users, svc := newTourFixtures()
	ctx := context.Background()

	users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1", TourLimit: 4, CurrentTourCount: 4}, nil)
	tours.On("CreateWithQuota", ctx, mock.Anything).Return(common.ErrTourLimitReached)

	_, err := svc.CreateTour(ctx, "user-1", &domain.CreateTourRequest{
		Title:        "One Too Many",
		Destination:  "Porto",
		Price:        30,
		MaxGroupSize: 6,
	})
	assert.ErrorIs(t, err, common.ErrTourLimitReached)
}

func TestUpdateTour_CannotShrinkBelowConfirmedSeats(t *testing.T) {
	tours, users, svc := newTourFixtures()
	ctx := context.Background()

	tours.On("FindByID", ctx, "tour-1").Return(&domain.Tour{
		ID:               "tour-1",
		HostID:           "host-1",
		MaxGroupSize:     10,
		CurrentGroupSize: 7,
	}, nil)
	users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1"}, nil)

	five := 5
	_, err := svc.UpdateTour(ctx, "tour-1", "user-1", &domain.UpdateTourRequest{MaxGroupSize: &five})
	assert.ErrorIs(t, err, common.ErrCapacityExceeded)
	tours.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateTour_ForeignHostRejected(t *testing.T) {
	tours, users, svc := newTourFixtures()
	ctx := context.Background()

	tours.On("FindByID", ctx, "tour-1").Return(&domain.Tour{ID: "tour-1", HostID: "host-1"}, nil)
	users.On("FindHostByUserID", ctx, "user-2").Return(&domain.Host{ID: "host-2"}, nil)

	title := "Hijacked"
	_, err := svc.UpdateTour(ctx, "tour-1", "user-2", &domain.UpdateTourRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDeleteTour_ReleasesQuota(t *testing.T) {
	tours, users, svc := newTourFixtures()
	ctx := context.Background()

	tour := &domain.Tour{ID: "tour-1", HostID: "host-1"}
	tours.On("FindByID", ctx, "tour-1").Return(tour, nil)
	users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1"}, nil)
	tours.On("DeleteWithQuota", ctx, tour).Return(nil)

	err := svc.DeleteTour(ctx, "tour-1", "user-1", domain.UserRoleHost)
	require.NoError(t, err)
	tours.AssertExpectations(t)
}
