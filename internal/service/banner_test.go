package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"promo_watch/internal/domain"
	"promo_watch/internal/service/mocks"
)

type BannerServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	banners *mocks.MockBannerStore
	storage *mocks.MockObjectStorage

	service *BannerService
}

func (s *BannerServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.banners = mocks.NewMockBannerStore(s.ctrl)
	s.storage = mocks.NewMockObjectStorage(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewBannerService(s.banners, s.storage, 24*time.Hour, logger)
}

func (s *BannerServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestBannerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BannerServiceTestSuite))
}

func (s *BannerServiceTestSuite) TestCreate_DefaultsToActive() {
	ctx := context.Background()
	banner := &domain.Banner{Title: "Sale", URLImage: "https://cdn.example.com/s.jpg"}

	s.banners.EXPECT().Insert(ctx, banner).Return(int64(1), nil)

	s.Require().NoError(s.service.Create(ctx, banner))
	s.Equal(domain.BannerActive, banner.Status)
	s.Equal(int64(1), banner.ID)
}

func (s *BannerServiceTestSuite) TestCreate_ValidationFailure() {
	ctx := context.Background()
	banner := &domain.Banner{URLImage: "https://cdn.example.com/s.jpg"}

	err := s.service.Create(ctx, banner)
	s.True(domain.IsValidation(err))
}

func (s *BannerServiceTestSuite) TestCreateFromUpload() {
	ctx := context.Background()
	data := []byte("fake image bytes")

	s.storage.EXPECT().Upload(ctx, data, "image/png").
		Return("https://cdn.example.com/banners/abc.png", "abc.png", nil)
	s.banners.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Banner) (int64, error) {
			s.Equal("Upload banner", b.Title)
			s.Equal("https://cdn.example.com/banners/abc.png", b.URLImage)
			s.Equal(domain.BannerActive, b.Status)
			return 2, nil
		},
	)

	banner, err := s.service.CreateFromUpload(ctx, data, "image/png", "Upload banner", 1)
	s.Require().NoError(err)
	s.Equal(int64(2), banner.ID)
}

func (s *BannerServiceTestSuite) TestCreateFromUpload_MissingTitle() {
	ctx := context.Background()

	_, err := s.service.CreateFromUpload(ctx, []byte("data"), "image/png", "", 1)
	s.True(domain.IsValidation(err))
}

func (s *BannerServiceTestSuite) TestCreateFromUpload_EmptyFile() {
	ctx := context.Background()

	_, err := s.service.CreateFromUpload(ctx, nil, "image/png", "Upload banner", 1)
	s.True(domain.IsValidation(err))
}

func (s *BannerServiceTestSuite) TestCreateFromUpload_WithoutStorageConfigured() {
	// Object storage is optional; a minio-less deployment must get a clear
	// error from the upload path, not a panic.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewBannerService(s.banners, nil, 24*time.Hour, logger)

	_, err := svc.CreateFromUpload(context.Background(), []byte("data"), "image/png", "Upload banner", 1)
	s.ErrorIs(err, domain.ErrStorageDisabled)
}

func (s *BannerServiceTestSuite) TestCreateFromUpload_InsertFailureCleansUpObject() {
	ctx := context.Background()
	data := []byte("fake image bytes")

	s.storage.EXPECT().Upload(ctx, data, "image/png").
		Return("https://cdn.example.com/banners/abc.png", "abc.png", nil)
	s.banners.EXPECT().Insert(ctx, gomock.Any()).Return(int64(0), errors.New("db down"))
	s.storage.EXPECT().Delete(ctx, "abc.png").Return(nil)

	_, err := s.service.CreateFromUpload(ctx, data, "image/png", "Upload banner", 1)
	s.Error(err)
}

func (s *BannerServiceTestSuite) TestDelete_RemovesOwnedImage() {
	ctx := context.Background()
	banner := &domain.Banner{ID: 1, URLImage: "https://cdn.example.com/banners/abc.png"}

	s.banners.EXPECT().GetByID(ctx, int64(1)).Return(banner, nil)
	s.banners.EXPECT().Delete(ctx, int64(1)).Return(nil)
	s.storage.EXPECT().KeyFromURL(banner.URLImage).Return("abc.png", true)
	s.storage.EXPECT().Delete(ctx, "abc.png").Return(nil)

	s.NoError(s.service.Delete(ctx, 1))
}

func (s *BannerServiceTestSuite) TestDelete_ExternalImageKept() {
	ctx := context.Background()
	banner := &domain.Banner{ID: 1, URLImage: "https://news.example.com/crawled.jpg"}

	s.banners.EXPECT().GetByID(ctx, int64(1)).Return(banner, nil)
	s.banners.EXPECT().Delete(ctx, int64(1)).Return(nil)
	s.storage.EXPECT().KeyFromURL(banner.URLImage).Return("", false)

	s.NoError(s.service.Delete(ctx, 1))
}

func (s *BannerServiceTestSuite) TestDelete_ImageCleanupFailureSwallowed() {
	ctx := context.Background()
	banner := &domain.Banner{ID: 1, URLImage: "https://cdn.example.com/banners/abc.png"}

	s.banners.EXPECT().GetByID(ctx, int64(1)).Return(banner, nil)
	s.banners.EXPECT().Delete(ctx, int64(1)).Return(nil)
	s.storage.EXPECT().KeyFromURL(banner.URLImage).Return("abc.png", true)
	s.storage.EXPECT().Delete(ctx, "abc.png").Return(errors.New("storage down"))

	s.NoError(s.service.Delete(ctx, 1))
}

func (s *BannerServiceTestSuite) TestSweepExpired() {
	ctx := context.Background()

	s.banners.EXPECT().ExpireOverdue(ctx, gomock.Any()).Return(int64(3), nil)

	n, err := s.service.SweepExpired(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), n)
}

func (s *BannerServiceTestSuite) TestSweepExpired_NothingToDo() {
	ctx := context.Background()

	s.banners.EXPECT().ExpireOverdue(ctx, gomock.Any()).Return(int64(0), nil)

	n, err := s.service.SweepExpired(ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *BannerServiceTestSuite) TestReactivate_SetsFreshWindow() {
	ctx := context.Background()
	banner := &domain.Banner{ID: 1, Title: "Sale", URLImage: "x", Status: domain.BannerExpired}

	s.banners.EXPECT().GetByID(ctx, int64(1)).Return(banner, nil)
	s.banners.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Banner) error {
			s.Equal(domain.BannerActive, b.Status)
			s.Require().NotNil(b.ScheduledStart)
			s.Require().NotNil(b.ScheduledEnd)
			s.Equal(48*time.Hour, b.ScheduledEnd.Sub(*b.ScheduledStart))
			return nil
		},
	)

	got, err := s.service.Reactivate(ctx, 1, 48*time.Hour)
	s.Require().NoError(err)
	s.Equal(domain.BannerActive, got.Status)
}

func (s *BannerServiceTestSuite) TestReactivate_ZeroDurationTakesDefault() {
	ctx := context.Background()
	banner := &domain.Banner{ID: 1, Title: "Sale", URLImage: "x", Status: domain.BannerExpired}

	s.banners.EXPECT().GetByID(ctx, int64(1)).Return(banner, nil)
	s.banners.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Banner) error {
			s.Equal(24*time.Hour, b.ScheduledEnd.Sub(*b.ScheduledStart))
			return nil
		},
	)

	_, err := s.service.Reactivate(ctx, 1, 0)
	s.NoError(err)
}

func (s *BannerServiceTestSuite) TestReactivate_NegativeDuration() {
	ctx := context.Background()

	_, err := s.service.Reactivate(ctx, 1, -time.Hour)
	s.True(domain.IsValidation(err))
}

func (s *BannerServiceTestSuite) TestListDisplayable() {
	ctx := context.Background()

	s.banners.EXPECT().ListDisplayable(ctx, gomock.Any()).Return([]domain.Banner{{ID: 1}}, nil)

	banners, err := s.service.ListDisplayable(ctx)
	s.Require().NoError(err)
	s.Len(banners, 1)
}
