package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/amabee/property-rental/internal/domain"
	"github.com/amabee/property-rental/internal/repository"
	"github.com/amabee/property-rental/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Upload image attached to addHouse/updateHouse.
type Upload struct {
	Filename string
	Body     io.Reader
}

// HouseService house CRUD plus image storage.
// An attached image is written before the row; if the row write fails the
// new file is removed again.
type HouseService struct {
	repo        repository.HousesRepository
	blobs       store.BlobStore
	placeholder string
	logger      *zap.Logger
}

func NewHouseService(repo repository.HousesRepository, blobs store.BlobStore, placeholder string, logger *zap.Logger) *HouseService {
	return &HouseService{repo: repo, blobs: blobs, placeholder: placeholder, logger: logger}
}

// AddHouseRequest addHouse payload
type AddHouseRequest struct {
	HouseNo     string           `json:"house_no"`
	CategoryID  int64            `json:"category_id"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func (r *AddHouseRequest) Validate() error {
	r.HouseNo = strings.TrimSpace(r.HouseNo)
	if r.HouseNo == "" {
		return required("house_no")
	}
	if r.CategoryID <= 0 {
		return required("category_id")
	}
	if r.Price == nil {
		return required("price")
	}
	if r.Price.IsNegative() {
		return invalid("price", "must not be negative")
	}
	return nil
}

// UpdateHouseRequest updateHouse payload. Image keeps a reference that is not
// being replaced by an attachment.
type UpdateHouseRequest struct {
	ID int64 `json:"id"`
	AddHouseRequest
	Image string `json:"image"`
}

func (r *UpdateHouseRequest) Validate() error {
	if r.ID <= 0 {
		return required("id")
	}
	return r.AddHouseRequest.Validate()
}

func (s *HouseService) List(ctx context.Context) ([]domain.House, error) {
	houses, err := s.repo.ListHouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list houses: %w", err)
	}
	return houses, nil
}

func (s *HouseService) Create(ctx context.Context, req AddHouseRequest, img *Upload) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	image, stored, err := s.storeImage(ctx, img, s.placeholder)
	if err != nil {
		return 0, err
	}

	h := &domain.House{
		HouseNo:     req.HouseNo,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Price:       *req.Price,
		Image:       image,
	}
	id, err := s.repo.CreateHouse(ctx, h)
	if err != nil {
		s.discard(ctx, stored)
		return 0, err
	}
	s.logger.Info("House created", zap.Int64("house_id", id), zap.String("house_no", h.HouseNo), zap.String("image", image))
	return id, nil
}

func (s *HouseService) Update(ctx context.Context, req UpdateHouseRequest, img *Upload) error {
	if err := req.Validate(); err != nil {
		return err
	}

	prev, err := s.repo.GetHouse(ctx, req.ID)
	if err != nil {
		return err
	}

	fallback := strings.TrimSpace(req.Image)
	if fallback == "" {
		fallback = s.placeholder
	}
	image, stored, err := s.storeImage(ctx, img, fallback)
	if err != nil {
		return err
	}

	h := &domain.House{
		ID:          req.ID,
		HouseNo:     req.HouseNo,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Price:       *req.Price,
		Image:       image,
	}
	if err := s.repo.UpdateHouse(ctx, h); err != nil {
		s.discard(ctx, stored)
		return err
	}
	if prev.Image != image {
		s.release(ctx, prev.Image)
	}
	return nil
}

func (s *HouseService) Delete(ctx context.Context, req IDRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	prev, err := s.repo.GetHouse(ctx, req.ID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHouse(ctx, req.ID); err != nil {
		return err
	}
	s.release(ctx, prev.Image)
	s.logger.Info("House deleted", zap.Int64("house_id", req.ID))
	return nil
}

// storeImage returns the image reference to persist and, when a file was
// written, its name for compensation.
func (s *HouseService) storeImage(ctx context.Context, img *Upload, fallback string) (image, stored string, err error) {
	if img == nil {
		return fallback, "", nil
	}
	ref, err := s.blobs.Put(ctx, img.Filename, img.Body)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrImageUpload, err)
	}
	return ref, ref, nil
}

func (s *HouseService) discard(ctx context.Context, stored string) {
	if stored == "" {
		return
	}
	if err := s.blobs.Delete(ctx, stored); err != nil {
		s.logger.Error("Failed to remove image after row write failure", zap.String("image", stored), zap.Error(err))
	}
}

// release removes a local image no house references any more.
func (s *HouseService) release(ctx context.Context, image string) {
	if image == "" || domain.IsRemoteImage(image) {
		return
	}
	n, err := s.repo.CountHousesByImage(ctx, image)
	if err != nil {
		s.logger.Warn("Failed to check image references", zap.String("image", image), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}
	if err := s.blobs.Delete(ctx, image); err != nil {
		s.logger.Warn("Failed to remove unreferenced image", zap.String("image", image), zap.Error(err))
	}
}
