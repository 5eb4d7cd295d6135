package service

import (
	"context"
	"errors"
	"strings"

	"github.com/automarket/automarket-backend/internal/app/model"
	"github.com/automarket/automarket-backend/internal/app/repository"
	"github.com/automarket/automarket-backend/pkg/logger"
	"github.com/automarket/automarket-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBusinessOnly    = errors.New("business accounts only")
)

type ProfileInput struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Region   string `json:"region"`
	City     string `json:"city"`
}

type BusinessProfileInput struct {
	LegalName      string `json:"legal_name"`
	CommercialName string `json:"commercial_name"`
	RUT            string `json:"rut"`
	Region         string `json:"region"`
	City           string `json:"city"`
	Address        string `json:"address"`
	CorporateEmail string `json:"corporate_email"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*model.Profile, error)
	GetBusinessProfile(ctx context.Context, userID uint) (*model.BusinessProfile, error)
	UpdateBusinessProfile(ctx context.Context, userID uint, in BusinessProfileInput) (*model.BusinessProfile, error)
	GetSellerProfile(ctx context.Context, userID uint) (*model.SellerProfile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	profile, err := s.profileRepo.FindProfile(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*model.Profile, error) {
	profile := &model.Profile{
		UserID:   userID,
		FullName: strings.TrimSpace(in.FullName),
		Username: strings.TrimSpace(in.Username),
		Phone:    strings.TrimSpace(in.Phone),
		Region:   strings.TrimSpace(in.Region),
		City:     strings.TrimSpace(in.City),
	}

	v := validator{}
	v.require("full_name", profile.FullName)
	v.require("username", profile.Username)
	v.require("phone", profile.Phone)
	v.check(util.IsValidChilePhone(profile.Phone), "phone", "phone must start with +56")
	v.require("region", profile.Region)
	v.require("city", profile.City)
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return profile, nil
}

func (s *profileService) requireBusiness(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsBusiness() {
		logger.Warn("Business profile access by personal account", map[string]interface{}{
			"user_id": userID,
		})
		return ErrBusinessOnly
	}
	return nil
}

func (s *profileService) GetBusinessProfile(ctx context.Context, userID uint) (*model.BusinessProfile, error) {
	if err := s.requireBusiness(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindBusinessProfile(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

func (s *profileService) UpdateBusinessProfile(ctx context.Context, userID uint, in BusinessProfileInput) (*model.BusinessProfile, error) {
	if err := s.requireBusiness(ctx, userID); err != nil {
		return nil, err
	}

	profile := &model.BusinessProfile{
		UserID:         userID,
		LegalName:      strings.TrimSpace(in.LegalName),
		CommercialName: strings.TrimSpace(in.CommercialName),
		RUT:            strings.TrimSpace(in.RUT),
		Region:         strings.TrimSpace(in.Region),
		City:           strings.TrimSpace(in.City),
		Address:        strings.TrimSpace(in.Address),
		CorporateEmail: strings.TrimSpace(in.CorporateEmail),
		Phone:          strings.TrimSpace(in.Phone),
		Website:        strings.TrimSpace(in.Website),
	}

	v := validator{}
	v.require("legal_name", profile.LegalName)
	v.require("commercial_name", profile.CommercialName)
	v.require("rut", profile.RUT)
	v.require("region", profile.Region)
	v.require("city", profile.City)
	v.require("address", profile.Address)
	v.require("corporate_email", profile.CorporateEmail)
	v.check(util.IsValidEmail(profile.CorporateEmail), "corporate_email", "corporate_email is invalid")
	v.require("phone", profile.Phone)
	v.check(util.IsValidChilePhone(profile.Phone), "phone", "phone must start with +56")
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpsertBusinessProfile(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("Business profile updated", map[string]interface{}{
		"user_id": userID,
	})
	return profile, nil
}

// GetSellerProfile returns the contact card shown next to a listing: the
// business profile for business accounts, the personal profile otherwise.
// It returns nil without error when the seller has not filled one in.
func (s *profileService) GetSellerProfile(ctx context.Context, userID uint) (*model.SellerProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if user.IsBusiness() {
		bp, err := s.profileRepo.FindBusinessProfile(ctx, userID)
		if err == nil {
			return &model.SellerProfile{
				FullName: bp.CommercialName,
				Phone:    bp.Phone,
				Region:   bp.Region,
				City:     bp.City,
			}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	p, err := s.profileRepo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.SellerProfile{
		FullName: p.FullName,
		Username: p.Username,
		Phone:    p.Phone,
		Region:   p.Region,
		City:     p.City,
	}, nil
}
