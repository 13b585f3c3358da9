package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/newhope/newhope-admin/internal/docstore"
	"github.com/newhope/newhope-admin/internal/shared"
)

// Service loads and saves the general settings document.
type Service struct {
	store     docstore.Store
	validator *validator.Validate
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, validator: shared.NewValidator(), logger: logger}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	doc, err := s.store.Get(ctx, docstore.Settings, DocumentID)
	if errors.Is(err, docstore.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings: get: %w", err)
	}
	stored, err := docstore.Decode[Settings](doc, nil)
	if err != nil {
		s.logger.Warn("settings document malformed, using defaults", slog.Any("error", err))
		return Defaults(), nil
	}
	return stored.withDefaults(), nil
}

// Save validates and overwrites the settings document.
func (s *Service) Save(ctx context.Context, in Settings) error {
	in = in.withDefaults().trimmed()
	if errs := s.Validate(in); len(errs) > 0 {
		return errs
	}
	if err := s.store.Put(ctx, docstore.Settings, DocumentID, in); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

// Validate checks HH:MM hours with close after open, the contact email and
// social links.
func (s *Service) Validate(in Settings) shared.ValidationErrors {
	errs := shared.ValidationErrors{}
	for _, day := range Weekdays {
		h := in.BusinessHours[day]
		if h.Closed {
			continue
		}
		openOK := s.validator.Var(h.Open, "required,datetime=15:04") == nil
		closeOK := s.validator.Var(h.Close, "required,datetime=15:04") == nil
		if !openOK {
			errs.Add("businessHours."+day+".open", "giờ mở cửa phải có dạng HH:MM")
		}
		if !closeOK {
			errs.Add("businessHours."+day+".close", "giờ đóng cửa phải có dạng HH:MM")
		}
		// zero padded HH:MM compares correctly as text
		if openOK && closeOK && h.Close <= h.Open {
			errs.Add("businessHours."+day+".close", "giờ đóng cửa phải sau giờ mở cửa")
		}
	}
	if in.ContactInfo.Email != "" && s.validator.Var(in.ContactInfo.Email, "email") != nil {
		errs.Add("contactInfo.email", "email không hợp lệ")
	}
	if in.ContactInfo.Phone != "" && s.validator.Var(in.ContactInfo.Phone, "numeric,min=9,max=12") != nil {
		errs.Add("contactInfo.phone", "số điện thoại không hợp lệ")
	}
	links := map[string]string{
		"socialMedia.facebook":  in.SocialMedia.Facebook,
		"socialMedia.instagram": in.SocialMedia.Instagram,
		"socialMedia.twitter":   in.SocialMedia.Twitter,
	}
	for field, link := range links {
		if link != "" && s.validator.Var(link, "url") != nil {
			errs.Add(field, "đường dẫn không hợp lệ")
		}
	}
	return errs
}
