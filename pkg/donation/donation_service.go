package donation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"
	"FoodShare-Backend/internal/utils/storage"
	"FoodShare-Backend/pkg/geo"
	"FoodShare-Backend/pkg/geocoder"
	"FoodShare-Backend/pkg/matching"
	"FoodShare-Backend/pkg/notification"
	"FoodShare-Backend/pkg/user"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Config struct {
	ListDefaultLimit  int
	ListDefaultRadius float64
	MaxCandidates     int
	Now               func() time.Time
}

var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"expiryDate":  "expiry_date",
	"pickupStart": "pickup_start",
	"quantity":    "quantity_amount",
}

type (
	DonationService interface {
		CreateDonation(ctx context.Context, donorID string, req domain.CreateDonationRequest) (*domain.DonationResponse, error)
		GetDonation(ctx context.Context, id string) (*domain.DonationResponse, error)
		ListDonations(ctx context.Context, filter domain.ListDonationsFilter) (*domain.DonationList, error)
		UpdateDonation(ctx context.Context, donorID string, id string, req domain.UpdateDonationRequest) (*domain.DonationResponse, error)
		DeleteDonation(ctx context.Context, actor domain.Actor, id string) error

		ClaimDonation(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error)
		MarkPickedUp(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error)
		MarkCompleted(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error)
		CancelDonation(ctx context.Context, actor domain.Actor, id string) error

		ListDonorDonations(ctx context.Context, donorID string, filter domain.ListDonationsFilter) (*domain.DonationList, error)
		ListClaimedDonations(ctx context.Context, recipientID string, filter domain.ListDonationsFilter) (*domain.DonationList, error)
		DonationHistory(ctx context.Context, id string) ([]domain.DonationEventResponse, error)
	}

	donationService struct {
		donationRepository DonationRepository
		userRepository     user.UserRepository
		coordinator        *ClaimCoordinator
		matching           matching.MatchingService
		geocoder           geocoder.Resolver
		s3                 storage.AwsS3
		notifier           notification.Notifier
		hub                notification.Broadcaster
		cfg                Config
	}
)

func NewDonationService(
	donationRepository DonationRepository,
	userRepository user.UserRepository,
	coordinator *ClaimCoordinator,
	matchingService matching.MatchingService,
	resolver geocoder.Resolver,
	s3 storage.AwsS3,
	notifier notification.Notifier,
	hub notification.Broadcaster,
	cfg Config,
) DonationService {
	if cfg.ListDefaultLimit <= 0 {
		cfg.ListDefaultLimit = 10
	}
	if cfg.ListDefaultRadius <= 0 {
		cfg.ListDefaultRadius = geo.DefaultRadiusMiles
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = matching.DefaultMaxCandidates
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if notifier == nil {
		notifier = notification.Discard{}
	}
	if hub == nil {
		hub = notification.Discard{}
	}
	return &donationService{
		donationRepository: donationRepository,
		userRepository:     userRepository,
		coordinator:        coordinator,
		matching:           matchingService,
		geocoder:           resolver,
		s3:                 s3,
		notifier:           notifier,
		hub:                hub,
		cfg:                cfg,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, donorID string, req domain.CreateDonationRequest) (*domain.DonationResponse, error) {
	donorUUID, err := uuid.Parse(donorID)
	if err != nil {
		return nil, domain.NewForbidden("invalid donor identity")
	}
	donor, err := s.userRepository.GetUserByID(ctx, donorUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFound("donor")
		}
		return nil, fmt.Errorf("get donor %s: %w", donorUUID, err)
	}
	if !donor.IsActive {
		return nil, domain.NewForbidden("account is deactivated")
	}

	now := s.cfg.Now()
	d := &entities.Donation{
		ID:                  uuid.New(),
		DonorID:             donor.ID,
		Title:               strings.TrimSpace(req.Title),
		Description:         strings.TrimSpace(req.Description),
		FoodType:            req.FoodType,
		Status:              entities.StatusAvailable,
		QuantityAmount:      req.Quantity.Amount,
		QuantityUnit:        req.Quantity.Unit,
		Allergens:           normalizeSet(req.Allergens, true),
		Tags:                normalizeSet(req.Tags, false),
		PreparationDate:     req.PreparationDate.UTC(),
		ExpiryDate:          req.ExpiryDate.UTC(),
		PickupStart:         req.PickupWindow.StartTime.UTC(),
		PickupEnd:           req.PickupWindow.EndTime.UTC(),
		IsUrgent:            req.IsUrgent,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		Timestamp:           entities.Timestamp{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.applyLocation(ctx, d, req.Location); err != nil {
		return nil, err
	}
	if err := ValidateDonation(d); err != nil {
		return nil, err
	}

	if req.FoodImage != nil {
		url, err := s.uploadImage(d.ID, req.FoodImage)
		if err != nil {
			return nil, err
		}
		if url != "" {
			d.ImageURLs = []string{url}
		}
	}

	if err := s.donationRepository.CreateDonation(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	d.Donor = donor
	s.coordinator.record(ctx, d.ID, Transition{Event: "create", To: entities.StatusAvailable}, domain.Actor{UserID: donorID})

	res := toDonationResponse(d, now, nil)
	s.hub.Broadcast(notification.EventNewDonation, res)
	s.notifyNearbyRecipients(ctx, d)
	return res, nil
}

// notifyNearbyRecipients tells matching recipients about a new donation.
// Failures are logged only.
func (s *donationService) notifyNearbyRecipients(ctx context.Context, d *entities.Donation) {
	matches, err := s.matching.RecipientsForDonation(ctx, d)
	if err != nil {
		log.Errorw("failed to match recipients", "donation_id", d.ID, "error", err)
		return
	}

	donorName := "A donor"
	if d.Donor != nil {
		donorName = d.Donor.FullName()
		if d.Donor.Organization != "" {
			donorName = d.Donor.Organization
		}
	}
	for _, m := range matches {
		msg := notification.Message{
			DonationID: &d.ID,
			Subject:    "New food donation available: " + d.Title,
			Body: fmt.Sprintf("%s posted %g %s of %s food (%s) %.1f miles from you. Pickup between %s and %s.",
				donorName, d.QuantityAmount, d.QuantityUnit, d.FoodType, d.Title, m.Distance,
				d.PickupStart.Format(time.RFC1123), d.PickupEnd.Format(time.RFC1123)),
			Urgent: d.IsUrgent,
		}
		s.notifier.Notify(notification.EventNewDonation, []notification.Target{notification.TargetFor(m.Item)}, msg)
	}
	log.Infow("new donation matched recipients", "donation_id", d.ID, "recipients", len(matches))
}

func (s *donationService) applyLocation(ctx context.Context, d *entities.Donation, loc domain.LocationRequest) error {
	d.Street = strings.TrimSpace(loc.Address.Street)
	d.City = strings.TrimSpace(loc.Address.City)
	d.State = strings.TrimSpace(loc.Address.State)
	d.ZipCode = strings.TrimSpace(loc.Address.ZipCode)
	d.Country = strings.TrimSpace(loc.Address.Country)
	if d.Country == "" {
		d.Country = "USA"
	}
	d.Instructions = strings.TrimSpace(loc.Instructions)

	if len(loc.Coordinates) == 2 {
		d.Longitude, d.Latitude = loc.Coordinates[0], loc.Coordinates[1]
		return nil
	}
	if len(loc.Coordinates) != 0 {
		return domain.NewValidationError(domain.FieldError{Field: "location.coordinates", Message: "must be [longitude, latitude]"})
	}

	res, err := s.geocoder.Resolve(ctx, geocoder.FormatAddress(d.Street, d.City, d.State, d.ZipCode))
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResults) || errors.Is(err, geocoder.ErrNoAddress) {
			return domain.NewValidationError(domain.FieldError{Field: "location.address", Message: "could not be resolved to a location"})
		}
		return fmt.Errorf("geocode donation address: %w", err)
	}
	d.Latitude, d.Longitude = res.Latitude, res.Longitude
	return nil
}

func (s *donationService) uploadImage(id uuid.UUID, file *multipart.FileHeader) (string, error) {
	objectKey, err := s.s3.UploadFile(id.String(), file, "donations", storage.AllowImage...)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrFileTypeInvalid):
			return "", domain.NewValidationError(domain.FieldError{Field: "food_image", Message: err.Error()})
		case errors.Is(err, storage.ErrNotConfigured):
			log.Warnw("image upload skipped, storage not configured", "donation_id", id)
			return "", nil
		}
		return "", fmt.Errorf("upload donation image: %w", err)
	}
	return s.s3.GetPublicLinkKey(objectKey), nil
}

func (s *donationService) GetDonation(ctx context.Context, id string) (*domain.DonationResponse, error) {
	d, err := s.coordinator.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.coordinator.ExpireIfDue(ctx, d)
	return toDonationResponse(d, s.cfg.Now(), nil), nil
}

func (s *donationService) ListDonations(ctx context.Context, filter domain.ListDonationsFilter) (*domain.DonationList, error) {
	return s.list(ctx, filter, "")
}

func (s *donationService) ListDonorDonations(ctx context.Context, donorID string, filter domain.ListDonationsFilter) (*domain.DonationList, error) {
	filter.DonorID = donorID
	filter.RecipientID = ""
	return s.list(ctx, filter, "")
}

func (s *donationService) ListClaimedDonations(ctx context.Context, recipientID string, filter domain.ListDonationsFilter) (*domain.DonationList, error) {
	filter.RecipientID = recipientID
	filter.DonorID = ""
	return s.list(ctx, filter, "claimed_at DESC")
}

func (s *donationService) list(ctx context.Context, filter domain.ListDonationsFilter, defaultOrder string) (*domain.DonationList, error) {
	now := s.cfg.Now()
	page := max(filter.Page, 1)
	limit := filter.Limit
	if limit <= 0 {
		limit = s.cfg.ListDefaultLimit
	}

	q := ListQuery{
		Status:   entities.DonationStatus(filter.Status),
		FoodType: filter.FoodType,
		IsUrgent: filter.IsUrgent,
		Now:      now,
	}
	if filter.DonorID != "" {
		id, err := uuid.Parse(filter.DonorID)
		if err != nil {
			return nil, domain.NewNotFound("donor")
		}
		q.DonorID = &id
	}
	if filter.RecipientID != "" {
		id, err := uuid.Parse(filter.RecipientID)
		if err != nil {
			return nil, domain.NewNotFound("recipient")
		}
		q.RecipientID = &id
	}

	if (filter.Latitude == nil) != (filter.Longitude == nil) {
		return nil, domain.NewValidationError(domain.FieldError{Field: "latitude", Message: "latitude and longitude must be given together"})
	}
	if filter.Latitude != nil {
		return s.listNearby(ctx, filter, q, page, limit)
	}

	q.OrderBy = orderClause(filter.SortBy, filter.SortOrder, defaultOrder)
	q.Offset = domain.PageOffset(page, limit)
	q.Limit = limit
	donations, total, err := s.donationRepository.ListDonations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}

	items := make([]*domain.DonationResponse, 0, len(donations))
	for _, d := range donations {
		s.coordinator.ExpireIfDue(ctx, d)
		items = append(items, toDonationResponse(d, now, nil))
	}
	return &domain.DonationList{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

// listNearby filters by distance in memory after a bounding-box narrowing in
// storage. Results are nearest first unless an explicit sort is requested.
func (s *donationService) listNearby(ctx context.Context, filter domain.ListDonationsFilter, q ListQuery, page, limit int) (*domain.DonationList, error) {
	now := q.Now
	center := geo.Point{Latitude: *filter.Latitude, Longitude: *filter.Longitude}
	if err := center.Validate(); err != nil {
		return nil, domain.NewValidationError(domain.FieldError{Field: "latitude", Message: err.Error()})
	}
	radius := filter.RadiusMiles
	if radius <= 0 {
		radius = s.cfg.ListDefaultRadius
	}

	load := func(ctx context.Context, box geo.BoundingBox, center geo.Point, limit int) ([]*entities.Donation, error) {
		return s.donationRepository.ListDonationsWithin(ctx, q, box, center, limit)
	}
	matches, truncated, err := matching.Nearby(ctx, load, center, radius, nil, 0, s.cfg.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list nearby donations: %w", err)
	}

	if column, ok := sortColumns[filter.SortBy]; ok {
		desc := filter.SortOrder != "asc"
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := matches[i].Item, matches[j].Item
			if desc {
				a, b = b, a
			}
			return lessBy(column, a, b)
		})
	} else if filter.SortBy == "distance" && filter.SortOrder == "desc" {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Distance > matches[j].Distance
		})
	}

	total := int64(len(matches))
	start := min(domain.PageOffset(page, limit), len(matches))
	end := min(start+limit, len(matches))

	items := make([]*domain.DonationResponse, 0, end-start)
	for _, m := range matches[start:end] {
		s.coordinator.ExpireIfDue(ctx, m.Item)
		distance := m.Distance
		items = append(items, toDonationResponse(m.Item, now, &distance))
	}
	if truncated {
		log.Warnw("nearby listing hit the candidate cap", "max_candidates", s.cfg.MaxCandidates, "radius", radius)
	}
	return &domain.DonationList{
		Items:      items,
		TotalCount: total,
		Page:       page,
		Pagination: domain.NewPagination(page, limit, total),
		Truncated:  truncated,
	}, nil
}

func orderClause(sortBy, sortOrder, fallback string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		if fallback != "" {
			return fallback
		}
		column = "created_at"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction
}

func lessBy(column string, a, b *entities.Donation) bool {
	switch column {
	case "expiry_date":
		return a.ExpiryDate.Before(b.ExpiryDate)
	case "pickup_start":
		return a.PickupStart.Before(b.PickupStart)
	case "quantity_amount":
		return a.QuantityAmount < b.QuantityAmount
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (s *donationService) UpdateDonation(ctx context.Context, donorID string, id string, req domain.UpdateDonationRequest) (*domain.DonationResponse, error) {
	d, err := s.coordinator.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.cfg.Now()
	if err := CheckEditable(d, domain.Actor{UserID: donorID}, now); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
		updates["title"] = d.Title
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
		updates["description"] = d.Description
	}
	if req.FoodType != nil {
		d.FoodType = *req.FoodType
		updates["food_type"] = d.FoodType
	}
	if req.Quantity != nil {
		d.QuantityAmount, d.QuantityUnit = req.Quantity.Amount, req.Quantity.Unit
		updates["quantity_amount"] = d.QuantityAmount
		updates["quantity_unit"] = d.QuantityUnit
	}
	if req.Allergens != nil {
		d.Allergens = normalizeSet(req.Allergens, true)
		updates["allergens"] = d.Allergens
	}
	if req.Tags != nil {
		d.Tags = normalizeSet(req.Tags, false)
		updates["tags"] = d.Tags
	}
	if req.PreparationDate != nil {
		d.PreparationDate = req.PreparationDate.UTC()
		updates["preparation_date"] = d.PreparationDate
	}
	if req.ExpiryDate != nil {
		d.ExpiryDate = req.ExpiryDate.UTC()
		updates["expiry_date"] = d.ExpiryDate
	}
	if req.PickupWindow != nil {
		d.PickupStart, d.PickupEnd = req.PickupWindow.StartTime.UTC(), req.PickupWindow.EndTime.UTC()
		updates["pickup_start"] = d.PickupStart
		updates["pickup_end"] = d.PickupEnd
	}
	if req.Location != nil {
		if err := s.applyLocation(ctx, d, *req.Location); err != nil {
			return nil, err
		}
		updates["street"], updates["city"], updates["state"] = d.Street, d.City, d.State
		updates["zip_code"], updates["country"], updates["instructions"] = d.ZipCode, d.Country, d.Instructions
		maps.Copy(updates, entities.LocationColumns(d.Latitude, d.Longitude))
	}
	if req.IsUrgent != nil {
		d.IsUrgent = *req.IsUrgent
		updates["is_urgent"] = d.IsUrgent
	}
	if req.SpecialInstructions != nil {
		d.SpecialInstructions = strings.TrimSpace(*req.SpecialInstructions)
		updates["special_instructions"] = d.SpecialInstructions
	}

	if err := ValidateDonation(d); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return toDonationResponse(d, now, nil), nil
	}
	updates["updated_at"] = now
	d.UpdatedAt = now

	// serializer:json fields need the model to encode them
	if v, ok := updates["allergens"]; ok {
		updates["allergens"] = jsonColumn(v.([]string))
	}
	if v, ok := updates["tags"]; ok {
		updates["tags"] = jsonColumn(v.([]string))
	}

	ok, err := s.donationRepository.UpdateAvailableDonation(ctx, d.ID, now, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.coordinator.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewImmutableAfterClaim(string(EffectiveStatus(current, now)))
	}

	return toDonationResponse(d, now, nil), nil
}

func (s *donationService) DeleteDonation(ctx context.Context, actor domain.Actor, id string) error {
	d, err := s.coordinator.Load(ctx, id)
	if err != nil {
		return err
	}
	now := s.cfg.Now()
	if err := CheckDeletable(d, actor, now); err != nil {
		return err
	}

	ok, err := s.donationRepository.DeleteDonation(ctx, d.ID, entities.StatusAvailable, entities.StatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		current, err := s.coordinator.Load(ctx, id)
		if err != nil {
			return err
		}
		return domain.NewInvalidTransition(string(EffectiveStatus(current, now)), "delete")
	}

	for _, link := range d.ImageURLs {
		if key := s.s3.GetObjectKeyFromLink(link); key != "" {
			if err := s.s3.DeleteFile(key); err != nil {
				log.Warnw("failed to delete donation image", "donation_id", d.ID, "key", key, "error", err)
			}
		}
	}
	s.hub.Broadcast(notification.EventDonationStatus, statusPayload(d.ID, "deleted"))
	return nil
}

func (s *donationService) ClaimDonation(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error) {
	d, err := s.coordinator.Claim(ctx, id, domain.Actor{UserID: recipientID, Role: domain.RoleRecipient})
	if err != nil {
		return nil, err
	}
	if d.RecipientID != nil {
		if recipient, err := s.userRepository.GetUserByID(ctx, *d.RecipientID); err == nil {
			d.Recipient = recipient
		} else {
			log.Warnw("failed to load claiming recipient", "donation_id", d.ID, "error", err)
		}
	}

	res := toDonationResponse(d, s.cfg.Now(), nil)
	s.hub.Broadcast(notification.EventDonationClaimed, map[string]any{
		"donation_id": d.ID.String(),
		"recipient":   user.ToPublicUser(d.Recipient),
	})

	if d.Donor != nil {
		recipientName := "A recipient"
		if d.Recipient != nil {
			recipientName = d.Recipient.FullName()
			if d.Recipient.Organization != "" {
				recipientName = d.Recipient.Organization
			}
		}
		s.notifier.Notify(notification.EventDonationClaimed, []notification.Target{notification.TargetFor(d.Donor)}, notification.Message{
			DonationID: &d.ID,
			Subject:    "Your donation has been claimed: " + d.Title,
			Body:       fmt.Sprintf("%s claimed %q and will pick it up between %s and %s.", recipientName, d.Title, d.PickupStart.Format(time.RFC1123), d.PickupEnd.Format(time.RFC1123)),
			Urgent:     d.IsUrgent,
		})
	}
	return res, nil
}

func (s *donationService) MarkPickedUp(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error) {
	return s.recipientTransition(ctx, recipientID, id, EventPickup)
}

func (s *donationService) MarkCompleted(ctx context.Context, recipientID string, id string) (*domain.DonationResponse, error) {
	return s.recipientTransition(ctx, recipientID, id, EventComplete)
}

func (s *donationService) recipientTransition(ctx context.Context, recipientID string, id string, event Event) (*domain.DonationResponse, error) {
	d, t, err := s.coordinator.Transition(ctx, id, event, domain.Actor{UserID: recipientID, Role: domain.RoleRecipient})
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(notification.EventDonationStatus, statusPayload(d.ID, string(t.To)))

	if d.Donor != nil {
		verb := "picked up"
		if event == EventComplete {
			verb = "completed"
		}
		s.notifier.Notify(notification.EventDonationStatus, []notification.Target{notification.TargetFor(d.Donor)}, notification.Message{
			DonationID: &d.ID,
			Subject:    fmt.Sprintf("Donation %s: %s", verb, d.Title),
			Body:       fmt.Sprintf("Your donation %q was %s. Thank you for sharing!", d.Title, verb),
		})
	}
	return toDonationResponse(d, s.cfg.Now(), nil), nil
}

func (s *donationService) CancelDonation(ctx context.Context, actor domain.Actor, id string) error {
	d, t, err := s.coordinator.Transition(ctx, id, EventCancel, actor)
	if err != nil {
		return err
	}
	s.hub.Broadcast(notification.EventDonationStatus, statusPayload(d.ID, string(t.To)))

	if t.From == entities.StatusClaimed && d.Recipient != nil {
		s.notifier.Notify(notification.EventDonationStatus, []notification.Target{notification.TargetFor(d.Recipient)}, notification.Message{
			DonationID: &d.ID,
			Subject:    "Donation cancelled: " + d.Title,
			Body:       fmt.Sprintf("The donation %q you claimed has been cancelled.", d.Title),
		})
	}
	return nil
}

func (s *donationService) DonationHistory(ctx context.Context, id string) ([]domain.DonationEventResponse, error) {
	d, err := s.coordinator.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.coordinator.ExpireIfDue(ctx, d)

	events, err := s.donationRepository.ListEvents(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("list donation events: %w", err)
	}
	out := make([]domain.DonationEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out, nil
}

func statusPayload(id uuid.UUID, status string) map[string]any {
	return map[string]any{"donation_id": id.String(), "status": status}
}
