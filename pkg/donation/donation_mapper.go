package donation

import (
	"time"

	"FoodShare-Backend/domain"
	"FoodShare-Backend/entities"
	"FoodShare-Backend/pkg/user"
)

func toDonationResponse(d *entities.Donation, now time.Time, distance *float64) *domain.DonationResponse {
	res := &domain.DonationResponse{
		ID:          d.ID.String(),
		DonorID:     d.DonorID.String(),
		Donor:       user.ToPublicUser(d.Donor),
		Title:       d.Title,
		Description: d.Description,
		FoodType:    d.FoodType,
		Quantity: domain.QuantityResponse{
			Amount: d.QuantityAmount,
			Unit:   d.QuantityUnit,
		},
		Allergens:       nonNil(d.Allergens),
		PreparationDate: d.PreparationDate,
		ExpiryDate:      d.ExpiryDate,
		PickupWindow: domain.PickupWindowResponse{
			StartTime: d.PickupStart,
			EndTime:   d.PickupEnd,
			Status:    PickupWindowStatus(d, now),
		},
		Location: domain.LocationResponse{
			Address: domain.AddressRequest{
				Street:  d.Street,
				City:    d.City,
				State:   d.State,
				ZipCode: d.ZipCode,
				Country: d.Country,
			},
			Coordinates:  [2]float64{d.Longitude, d.Latitude},
			Instructions: d.Instructions,
		},
		Status:              string(EffectiveStatus(d, now)),
		IsUrgent:            d.IsUrgent,
		Tags:                nonNil(d.Tags),
		ImageURLs:           d.ImageURLs,
		SpecialInstructions: d.SpecialInstructions,
		Distance:            distance,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}

	if d.RecipientID != nil {
		res.Claim = &domain.ClaimResponse{
			RecipientID: d.RecipientID.String(),
			Recipient:   user.ToPublicUser(d.Recipient),
			ClaimedAt:   d.ClaimedAt,
			PickupTime:  d.PickupTime,
			CompletedAt: d.CompletedAt,
		}
	}
	return res
}

func toEventResponse(e *entities.DonationEvent) domain.DonationEventResponse {
	res := domain.DonationEventResponse{
		Event:      e.Event,
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		CreatedAt:  e.CreatedAt,
	}
	if e.ActorID != nil {
		res.ActorID = e.ActorID.String()
	}
	return res
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
