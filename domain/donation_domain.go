package domain

import (
	"mime/multipart"
	"time"
)

var (
	MessageSuccessCreateDonation   = "donation created successfully"
	MessageSuccessGetDonations     = "donations retrieved successfully"
	MessageSuccessUpdateDonation   = "donation updated successfully"
	MessageSuccessDeleteDonation   = "donation deleted successfully"
	MessageSuccessClaimDonation    = "donation claimed successfully"
	MessageSuccessPickupDonation   = "donation marked as picked up"
	MessageSuccessCompleteDonation = "donation marked as completed"
	MessageSuccessCancelDonation   = "donation cancelled successfully"
	MessageSuccessGetHistory       = "donation history retrieved successfully"
	MessageSuccessSweep            = "expiry sweep completed"
	MessageSuccessPickupReminders  = "pickup reminders queued"

	MessageFailedCreateDonation   = "failed to create donation"
	MessageFailedGetDonations     = "failed to retrieve donations"
	MessageFailedUpdateDonation   = "failed to update donation"
	MessageFailedDeleteDonation   = "failed to delete donation"
	MessageFailedClaimDonation    = "failed to claim donation"
	MessageFailedPickupDonation   = "failed to mark donation as picked up"
	MessageFailedCompleteDonation = "failed to mark donation as completed"
	MessageFailedCancelDonation   = "failed to cancel donation"
	MessageFailedSweep            = "expiry sweep failed"
	MessageFailedPickupReminders  = "failed to send pickup reminders"
)

var (
	FoodTypes      = []string{"fresh", "canned", "frozen", "baked", "dairy", "produce", "meat", "pantry", "other"}
	QuantityUnits  = []string{"pounds", "kilograms", "servings", "items", "boxes", "containers"}
	AllergenValues = []string{"nuts", "dairy", "gluten", "soy", "eggs", "shellfish", "wheat", "fish", "none"}
)

type (
	QuantityRequest struct {
		Amount float64 `json:"amount" validate:"gt=0"`
		Unit   string  `json:"unit" validate:"required,oneof=pounds kilograms servings items boxes containers"`
	}

	PickupWindowRequest struct {
		StartTime time.Time `json:"start_time" validate:"required"`
		EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	}

	AddressRequest struct {
		Street  string `json:"street" validate:"required"`
		City    string `json:"city" validate:"required"`
		State   string `json:"state" validate:"required"`
		ZipCode string `json:"zip_code" validate:"required"`
		Country string `json:"country" validate:"omitempty"`
	}

	// LocationRequest carries coordinates as [longitude, latitude]. When they are
	// omitted the address is resolved through the geocoder.
	LocationRequest struct {
		Address      AddressRequest `json:"address" validate:"required"`
		Coordinates  []float64      `json:"coordinates" validate:"omitempty,len=2"`
		Instructions string         `json:"instructions" validate:"omitempty,max=200"`
	}

	CreateDonationRequest struct {
		Title               string                `json:"title" validate:"required,max=100"`
		Description         string                `json:"description" validate:"required,max=500"`
		FoodType            string                `json:"food_type" validate:"required,oneof=fresh canned frozen baked dairy produce meat pantry other"`
		Quantity            QuantityRequest       `json:"quantity" validate:"required"`
		Allergens           []string              `json:"allergens" validate:"omitempty,dive,oneof=nuts dairy gluten soy eggs shellfish wheat fish none"`
		PreparationDate     time.Time             `json:"preparation_date" validate:"required"`
		ExpiryDate          time.Time             `json:"expiry_date" validate:"required,gtfield=PreparationDate"`
		PickupWindow        PickupWindowRequest   `json:"pickup_window" validate:"required"`
		Location            LocationRequest       `json:"location" validate:"required"`
		Tags                []string              `json:"tags" validate:"omitempty,dive,max=50"`
		IsUrgent            bool                  `json:"is_urgent"`
		SpecialInstructions string                `json:"special_instructions" validate:"omitempty,max=300"`
		FoodImage           *multipart.FileHeader `json:"-" form:"food_image"`
	}

	// UpdateDonationRequest holds the pre-claim edits a donor may apply. Nil
	// fields are left untouched.
	UpdateDonationRequest struct {
		Title               *string              `json:"title" validate:"omitempty,min=1,max=100"`
		Description         *string              `json:"description" validate:"omitempty,min=1,max=500"`
		FoodType            *string              `json:"food_type" validate:"omitempty,oneof=fresh canned frozen baked dairy produce meat pantry other"`
		Quantity            *QuantityRequest     `json:"quantity" validate:"omitempty"`
		Allergens           []string             `json:"allergens" validate:"omitempty,dive,oneof=nuts dairy gluten soy eggs shellfish wheat fish none"`
		PreparationDate     *time.Time           `json:"preparation_date"`
		ExpiryDate          *time.Time           `json:"expiry_date"`
		PickupWindow        *PickupWindowRequest `json:"pickup_window" validate:"omitempty"`
		Location            *LocationRequest     `json:"location" validate:"omitempty"`
		Tags                []string             `json:"tags" validate:"omitempty,dive,max=50"`
		IsUrgent            *bool                `json:"is_urgent"`
		SpecialInstructions *string              `json:"special_instructions" validate:"omitempty,max=300"`
	}

	ListDonationsFilter struct {
		Status      string   `query:"status" validate:"omitempty,oneof=available claimed picked-up completed expired cancelled"`
		FoodType    string   `query:"food_type" validate:"omitempty,oneof=fresh canned frozen baked dairy produce meat pantry other"`
		Latitude    *float64 `query:"latitude" validate:"omitempty,latitude"`
		Longitude   *float64 `query:"longitude" validate:"omitempty,longitude"`
		RadiusMiles float64  `query:"max_distance" validate:"omitempty,gt=0"`
		IsUrgent    *bool    `query:"is_urgent"`
		Page        int      `query:"page" validate:"omitempty,min=1,max=100000"`
		Limit       int      `query:"limit" validate:"omitempty,min=1,max=100"`
		SortBy      string   `query:"sort_by" validate:"omitempty,oneof=createdAt expiryDate pickupStart quantity distance"`
		SortOrder   string   `query:"sort_order" validate:"omitempty,oneof=asc desc"`

		DonorID     string `query:"-"`
		RecipientID string `query:"-"`
	}

	QuantityResponse struct {
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	}

	PickupWindowResponse struct {
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		Status    string    `json:"status"`
	}

	LocationResponse struct {
		Address      AddressRequest `json:"address"`
		Coordinates  [2]float64     `json:"coordinates"`
		Instructions string         `json:"instructions,omitempty"`
	}

	ClaimResponse struct {
		RecipientID string     `json:"recipient_id"`
		Recipient   *PublicUser `json:"recipient,omitempty"`
		ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
		PickupTime  *time.Time `json:"pickup_time,omitempty"`
		CompletedAt *time.Time `json:"completed_at,omitempty"`
	}

	DonationResponse struct {
		ID                  string               `json:"id"`
		DonorID             string               `json:"donor_id"`
		Donor               *PublicUser          `json:"donor,omitempty"`
		Title               string               `json:"title"`
		Description         string               `json:"description"`
		FoodType            string               `json:"food_type"`
		Quantity            QuantityResponse     `json:"quantity"`
		Allergens           []string             `json:"allergens"`
		PreparationDate     time.Time            `json:"preparation_date"`
		ExpiryDate          time.Time            `json:"expiry_date"`
		PickupWindow        PickupWindowResponse `json:"pickup_window"`
		Location            LocationResponse     `json:"location"`
		Status              string               `json:"status"`
		Claim               *ClaimResponse       `json:"claim,omitempty"`
		IsUrgent            bool                 `json:"is_urgent"`
		Tags                []string             `json:"tags"`
		ImageURLs           []string             `json:"image_urls,omitempty"`
		SpecialInstructions string               `json:"special_instructions,omitempty"`
		Distance            *float64             `json:"distance,omitempty"`
		CreatedAt           time.Time            `json:"created_at"`
		UpdatedAt           time.Time            `json:"updated_at"`
	}

	DonationList struct {
		Items      []*DonationResponse `json:"items"`
		TotalCount int64               `json:"total_count"`
		Page       int                 `json:"page"`
		Pagination Pagination          `json:"pagination"`
		// Truncated is set when a geo listing found more donations in range
		// than it examines; TotalCount then counts only the nearest ones.
		Truncated  bool                `json:"truncated,omitempty"`
	}

	DonationEventResponse struct {
		Event      string    `json:"event"`
		FromStatus string    `json:"from_status"`
		ToStatus   string    `json:"to_status"`
		ActorID    string    `json:"actor_id,omitempty"`
		CreatedAt  time.Time `json:"created_at"`
	}

	SweepResult struct {
		Expired  int           `json:"expired"`
		Errors   int           `json:"errors"`
		Duration time.Duration `json:"duration"`
	}

	ReminderResult struct {
		Count int `json:"count"`
	}
)
