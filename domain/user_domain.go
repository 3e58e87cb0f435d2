package domain

var (
	MessageSuccessGetProfile        = "profile retrieved successfully"
	MessageSuccessUpdateLocation    = "location updated successfully"
	MessageSuccessUpdatePreferences = "preferences updated successfully"
	MessageSuccessGetUsers          = "users retrieved successfully"
	MessageSuccessUpdateUserStatus  = "user status updated successfully"
	MessageSuccessNearbyRecipients  = "nearby recipients retrieved successfully"

	MessageFailedGetProfile        = "failed to get profile"
	MessageFailedUpdateLocation    = "failed to update location"
	MessageFailedUpdatePreferences = "failed to update preferences"
	MessageFailedGetUsers          = "failed to get users"
	MessageFailedUpdateUserStatus  = "failed to update user status"
	MessageFailedNearbyRecipients  = "failed to get nearby recipients"
)

type (
	// PublicUser is the profile subset safe to show other users.
	PublicUser struct {
		ID           string `json:"id"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Organization string `json:"organization,omitempty"`
		Phone        string `json:"phone,omitempty"`
	}

	UserResponse struct {
		ID                 string     `json:"id"`
		Email              string     `json:"email"`
		Role               string     `json:"role"`
		FirstName          string     `json:"first_name"`
		LastName           string     `json:"last_name"`
		Phone              string     `json:"phone,omitempty"`
		Organization       string     `json:"organization,omitempty"`
		Address            string     `json:"address,omitempty"`
		Coordinates        [2]float64 `json:"coordinates"`
		EmailNotifications bool       `json:"email_notifications"`
		SMSNotifications   bool       `json:"sms_notifications"`
		MaxDistance        float64    `json:"max_distance"`
		IsActive           bool       `json:"is_active"`
	}

	// UpdateLocationRequest accepts either coordinates or a free-text address.
	UpdateLocationRequest struct {
		Latitude  *float64 `json:"latitude" validate:"required_without=Address,omitempty,latitude"`
		Longitude *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,longitude"`
		Address   string   `json:"address" validate:"omitempty,max=300"`
	}

	UpdatePreferencesRequest struct {
		EmailNotifications *bool    `json:"email_notifications"`
		SMSNotifications   *bool    `json:"sms_notifications"`
		MaxDistance        *float64 `json:"max_distance" validate:"omitempty,gt=0,lte=500"`
	}

	NearbyRecipientsRequest struct {
		Latitude    *float64 `query:"latitude" validate:"required,latitude"`
		Longitude   *float64 `query:"longitude" validate:"required,longitude"`
		MaxDistance float64  `query:"max_distance" validate:"omitempty,gt=0,lte=500"`
	}

	NearbyRecipient struct {
		PublicUser
		Distance float64 `json:"distance"`
	}

	ListUsersFilter struct {
		Role     string `query:"role" validate:"omitempty,oneof=donor recipient admin"`
		IsActive *bool  `query:"is_active"`
		Search   string `query:"search"`
		Page     int    `query:"page" validate:"omitempty,min=1,max=100000"`
		Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	UserList struct {
		Items      []*UserResponse `json:"items"`
		Pagination Pagination      `json:"pagination"`
	}

	UpdateUserStatusRequest struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}
)
