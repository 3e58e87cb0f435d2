// Package geocoder resolves free-text addresses into coordinates.
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Fallback coordinates used when no API key is configured (New York City).
const (
	FallbackLatitude  = 40.7128
	FallbackLongitude = -74.0060
)

var (
	ErrNoResults = errors.New("no geocoding results found")
	ErrGeocode   = errors.New("failed to geocode address")
	ErrNoAddress = errors.New("address is empty")
)

type Result struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Fallback         bool    `json:"-"`
}

type Resolver interface {
	Resolve(ctx context.Context, address string) (Result, error)
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type GoogleGeocoder struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

func NewGoogleGeocoder(apiKey, baseURL string, timeout time.Duration) *GoogleGeocoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleGeocoder{apiKey: apiKey, baseURL: baseURL, timeout: timeout}
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, ErrNoAddress
	}
	if g.apiKey == "" {
		log.Warnw("geocoder api key not configured, using fallback coordinates", "address", address)
		return Result{
			Latitude:         FallbackLatitude,
			Longitude:        FallbackLongitude,
			FormattedAddress: address,
			Fallback:         true,
		}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)

	var resp googleResponse
	code, _, errs := fiber.Get(g.baseURL + "?" + params.Encode()).
		Timeout(g.timeout).
		Struct(&resp)
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrGeocode, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return Result{}, fmt.Errorf("%w: status code %d", ErrGeocode, code)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Result{}, ErrNoResults
	default:
		return Result{}, fmt.Errorf("%w: %s %s", ErrGeocode, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return Result{}, ErrNoResults
	}

	first := resp.Results[0]
	return Result{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// FormatAddress joins the non-empty address parts with commas.
func FormatAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
