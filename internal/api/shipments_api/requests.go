package shipments_api

import (
	"reflect"
	"strings"

	"github.com/BearBump/ShipTrack/internal/models"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type AdvanceRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=64"`
	NewStatus      string `json:"new_status" validate:"required,max=64"`
	Notes          string `json:"notes,omitempty" validate:"max=2000"`
	StaffEmail     string `json:"staff_email" validate:"required,max=254"`
	Location       string `json:"location,omitempty" validate:"max=255"`
	DeviceInfo     string `json:"device_info,omitempty" validate:"max=255"`
}

type LookupRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=64"`
}

// ListShipmentsRequest filters the staff listing. Status "all" or empty lists every status.
type ListShipmentsRequest struct {
	Status string `json:"status,omitempty" validate:"max=64"`
	Search string `json:"search,omitempty" validate:"max=255"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
	Offset int    `json:"offset,omitempty" validate:"gte=0"`
}

type AdvanceResponse struct {
	Success        bool     `json:"success"`
	ShipmentID     string   `json:"shipment_id"`
	TrackingNumber string   `json:"tracking_number"`
	NewStatus      string   `json:"new_status"`
	Timestamp      string   `json:"timestamp"`
	Warnings       []string `json:"warnings,omitempty"`
}

// newValidator reports fields by their json names.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateRequest(v *validatorv10.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError("%s", err.Error())
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError("%s is required", fe.Field())
	case "max":
		return models.NewValidationError("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return models.NewValidationError("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return models.NewValidationError("%s is invalid", fe.Field())
	}
}
