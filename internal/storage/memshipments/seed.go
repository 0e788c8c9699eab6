package memshipments

import (
	"context"
	"os"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v4"
)

type seedFile struct {
	Shipments []seedShipment `yaml:"shipments"`
}

type seedShipment struct {
	ID                 string     `yaml:"id"`
	TrackingNumber     string     `yaml:"tracking_number"`
	Status             string     `yaml:"status"`
	CustomerName       string     `yaml:"customer_name"`
	CustomerEmail      string     `yaml:"customer_email"`
	CustomerPhone      string     `yaml:"customer_phone"`
	DestinationAddress string     `yaml:"destination_address"`
	DestinationCountry string     `yaml:"destination_country"`
	PackageType        string     `yaml:"package_type"`
	ServiceType        string     `yaml:"service_type"`
	CreatedAt          time.Time  `yaml:"created_at"`
	EstimatedDelivery  *time.Time `yaml:"estimated_delivery"`
}

// LoadSeed reads a YAML list of shipments and creates each of them.
// Returns the number of shipments created.
func (s *Storage) LoadSeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "read seed file")
	}
	return s.LoadSeedYAML(ctx, data)
}

func (s *Storage) LoadSeedYAML(ctx context.Context, data []byte) (int, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, errors.Wrap(err, "unmarshal seed")
	}

	for i, it := range f.Shipments {
		sh := &models.Shipment{
			ID:                 it.ID,
			TrackingNumber:     it.TrackingNumber,
			Status:             it.Status,
			CustomerName:       it.CustomerName,
			CustomerEmail:      it.CustomerEmail,
			CustomerPhone:      it.CustomerPhone,
			DestinationAddress: it.DestinationAddress,
			DestinationCountry: it.DestinationCountry,
			PackageType:        it.PackageType,
			ServiceType:        it.ServiceType,
			CreatedAt:          it.CreatedAt,
			EstimatedDelivery:  it.EstimatedDelivery,
		}
		if err := s.CreateShipment(ctx, sh); err != nil {
			return i, errors.Wrapf(err, "seed shipment %d", i)
		}
	}
	return len(f.Shipments), nil
}
