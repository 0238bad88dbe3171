package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"carhire-backend/internal/domain"
	"carhire-backend/internal/storage"

	"github.com/google/uuid"
)

// contractTemplate is a placeholder rendering; the production document
// renderer is an external collaborator behind the same DocumentService
// interface.
var contractTemplate = template.Must(template.New("contract").
	Funcs(template.FuncMap{"dollars": dollars}).
	Parse(`<!DOCTYPE html>
<html>
<body>
	<h1>Rental Agreement {{.Number}}</h1>
	<p>Booking ID: {{.ID}}</p>
	<p>Vehicle: {{.VehicleID}}</p>
	<p>Driver: {{.DriverID}}</p>
	<p>From: {{.From.Format "Jan 2, 2006 15:04"}}</p>
	<p>To: {{.To.Format "Jan 2, 2006 15:04"}}</p>
	<p>Total: {{printf "$%.2f" (dollars .PriceCents)}}</p>
</body>
</html>
`))

func dollars(cents int32) float64 {
	return float64(cents) / 100
}

type documentService struct {
	store storage.DocumentStorage
}

func NewDocumentService(store storage.DocumentStorage) DocumentService {
	return &documentService{store: store}
}

// GenerateContract renders and stores the rental agreement for a booking.
// Record-level idempotency is owned by the caller; this service only renders
// and persists the file.
func (s *documentService) GenerateContract(ctx context.Context, b *domain.Booking) (*domain.Contract, error) {
	var buf bytes.Buffer
	if err := contractTemplate.Execute(&buf, b); err != nil {
		return nil, fmt.Errorf("failed to render contract: %w", err)
	}

	key := fmt.Sprintf("contracts/%s.html", uuid.NewString())
	if err := s.store.SaveFile(key, &buf); err != nil {
		return nil, fmt.Errorf("failed to store contract: %w", err)
	}

	return &domain.Contract{
		BookingID: b.ID,
		FileKey:   key,
		FileName:  fmt.Sprintf("contract-%s.html", b.Number),
	}, nil
}
