package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	customersports "github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
)

const tracerName = "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/observability"

// Service decorates the customer service with tracing, logging, and metrics.
type Service struct {
	inner   customersports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core customer service.
func New(inner customersports.Service, opts ...Option) customersports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) FindByID(ctx context.Context, id int64, depth customersports.FetchDepth) (*customersports.CustomerView, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByID", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	result, err := s.inner.FindByID(ctx, id, depth)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer", slog.Int64("customer.id", id))
	}
	return result, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByEmail")
	defer span.End()

	result, err := s.inner.FindByEmail(ctx, email)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer by email")
	}
	return result, nil
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByUsername", trace.WithAttributes(attribute.String("customer.username", username)))
	defer span.End()

	result, err := s.inner.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load customer by username", slog.String("customer.username", username))
	}
	return result, nil
}

func (s *Service) FindAll(ctx context.Context, depth customersports.FetchDepth, order customersports.OrderBy) ([]*customersports.CustomerView, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindAll")
	defer span.End()

	result, err := s.inner.FindAll(ctx, depth, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list customers")
	}
	span.SetAttributes(attribute.Int("customer.count", len(result)))
	return result, nil
}

func (s *Service) FindByLastName(ctx context.Context, lastName string, depth customersports.FetchDepth) ([]*customersports.CustomerView, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByLastName")
	defer span.End()

	result, err := s.inner.FindByLastName(ctx, lastName, depth)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search customers by last name")
	}
	return result, nil
}

func (s *Service) FindByPostalCode(ctx context.Context, postalCode string) ([]*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByPostalCode", trace.WithAttributes(attribute.String("address.postal_code", postalCode)))
	defer span.End()

	result, err := s.inner.FindByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search customers by postal code")
	}
	return result, nil
}

func (s *Service) FindBySince(ctx context.Context, since time.Time) ([]*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindBySince")
	defer span.End()

	result, err := s.inner.FindBySince(ctx, since)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search customers by since date")
	}
	return result, nil
}

func (s *Service) FindByGender(ctx context.Context, gender customersdomain.Gender) ([]*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByGender", trace.WithAttributes(attribute.String("customer.gender", string(gender))))
	defer span.End()

	result, err := s.inner.FindByGender(ctx, gender)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search customers by gender")
	}
	return result, nil
}

func (s *Service) FindPrivateAndCorporate(ctx context.Context) ([]*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindPrivateAndCorporate")
	defer span.End()

	result, err := s.inner.FindPrivateAndCorporate(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list private and corporate customers")
	}
	return result, nil
}

func (s *Service) FindIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindIDsByPrefix")
	defer span.End()

	result, err := s.inner.FindIDsByPrefix(ctx, prefix)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to autocomplete customer ids")
	}
	return result, nil
}

func (s *Service) FindByIDPrefix(ctx context.Context, prefix string) ([]*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindByIDPrefix")
	defer span.End()

	result, err := s.inner.FindByIDPrefix(ctx, prefix)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to autocomplete customers by id")
	}
	return result, nil
}

func (s *Service) FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindLastNamesByPrefix")
	defer span.End()

	result, err := s.inner.FindLastNamesByPrefix(ctx, prefix)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to autocomplete last names")
	}
	return result, nil
}

func (s *Service) Create(ctx context.Context, customer *customersdomain.Customer) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.Create",
		trace.WithAttributes(attribute.String("customer.kind", string(customer.Kind))))
	defer span.End()

	s.logInfo(ctx, "creating customer", slog.String("customer.kind", string(customer.Kind)))
	result, err := s.inner.Create(ctx, customer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create customer")
	}
	s.metrics.recordCreated(ctx, result.Kind)
	s.logInfo(ctx, "customer created", slog.Int64("customer.id", result.ID))
	return result, nil
}

func (s *Service) Update(ctx context.Context, customer *customersdomain.Customer, passwordChanged bool) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.Update",
		trace.WithAttributes(attribute.Int64("customer.id", customer.ID), attribute.Int("customer.version", customer.Version)))
	defer span.End()

	s.logInfo(ctx, "updating customer", slog.Int64("customer.id", customer.ID), slog.Int("customer.version", customer.Version))
	result, err := s.inner.Update(ctx, customer, passwordChanged)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update customer", slog.Int64("customer.id", customer.ID))
	}
	s.logInfo(ctx, "customer updated", slog.Int64("customer.id", result.ID), slog.Int("customer.version", result.Version))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, customer *customersdomain.Customer) error {
	ctx, span := s.tracer.Start(ctx, "CustomerService.Delete")
	defer span.End()

	if err := s.inner.Delete(ctx, customer); err != nil {
		return s.handleError(ctx, span, err, "failed to delete customer")
	}
	s.metrics.recordDeleted(ctx)
	return nil
}

func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CustomerService.DeleteByID", trace.WithAttributes(attribute.Int64("customer.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting customer", slog.Int64("customer.id", id))
	if err := s.inner.DeleteByID(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete customer", slog.Int64("customer.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "customer deleted", slog.Int64("customer.id", id))
	return nil
}

func (s *Service) SetFile(ctx context.Context, customerID int64, data []byte) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.SetFile",
		trace.WithAttributes(attribute.Int64("customer.id", customerID), attribute.Int("file.size", len(data))))
	defer span.End()

	result, err := s.inner.SetFile(ctx, customerID, data)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to attach file", slog.Int64("customer.id", customerID))
	}
	s.metrics.recordFileAttached(ctx)
	return result, nil
}

func (s *Service) SetFileWithType(ctx context.Context, customer *customersdomain.Customer, data []byte, mimeType string) (*customersdomain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.SetFileWithType",
		trace.WithAttributes(attribute.String("file.mime_type", mimeType), attribute.Int("file.size", len(data))))
	defer span.End()

	result, err := s.inner.SetFileWithType(ctx, customer, data, mimeType)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to attach file", slog.String("file.mime_type", mimeType))
	}
	s.metrics.recordFileAttached(ctx)
	return result, nil
}

func (s *Service) FindMaintenanceContracts(ctx context.Context, customerID int64) ([]customersdomain.MaintenanceContract, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.FindMaintenanceContracts", trace.WithAttributes(attribute.Int64("customer.id", customerID)))
	defer span.End()

	result, err := s.inner.FindMaintenanceContracts(ctx, customerID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list maintenance contracts", slog.Int64("customer.id", customerID))
	}
	return result, nil
}

func (s *Service) CreateMaintenanceContract(ctx context.Context, contract *customersdomain.MaintenanceContract, customer *customersdomain.Customer) (*customersdomain.MaintenanceContract, error) {
	ctx, span := s.tracer.Start(ctx, "CustomerService.CreateMaintenanceContract")
	defer span.End()

	result, err := s.inner.CreateMaintenanceContract(ctx, contract, customer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create maintenance contract")
	}
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	customersCreated metric.Int64Counter
	customersDeleted metric.Int64Counter
	filesAttached    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	customersCreated, _ := m.Int64Counter("customers.service.created", metric.WithDescription("Number of customers created"))
	customersDeleted, _ := m.Int64Counter("customers.service.deleted", metric.WithDescription("Number of customers deleted"))
	filesAttached, _ := m.Int64Counter("customers.service.files_attached", metric.WithDescription("Number of customer file attachments"))
	return serviceMetrics{customersCreated: customersCreated, customersDeleted: customersDeleted, filesAttached: filesAttached}
}

func (m serviceMetrics) recordCreated(ctx context.Context, kind customersdomain.Kind) {
	if m.customersCreated != nil {
		m.customersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("customer.kind", string(kind))))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.customersDeleted != nil {
		m.customersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordFileAttached(ctx context.Context) {
	if m.filesAttached != nil {
		m.filesAttached.Add(ctx, 1)
	}
}

var _ customersports.Service = (*Service)(nil)
