package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrmpay/internal/domain/auth"
	"hrmpay/internal/platform/metrics"
)

const defaultTimeout = 15 * time.Second

type Service struct {
	store    StoreAPI
	renderer *Renderer
	metrics  *metrics.Collector
	logger   *slog.Logger
	timeout  time.Duration
}

func NewService(store StoreAPI, renderer *Renderer, collector *metrics.Collector, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		store:    store,
		renderer: renderer,
		metrics:  collector,
		logger:   logger.With("component", "payroll"),
		timeout:  timeout,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Generate computes the payslip of employeeID for month/year and stores it.
// Running it again for the same month refreshes the figures and keeps id and status.
func (s *Service) Generate(ctx context.Context, caller auth.Identity, employeeID string, month, year int) (Payslip, error) {
	if !caller.IsAdmin() {
		return Payslip{}, ErrUnauthorized
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return Payslip{}, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	period, err := ResolvePeriod(month, year)
	if err != nil {
		return Payslip{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	employee, err := s.store.FindEmployee(ctx, employeeID)
	if err != nil {
		return Payslip{}, err
	}
	if !employee.BasicSalary.IsPositive() {
		return Payslip{}, ErrInvalidSalary
	}

	records, err := s.store.ListAttendance(ctx, employeeID, period.Start, period.End)
	if err != nil {
		return Payslip{}, err
	}
	leaves, err := s.store.ListApprovedLeaves(ctx, employeeID, period.Start, period.End)
	if err != nil {
		return Payslip{}, err
	}

	figures, err := Calculate(Input{
		BasicSalary:  employee.BasicSalary,
		WorkingDays:  period.WorkingDays,
		PresentDays:  CountPresentDays(records, period),
		UnpaidLeaves: CountUnpaidLeaves(leaves, period),
	})
	if err != nil {
		return Payslip{}, err
	}

	payslip := Payslip{EmployeeID: employeeID, Month: period.Month, Year: period.Year}
	payslip.ApplyFigures(figures)
	saved, err := s.store.UpsertPayslip(ctx, payslip)
	if err != nil {
		return Payslip{}, err
	}
	saved.Employee = employee.Summary()

	existing := !saved.CreatedAt.Equal(saved.UpdatedAt)
	s.metrics.PayslipGenerated(existing)
	if saved.Status == StatusPublished {
		s.logger.WarnContext(ctx, "published payslip regenerated",
			"payslip_id", saved.ID, "employee_id", employeeID, "period", period.String(), "actor", caller.UserID)
	}
	s.logger.InfoContext(ctx, "payslip generated",
		"payslip_id", saved.ID,
		"employee_id", employeeID,
		"period", period.String(),
		"unpaid_leaves", figures.UnpaidLeaves,
		"net_salary", formatMoney(figures.NetSalary),
	)
	return saved, nil
}

// Publish makes a payslip visible to its employee. Publishing twice is a no-op.
func (s *Service) Publish(ctx context.Context, caller auth.Identity, payslipID string) (Payslip, error) {
	if !caller.IsAdmin() {
		return Payslip{}, ErrUnauthorized
	}
	if !validPayslipID(payslipID) {
		return Payslip{}, ErrPayslipNotFound
	}
	payslip, err := s.store.PublishPayslip(ctx, payslipID)
	if err != nil {
		return Payslip{}, err
	}
	s.metrics.PayslipPublished()
	s.logger.InfoContext(ctx, "payslip published", "payslip_id", payslipID, "actor", caller.UserID)
	return payslip, nil
}

// List returns payslips newest period first. Employees only ever see their own
// published payslips, whatever the filter says.
func (s *Service) List(ctx context.Context, caller auth.Identity, filter Filter) ([]Payslip, error) {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, fmt.Errorf("%w: month %d outside 1-12", ErrInvalidPeriod, *filter.Month)
	}
	if filter.Year != nil && (*filter.Year < 1 || *filter.Year > 9999) {
		return nil, fmt.Errorf("%w: year %d", ErrInvalidPeriod, *filter.Year)
	}
	if !caller.IsAdmin() {
		if caller.EmployeeID == "" {
			return nil, ErrForbidden
		}
		own := caller.EmployeeID
		published := StatusPublished
		filter.EmployeeID = &own
		filter.Status = &published
	}
	return s.store.ListPayslips(ctx, filter)
}

// Get returns one payslip. An employee asking for somebody else's payslip gets
// ErrForbidden. Drafts stay hidden from their own employee too and are reported
// as not found until published.
func (s *Service) Get(ctx context.Context, caller auth.Identity, payslipID string) (Payslip, error) {
	if !validPayslipID(payslipID) {
		return Payslip{}, ErrPayslipNotFound
	}
	payslip, err := s.store.GetPayslip(ctx, payslipID)
	if err != nil {
		return Payslip{}, err
	}
	if caller.IsAdmin() {
		return payslip, nil
	}
	if !caller.Owns(payslip.EmployeeID) {
		return Payslip{}, ErrForbidden
	}
	if payslip.Status != StatusPublished {
		return Payslip{}, ErrPayslipNotFound
	}
	return payslip, nil
}

// RenderDocument produces the PDF for a payslip the caller may read.
func (s *Service) RenderDocument(ctx context.Context, caller auth.Identity, payslipID string) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payslip, err := s.Get(ctx, caller, payslipID)
	if err != nil {
		return Document{}, err
	}
	employee, err := s.store.FindEmployee(ctx, payslip.EmployeeID)
	if err != nil {
		return Document{}, err
	}
	doc, err := s.renderer.Render(payslip, employee)
	if err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.metrics.DocumentRendered()
	return doc, nil
}

// ExportRegister builds the spreadsheet of every payslip of a month.
func (s *Service) ExportRegister(ctx context.Context, caller auth.Identity, month, year int) (Document, error) {
	if !caller.IsAdmin() {
		return Document{}, ErrUnauthorized
	}
	period, err := ResolvePeriod(month, year)
	if err != nil {
		return Document{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payslips, err := s.store.ListPayslips(ctx, Filter{Month: &period.Month, Year: &period.Year})
	if err != nil {
		return Document{}, err
	}
	doc, err := BuildRegister(period, payslips)
	if err != nil {
		return Document{}, err
	}
	s.metrics.RegisterExported()
	s.logger.InfoContext(ctx, "payslip register exported", "period", period.String(), "rows", len(payslips), "actor", caller.UserID)
	return doc, nil
}

func validPayslipID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
