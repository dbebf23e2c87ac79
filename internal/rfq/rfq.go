// Package rfq turns the staged vendor assignments of an enquiry into an RFQ
// request and submits it.
package rfq

import (
	"context"
	"errors"
	"sync"

	"enquiry-admin-console/internal/assignment"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/models"

	"go.uber.org/zap"
)

var (
	ErrNothingToSend      = errors.New("no vendors are assigned to any product of this enquiry")
	ErrSubmissionInFlight = errors.New("an RFQ for this enquiry is already being sent")
)

// Sender is the backend call that dispatches an RFQ.
type Sender interface {
	SendRFQ(ctx context.Context, token, enquiryID string, req models.SendRFQRequest) (backend.RFQAck, error)
}

// BuildRequest lists, in enquiry order, every line with at least one assigned
// vendor. Lines without an id or without vendors are left out.
func BuildRequest(products []models.EnquiryProduct, current assignment.Assignments) models.SendRFQRequest {
	req := models.SendRFQRequest{Assignments: []models.RFQAssignment{}}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		vendors := current[p.ID]
		if len(vendors) == 0 {
			continue
		}
		ids := make([]string, 0, len(vendors))
		for _, v := range vendors {
			ids = append(ids, v.ID)
		}
		req.Assignments = append(req.Assignments, models.RFQAssignment{
			EnquiryProductID: p.ID,
			VendorIDs:        ids,
		})
	}
	return req
}

// VendorRFQCount is the number of (line, vendor) pairs in req.
func VendorRFQCount(req models.SendRFQRequest) int {
	total := 0
	for _, a := range req.Assignments {
		total += len(a.VendorIDs)
	}
	return total
}

// MarkAssigned flips every line included in req to Assigned. This is an
// optimistic local patch; the enquiry is not re-fetched and can drift from
// the backend's view until the next reload. It returns the number of lines
// changed.
func MarkAssigned(e *models.Enquiry, req models.SendRFQRequest) int {
	included := make(map[string]bool, len(req.Assignments))
	for _, a := range req.Assignments {
		if len(a.VendorIDs) > 0 {
			included[a.EnquiryProductID] = true
		}
	}
	changed := 0
	for i := range e.EnquiryProducts {
		if included[e.EnquiryProducts[i].ID] {
			e.EnquiryProducts[i].Status = models.ProductStatusAssigned
			changed++
		}
	}
	return changed
}

// Submitter sends RFQs, allowing one submission per enquiry at a time.
type Submitter struct {
	sender   Sender
	logger   *zap.Logger
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewSubmitter(sender Sender, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{sender: sender, logger: logger, inFlight: make(map[string]bool)}
}

// Submit builds the request for the enquiry's lines and sends it. No call is
// made when the request would be empty. Nothing is retried.
func (s *Submitter) Submit(ctx context.Context, token string, e models.Enquiry, current assignment.Assignments) (models.SendRFQRequest, backend.RFQAck, error) {
	req := BuildRequest(e.EnquiryProducts, current)
	if e.ID == "" || len(req.Assignments) == 0 {
		return req, backend.RFQAck{}, ErrNothingToSend
	}

	if !s.acquire(e.ID) {
		return req, backend.RFQAck{}, ErrSubmissionInFlight
	}
	defer s.release(e.ID)

	ack, err := s.sender.SendRFQ(ctx, token, e.ID, req)
	if err != nil {
		s.logger.Error("Failed to send RFQ", zap.String("enquiry_id", e.ID), zap.Error(err))
		return req, backend.RFQAck{}, err
	}
	s.logger.Info("RFQ sent",
		zap.String("enquiry_id", e.ID),
		zap.Int("products", len(req.Assignments)),
		zap.Int("vendor_rfqs", VendorRFQCount(req)),
	)
	return req, ack, nil
}

func (s *Submitter) acquire(enquiryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[enquiryID] {
		return false
	}
	s.inFlight[enquiryID] = true
	return true
}

func (s *Submitter) release(enquiryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, enquiryID)
}
