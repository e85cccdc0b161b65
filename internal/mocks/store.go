package mocks

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// OutboxEvent is an event enqueued by a committed approval.
type OutboxEvent struct {
	ID      string
	Type    string
	Payload []byte
}

// MemoryStore is an in-memory ports.RecordStore for service tests.
//
// Errors can be injected per operation with SetError, using the method name
// as the key ("CreateNotification", "SetRequestStatus", ...). RunInTx
// serializes transactions and restores the pre-transaction state when the
// callback fails, so atomicity can be asserted without a database.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextID        int64
	users         map[int64]domain.User
	donors        map[int64]domain.Donor
	patients      map[int64]domain.Patient
	requests      map[int64]domain.BloodRequest
	donations     map[int64]domain.Donation
	notifications map[int64]domain.Notification
	events        []OutboxEvent

	errs  map[string]error
	calls map[string]int
}

var _ ports.RecordStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.Reset()
	return s
}

// Reset clears all data, injected errors and call counts.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = 0
	s.users = make(map[int64]domain.User)
	s.donors = make(map[int64]domain.Donor)
	s.patients = make(map[int64]domain.Patient)
	s.requests = make(map[int64]domain.BloodRequest)
	s.donations = make(map[int64]domain.Donation)
	s.notifications = make(map[int64]domain.Notification)
	s.events = nil
	s.errs = make(map[string]error)
	s.calls = make(map[string]int)
}

// SetError makes op fail with err until cleared with a nil err.
func (s *MemoryStore) SetError(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

// CallCount returns how many times op was invoked.
func (s *MemoryStore) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records a call to op and returns its injected error. Callers hold mu.
func (s *MemoryStore) enter(op string) error {
	s.calls[op]++
	return s.errs[op]
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// claim returns id, or a fresh id when id is zero, keeping later ids unique.
func (s *MemoryStore) claim(id int64) int64 {
	if id == 0 {
		return s.id()
	}
	s.nextID = max(s.nextID, id)
	return id
}

// Seeding helpers.

func (s *MemoryStore) AddUser(username, email string, role domain.Role) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: s.id(), Username: username, Email: email, Role: role}
	s.users[u.ID] = u
	return u
}

func (s *MemoryStore) AddDonor(d domain.Donor) domain.Donor {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.claim(d.ID)
	s.donors[d.ID] = d
	return d
}

func (s *MemoryStore) AddPatient(p domain.Patient) domain.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.claim(p.ID)
	s.patients[p.ID] = p
	return p
}

func (s *MemoryStore) AddRequest(r domain.BloodRequest) domain.BloodRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.claim(r.ID)
	if r.Status == "" {
		r.Status = domain.RequestPending
	}
	s.requests[r.ID] = r
	return r
}

func (s *MemoryStore) AddNotification(n domain.Notification) domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.claim(n.ID)
	s.notifications[n.ID] = n
	return n
}

// Inspection helpers.

func (s *MemoryStore) Request(id int64) (domain.BloodRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	return r, ok
}

func (s *MemoryStore) Donor(id int64) (domain.Donor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[id]
	return d, ok
}

func (s *MemoryStore) Donations() []domain.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedByID(s.donations, func(d domain.Donation) int64 { return d.ID })
}

func (s *MemoryStore) NotificationsFor(userID int64) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range sortedByID(s.notifications, func(n domain.Notification) int64 { return n.ID }) {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *MemoryStore) Events() []OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func sortedByID[T any](m map[int64]T, id func(T) int64) []T {
	out := slices.Collect(maps.Values(m))
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

// ProfileRepository

func (s *MemoryStore) GetDonorByUser(_ context.Context, userID int64) (*domain.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetDonorByUser"); err != nil {
		return nil, err
	}
	for _, d := range s.donors {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) GetPatientByUser(_ context.Context, userID int64) (*domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetPatientByUser"); err != nil {
		return nil, err
	}
	for _, p := range s.patients {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) CreateDonor(_ context.Context, donor domain.Donor) (*domain.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateDonor"); err != nil {
		return nil, err
	}
	for _, d := range s.donors {
		if d.UserID == donor.UserID {
			return nil, domain.ErrConflict
		}
	}
	donor.ID = s.id()
	s.donors[donor.ID] = donor
	return &donor, nil
}

func (s *MemoryStore) CreatePatient(_ context.Context, patient domain.Patient) (*domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreatePatient"); err != nil {
		return nil, err
	}
	for _, p := range s.patients {
		if p.UserID == patient.UserID {
			return nil, domain.ErrConflict
		}
	}
	patient.ID = s.id()
	s.patients[patient.ID] = patient
	return &patient, nil
}

func (s *MemoryStore) SetDonorAvailability(_ context.Context, donorID int64, availability domain.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetDonorAvailability"); err != nil {
		return err
	}
	d, ok := s.donors[donorID]
	if !ok {
		return domain.ErrNotFound
	}
	d.Availability = availability
	s.donors[donorID] = d
	return nil
}

// MatchRepository

func (s *MemoryStore) ListPendingRequestsByCityAndGroup(_ context.Context, city, bloodGroup string) ([]domain.PatientMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPendingRequestsByCityAndGroup"); err != nil {
		return nil, err
	}
	out := make([]domain.PatientMatch, 0)
	for _, r := range sortedByID(s.requests, func(r domain.BloodRequest) int64 { return r.ID }) {
		p, ok := s.patients[r.PatientID]
		if !ok || p.City != city || r.BloodGroup != bloodGroup || r.Status != domain.RequestPending {
			continue
		}
		u := s.users[p.UserID]
		out = append(out, domain.PatientMatch{Patient: p, Request: r, Username: u.Username, Email: u.Email})
	}
	return out, nil
}

func (s *MemoryStore) ListAvailableDonorsByCityAndGroup(_ context.Context, city, bloodGroup string) ([]domain.DonorMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAvailableDonorsByCityAndGroup"); err != nil {
		return nil, err
	}
	out := make([]domain.DonorMatch, 0)
	for _, d := range sortedByID(s.donors, func(d domain.Donor) int64 { return d.ID }) {
		if d.City != city || d.BloodGroup != bloodGroup || d.Availability != domain.Available {
			continue
		}
		u := s.users[d.UserID]
		out = append(out, domain.DonorMatch{Donor: d, Username: u.Username, Email: u.Email})
	}
	return out, nil
}

// RequestRepository

func (s *MemoryStore) GetRequest(_ context.Context, requestID int64) (*domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetRequest"); err != nil {
		return nil, err
	}
	r, ok := s.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) CreateRequest(_ context.Context, req domain.BloodRequest) (*domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateRequest"); err != nil {
		return nil, err
	}
	req.ID = s.id()
	s.requests[req.ID] = req
	return &req, nil
}

func (s *MemoryStore) ListRequestsByPatient(_ context.Context, patientID int64) ([]domain.BloodRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListRequestsByPatient"); err != nil {
		return nil, err
	}
	out := make([]domain.BloodRequest, 0)
	for _, r := range s.requests {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.BloodRequest) int {
		if c := b.RequestedAt.Compare(a.RequestedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MemoryStore) ListDonationsByDonor(_ context.Context, donorID int64) ([]domain.DonationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDonationsByDonor"); err != nil {
		return nil, err
	}
	out := make([]domain.DonationSummary, 0)
	for _, d := range s.donations {
		if d.DonorID != donorID {
			continue
		}
		r := s.requests[d.RequestID]
		out = append(out, domain.DonationSummary{Donation: d, BloodGroup: r.BloodGroup, UnitsRequired: r.UnitsRequired})
	}
	slices.SortFunc(out, func(a, b domain.DonationSummary) int {
		if c := b.DonatedAt.Compare(a.DonatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// NotificationRepository

func (s *MemoryStore) FindNotification(_ context.Context, userID int64, sig domain.Signature) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindNotification"); err != nil {
		return nil, err
	}
	for _, n := range s.notifications {
		if n.UserID == userID && n.Signature == sig {
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) CreateNotification(_ context.Context, n domain.Notification) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateNotification"); err != nil {
		return nil, err
	}
	for _, existing := range s.notifications {
		if existing.UserID == n.UserID && existing.Signature == n.Signature {
			return nil, domain.ErrConflict
		}
	}
	n.ID = s.id()
	s.notifications[n.ID] = n
	return &n, nil
}

func (s *MemoryStore) ListNotificationsByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListNotificationsByUser"); err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b domain.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, notificationID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("MarkNotificationRead"); err != nil {
		return err
	}
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return domain.ErrNotFound
	}
	n.Status = domain.NotificationRead
	s.notifications[notificationID] = n
	return nil
}

// AdminRepository

func (s *MemoryStore) count(op string, size func() int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(op); err != nil {
		return 0, err
	}
	return int64(size()), nil
}

func (s *MemoryStore) CountDonors(context.Context) (int64, error) {
	return s.count("CountDonors", func() int { return len(s.donors) })
}

func (s *MemoryStore) CountPatients(context.Context) (int64, error) {
	return s.count("CountPatients", func() int { return len(s.patients) })
}

func (s *MemoryStore) CountRequests(context.Context) (int64, error) {
	return s.count("CountRequests", func() int { return len(s.requests) })
}

func (s *MemoryStore) CountDonations(context.Context) (int64, error) {
	return s.count("CountDonations", func() int { return len(s.donations) })
}

func (s *MemoryStore) ListDonors(context.Context) ([]domain.DonorDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDonors"); err != nil {
		return nil, err
	}
	out := make([]domain.DonorDetail, 0, len(s.donors))
	for _, d := range sortedByID(s.donors, func(d domain.Donor) int64 { return d.ID }) {
		u := s.users[d.UserID]
		out = append(out, domain.DonorDetail{Donor: d, Username: u.Username, Email: u.Email})
	}
	return out, nil
}

func (s *MemoryStore) ListPatients(context.Context) ([]domain.PatientDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListPatients"); err != nil {
		return nil, err
	}
	out := make([]domain.PatientDetail, 0, len(s.patients))
	for _, p := range sortedByID(s.patients, func(p domain.Patient) int64 { return p.ID }) {
		u := s.users[p.UserID]
		out = append(out, domain.PatientDetail{Patient: p, Username: u.Username, Email: u.Email})
	}
	return out, nil
}

func (s *MemoryStore) ListRequests(context.Context) ([]domain.RequestDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListRequests"); err != nil {
		return nil, err
	}
	out := make([]domain.RequestDetail, 0, len(s.requests))
	for _, r := range sortedByID(s.requests, func(r domain.BloodRequest) int64 { return r.ID }) {
		p := s.patients[r.PatientID]
		u := s.users[p.UserID]
		out = append(out, domain.RequestDetail{
			BloodRequest:  r,
			HospitalName:  p.HospitalName,
			City:          p.City,
			ContactNumber: p.ContactNumber,
			Username:      u.Username,
			Email:         u.Email,
		})
	}
	return out, nil
}

func (s *MemoryStore) ListDonations(context.Context) ([]domain.DonationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDonations"); err != nil {
		return nil, err
	}
	out := make([]domain.DonationDetail, 0, len(s.donations))
	for _, d := range sortedByID(s.donations, func(d domain.Donation) int64 { return d.ID }) {
		donor, patient, req := s.donors[d.DonorID], s.patients[d.PatientID], s.requests[d.RequestID]
		du, pu := s.users[donor.UserID], s.users[patient.UserID]
		out = append(out, domain.DonationDetail{
			Donation:      d,
			DonorName:     du.Username,
			DonorEmail:    du.Email,
			PatientName:   pu.Username,
			PatientEmail:  pu.Email,
			BloodGroup:    req.BloodGroup,
			UnitsRequired: req.UnitsRequired,
			Urgency:       req.Urgency,
			HospitalName:  patient.HospitalName,
		})
	}
	return out, nil
}

// TxRunner

type snapshot struct {
	nextID    int64
	requests  map[int64]domain.BloodRequest
	donations map[int64]domain.Donation
	events    []OutboxEvent
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(tx ports.LifecycleTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	if err := s.enter("RunInTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := snapshot{
		nextID:    s.nextID,
		requests:  maps.Clone(s.requests),
		donations: maps.Clone(s.donations),
		events:    slices.Clone(s.events),
	}
	s.mu.Unlock()

	if err := fn(&memoryTx{s: s}); err != nil {
		s.mu.Lock()
		s.nextID = snap.nextID
		s.requests = snap.requests
		s.donations = snap.donations
		s.events = snap.events
		s.mu.Unlock()
		return err
	}
	return nil
}

type memoryTx struct {
	s *MemoryStore
}

func (t *memoryTx) GetRequestForUpdate(_ context.Context, requestID int64) (*domain.BloodRequest, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter("GetRequestForUpdate"); err != nil {
		return nil, err
	}
	r, ok := t.s.requests[requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (t *memoryTx) CreateDonation(_ context.Context, d domain.Donation) (*domain.Donation, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter("CreateDonation"); err != nil {
		return nil, err
	}
	for _, existing := range t.s.donations {
		if existing.RequestID == d.RequestID {
			return nil, domain.ErrConflict
		}
	}
	d.ID = t.s.id()
	t.s.donations[d.ID] = d
	return &d, nil
}

func (t *memoryTx) SetRequestStatus(_ context.Context, requestID int64, from, to domain.RequestStatus) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter("SetRequestStatus"); err != nil {
		return err
	}
	r, ok := t.s.requests[requestID]
	if !ok || r.Status != from {
		return domain.ErrStaleState
	}
	r.Status = to
	t.s.requests[requestID] = r
	return nil
}

func (t *memoryTx) EnqueueEvent(_ context.Context, eventID, eventType string, payload []byte) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter("EnqueueEvent"); err != nil {
		return err
	}
	t.s.events = append(t.s.events, OutboxEvent{ID: eventID, Type: eventType, Payload: slices.Clone(payload)})
	return nil
}
