package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
	"nightwatch/backend/internal/repository"
	pkgerrors "nightwatch/backend/pkg/errors"
)

// In-memory repository doubles. The booking store enforces the same
// (schedule_id, shift_start, seat) uniqueness over active rows as the real
// index, and the points store enforces (booking_id, reason), so the
// concurrency and idempotency paths behave as in production.

type mockStores struct {
	users        *mockUserRepo
	schedules    *mockScheduleRepo
	bookings     *mockBookingRepo
	reports      *mockReportRepo
	points       *mockPointsRepo
	achievements *mockAchievementRepo
	audits       *mockAuditRepo
}

func newMockRepository() (*repository.Repository, *mockStores) {
	reports := &mockReportRepo{}
	stores := &mockStores{
		users:        &mockUserRepo{users: make(map[string]*model.User)},
		schedules:    &mockScheduleRepo{schedules: make(map[string]*model.Schedule)},
		bookings:     &mockBookingRepo{seats: make(map[seatKey]bool), reports: reports},
		reports:      reports,
		points:       &mockPointsRepo{keys: make(map[awardKey]bool)},
		achievements: &mockAchievementRepo{},
		audits:       &mockAuditRepo{},
	}
	repo := &repository.Repository{
		User:        stores.users,
		Schedule:    stores.schedules,
		Booking:     stores.bookings,
		Report:      stores.reports,
		Points:      stores.points,
		Achievement: stores.achievements,
		Audit:       stores.audits,
	}
	return repo, stores
}

// ── users ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// ── schedules ──

type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*model.Schedule
	deleted   map[string]bool
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if schedule.ScheduleID == "" {
		schedule.ScheduleID = uuid.NewString()
	}
	if schedule.Version == 0 {
		schedule.Version = 1
	}
	cp := *schedule
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok || m.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockScheduleRepo) GetByIDAny(_ context.Context, id string) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockScheduleRepo) List(_ context.Context) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]model.Schedule, 0, len(m.schedules))
	for id, s := range m.schedules {
		if m.deleted[id] {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ScheduleID < all[j].ScheduleID })
	return all, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, schedule *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.schedules[schedule.ScheduleID]
	if !ok || (m.deleted != nil && m.deleted[schedule.ScheduleID]) {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != schedule.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *schedule
	cp.Version++
	m.schedules[schedule.ScheduleID] = &cp
	schedule.Version = cp.Version
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.deleted == nil {
		m.deleted = make(map[string]bool)
	}
	m.deleted[id] = true
	return nil
}

// ── bookings ──

// seatKey mirrors the partial unique index over active bookings.
type seatKey struct {
	scheduleID string
	startUnix  int64
	seat       int
}

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings []model.Booking
	seats    map[seatKey]bool
	reports  *mockReportRepo
}

func (m *mockBookingRepo) key(b *model.Booking) seatKey {
	return seatKey{scheduleID: b.ScheduleID, startUnix: b.ShiftStart.Unix(), seat: b.Seat}
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(booking)
	if m.seats[key] {
		return gorm.ErrDuplicatedKey
	}
	if booking.BookingID == "" {
		booking.BookingID = uuid.NewString()
	}
	m.seats[key] = true
	m.bookings = append(m.bookings, *booking)
	return nil
}

func (m *mockBookingRepo) find(id string) *model.Booking {
	for i := range m.bookings {
		if m.bookings[i].BookingID == id {
			return &m.bookings[i]
		}
	}
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.find(id)
	if b == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

// countActive reports a slot's live occupancy, for assertions.
func (m *mockBookingRepo) countActive(scheduleID string, shiftStart time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.ScheduleID == scheduleID && b.ShiftStart.Equal(shiftStart) && !b.IsCancelled() {
			count++
		}
	}
	return count
}

func (m *mockBookingRepo) ListActiveInRange(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.IsCancelled() || b.ShiftStart.Before(from) || !b.ShiftStart.Before(to) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftStart.Before(out[j].ShiftStart) })
	return out, nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string, from, to time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.UserID != userID || b.IsCancelled() || b.ShiftStart.Before(from) || !b.ShiftStart.Before(to) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftStart.Before(out[j].ShiftStart) })
	return out, nil
}

func (m *mockBookingRepo) ListAllAscending(_ context.Context, offset, limit int) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Booking
	for i := range m.bookings {
		if !m.bookings[i].IsCancelled() {
			all = append(all, m.bookings[i])
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ShiftStart.Equal(all[j].ShiftStart) {
			return all[i].ShiftStart.Before(all[j].ShiftStart)
		}
		return all[i].BookingID < all[j].BookingID
	})
	if offset >= len(all) {
		return []model.Booking{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockBookingRepo) SetCheckedIn(_ context.Context, bookingID string, at time.Time, late bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.find(bookingID)
	if b == nil || b.CheckedInAt != nil || b.IsCancelled() {
		return false, nil
	}
	t := at
	b.CheckedInAt = &t
	b.LateCheckIn = late
	return true, nil
}

func (m *mockBookingRepo) SetCancelled(_ context.Context, bookingID, actorID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.find(bookingID)
	if b == nil || b.IsCancelled() {
		return false, nil
	}
	t := at
	actor := actorID
	b.CancelledAt = &t
	b.CancelledBy = &actor
	delete(m.seats, m.key(b))
	return true, nil
}

func (m *mockBookingRepo) FindActiveBySlotUser(_ context.Context, scheduleID string, shiftStart time.Time, userID string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.ScheduleID == scheduleID && b.ShiftStart.Equal(shiftStart) && b.UserID == userID && !b.IsCancelled() {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) CountCompletedByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	ids := make([]string, 0)
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.UserID == userID && !b.IsCancelled() {
			ids = append(ids, b.BookingID)
		}
	}
	m.mu.Unlock()

	var count int64
	for _, id := range ids {
		n, err := m.reports.CountByBooking(ctx, id)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			count++
		}
	}
	return count, nil
}

// ── reports ──

type mockReportRepo struct {
	mu      sync.Mutex
	reports []model.Report
	failFor map[string]error // bookingID -> injected ListByBooking error
}

func (m *mockReportRepo) Create(_ context.Context, report *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if report.ReportID == "" {
		report.ReportID = uuid.NewString()
	}
	m.reports = append(m.reports, *report)
	return nil
}

func (m *mockReportRepo) ListByBooking(_ context.Context, bookingID string) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[bookingID]; err != nil {
		return nil, err
	}
	var out []model.Report
	for _, r := range m.reports {
		if r.BookingID != nil && *r.BookingID == bookingID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockReportRepo) CountByBooking(_ context.Context, bookingID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.reports {
		if r.BookingID != nil && *r.BookingID == bookingID {
			count++
		}
	}
	return count, nil
}

func (m *mockReportRepo) MaxSeverityByBooking(_ context.Context, bookingID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := -1
	for _, r := range m.reports {
		if r.BookingID != nil && *r.BookingID == bookingID && r.Severity > max {
			max = r.Severity
		}
	}
	return max, nil
}

// ── points ledger ──

type awardKey struct {
	bookingID string
	reason    model.PointReason
}

type mockPointsRepo struct {
	mu      sync.Mutex
	entries []model.PointsEntry
	keys    map[awardKey]bool
}

func (m *mockPointsRepo) Insert(_ context.Context, entry *model.PointsEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.BookingID != nil {
		key := awardKey{bookingID: *entry.BookingID, reason: entry.Reason}
		if m.keys[key] {
			return pkgerrors.ErrDuplicateAward
		}
		m.keys[key] = true
	}
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockPointsRepo) Exists(_ context.Context, bookingID string, reason model.PointReason) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[awardKey{bookingID: bookingID, reason: reason}], nil
}

func (m *mockPointsRepo) SumByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for i := range m.entries {
		if m.entries[i].UserID == userID {
			total += m.entries[i].Value()
		}
	}
	return total, nil
}

func (m *mockPointsRepo) ListByUser(_ context.Context, userID string, offset, limit int) ([]model.PointsEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.PointsEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.PointsEntry{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockPointsRepo) Leaderboard(_ context.Context, limit int) ([]repository.LeaderboardRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[string]int)
	for i := range m.entries {
		totals[m.entries[i].UserID] += m.entries[i].Value()
	}
	rows := make([]repository.LeaderboardRow, 0, len(totals))
	for userID, total := range totals {
		rows = append(rows, repository.LeaderboardRow{UserID: userID, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// entriesFor returns the ledger rows for one booking, for assertions.
func (m *mockPointsRepo) entriesFor(bookingID string) []model.PointsEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PointsEntry
	for _, e := range m.entries {
		if e.BookingID != nil && *e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out
}

// ── achievements ──

type mockAchievementRepo struct {
	mu   sync.Mutex
	defs []model.Achievement
}

func (m *mockAchievementRepo) List(_ context.Context) ([]model.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Achievement, len(m.defs))
	copy(out, m.defs)
	return out, nil
}

// ── audit ──

type mockAuditRepo struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (m *mockAuditRepo) Record(_ context.Context, e *model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, eventType string, offset, limit int) ([]model.AuditEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.AuditEvent
	for _, e := range m.events {
		if eventType == "" || e.EventType == eventType {
			all = append(all, e)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.AuditEvent{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
