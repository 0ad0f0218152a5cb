package licensing

import (
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
)

// The fakes below implement the repository interfaces over plain maps guarded
// by one shared mutex, mirroring the row-level conditions of the SQL
// implementations (conditional seat updates, conditional invitation state
// transitions). memTx snapshots the store before the callback and restores it
// on error, so transactional rollback behaves like the real thing.

type memStore struct {
	mu            sync.Mutex
	txMu          sync.Mutex
	users         map[uint]*models.User
	institutions  map[uint]*models.Institution
	licenses      map[uint]*models.License
	invitations   map[uint]*models.Invitation
	notifications []*models.Notification
	nextID        uint
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uint]*models.User),
		institutions: make(map[uint]*models.Institution),
		licenses:     make(map[uint]*models.License),
		invitations:  make(map[uint]*models.Invitation),
		nextID:       1,
	}
}

func (s *memStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &memUserRepo{s},
		Institution:  &memInstitutionRepo{s},
		License:      &memLicenseRepo{s},
		Invitation:   &memInvitationRepo{s},
		Notification: &memNotificationRepo{s},
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	for id, u := range s.users {
		cu := *u
		c.users[id] = &cu
	}
	for id, i := range s.institutions {
		ci := *i
		c.institutions[id] = &ci
	}
	for id, l := range s.licenses {
		cl := *l
		c.licenses[id] = &cl
	}
	for id, inv := range s.invitations {
		cinv := *inv
		c.invitations[id] = &cinv
	}
	c.notifications = append(c.notifications, s.notifications...)
	return c
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.institutions = from.institutions
	s.licenses = from.licenses
	s.invitations = from.invitations
	s.notifications = from.notifications
	s.nextID = from.nextID
}

type memTx struct {
	store *memStore
}

func (t *memTx) WithTx(fn func(r *repository.Repositories) error) error {
	// Transactions run serialized, so a rollback can never clobber a
	// concurrently committed one.
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	backup := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(t.store.repositories()); err != nil {
		t.store.mu.Lock()
		t.store.restore(backup)
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// passthroughTx runs the callback directly against the shared store with no
// serialization and no rollback, the way two separate database transactions
// under snapshot reads can interleave. Used to verify that the row-level
// guards alone uphold the seat invariants.
type passthroughTx struct {
	store *memStore
}

func (t *passthroughTx) WithTx(fn func(r *repository.Repositories) error) error {
	return fn(t.store.repositories())
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.id()
	cu := *user
	r.s.users[user.ID] = &cu
	return nil
}

func (r *memUserRepo) GetByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cu := *u
	return &cu, nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cu := *u
			return &cu, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByActivationToken(token string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ActivationToken == token && token != "" {
			cu := *u
			return &cu, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cu := *user
	r.s.users[user.ID] = &cu
	return nil
}

func (r *memUserRepo) TransitionStatus(id uint, from, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if u.Status != from {
		return false, nil
	}
	u.Status = to
	return true, nil
}

func (r *memUserRepo) UpdateLastActive(id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastActiveAt = &at
	return nil
}

func (r *memUserRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *memUserRepo) List(offset, limit int) ([]models.User, error) {
	return nil, nil
}

func (r *memUserRepo) ListByInstitution(institutionID uint, offset, limit int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		if u.InstitutionID != nil && *u.InstitutionID == institutionID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) ListAdmins(institutionID uint) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		if u.InstitutionID != nil && *u.InstitutionID == institutionID &&
			u.Role == models.ROLE_ADMIN && u.Status == models.STATUS_ACTIVE {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *memUserRepo) CountActiveStudents(institutionID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if u.ConsumesSeat() && *u.InstitutionID == institutionID {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) Search(query string) ([]models.User, error) {
	return nil, nil
}

func (r *memUserRepo) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	return nil, nil
}

// --- institutions ---

type memInstitutionRepo struct{ s *memStore }

func (r *memInstitutionRepo) Create(institution *models.Institution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	institution.ID = r.s.id()
	ci := *institution
	r.s.institutions[institution.ID] = &ci
	return nil
}

func (r *memInstitutionRepo) GetByID(id uint) (*models.Institution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.institutions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	ci := *i
	return &ci, nil
}

func (r *memInstitutionRepo) GetByUUID(uuid string) (*models.Institution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.institutions {
		if i.UUID == uuid {
			ci := *i
			return &ci, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInstitutionRepo) GetByDomain(domain string) (*models.Institution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, i := range r.s.institutions {
		if i.IsActive && i.MatchesDomain(domain) {
			ci := *i
			return &ci, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInstitutionRepo) Update(institution *models.Institution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.institutions[institution.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	ci := *institution
	r.s.institutions[institution.ID] = &ci
	return nil
}

func (r *memInstitutionRepo) List(offset, limit int) ([]models.Institution, error) {
	return nil, nil
}

func (r *memInstitutionRepo) Count() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.institutions)), nil
}

// --- licenses ---

type memLicenseRepo struct{ s *memStore }

func (r *memLicenseRepo) Create(license *models.License) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.licenses {
		if l.InstitutionID == license.InstitutionID && l.IsActive {
			l.IsActive = false
		}
	}
	license.ID = r.s.id()
	license.CreatedAt = time.Now()
	cl := *license
	r.s.licenses[license.ID] = &cl
	return nil
}

func (r *memLicenseRepo) GetByID(id uint) (*models.License, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.licenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cl := *l
	return &cl, nil
}

func (r *memLicenseRepo) GetCurrent(institutionID uint) (*models.License, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var current *models.License
	now := time.Now()
	for _, l := range r.s.licenses {
		if l.InstitutionID != institutionID || !l.IsCurrent(now) {
			continue
		}
		if current == nil || l.CreatedAt.After(current.CreatedAt) {
			current = l
		}
	}
	if current == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cl := *current
	return &cl, nil
}

func (r *memLicenseRepo) SeatAvailability(institutionID uint) (*models.SeatAvailability, error) {
	license, err := r.GetCurrent(institutionID)
	if err != nil {
		return nil, err
	}
	return &models.SeatAvailability{
		Available:  license.HasSeatAvailable(),
		UsedSeats:  license.UsedSeats,
		TotalSeats: license.LicensedSeats,
	}, nil
}

func (r *memLicenseRepo) ConsumeSeat(licenseID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.licenses[licenseID]
	if !ok || !l.IsCurrent(time.Now()) {
		return repository.ErrSeatUnavailable
	}
	if l.LicensedSeats != nil && l.UsedSeats >= *l.LicensedSeats {
		return repository.ErrSeatUnavailable
	}
	l.UsedSeats++
	return nil
}

func (r *memLicenseRepo) ReleaseSeat(licenseID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.licenses[licenseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if l.UsedSeats > 0 {
		l.UsedSeats--
	}
	return nil
}

func (r *memLicenseRepo) ListByInstitution(institutionID uint) ([]models.License, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.License
	for _, l := range r.s.licenses {
		if l.InstitutionID == institutionID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memLicenseRepo) SumUsedSeats() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.licenses {
		if l.IsActive {
			n += int64(l.UsedSeats)
		}
	}
	return n, nil
}

// --- invitations ---

type memInvitationRepo struct{ s *memStore }

func (r *memInvitationRepo) Create(invitation *models.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	invitation.ID = r.s.id()
	ci := *invitation
	r.s.invitations[invitation.ID] = &ci
	return nil
}

func (r *memInvitationRepo) GetByID(id uint) (*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	ci := *inv
	return &ci, nil
}

func (r *memInvitationRepo) GetByUUID(uuid string) (*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.UUID == uuid {
			ci := *inv
			return &ci, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInvitationRepo) GetPendingByToken(token string) (*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.Token == token && inv.IsClaimable(time.Now()) {
			ci := *inv
			return &ci, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memInvitationRepo) Claim(id uint, userID uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok || inv.Status != models.INVITATION_PENDING {
		return repository.ErrNotPending
	}
	inv.Status = models.INVITATION_CLAIMED
	inv.ClaimedBy = &userID
	inv.ClaimedAt = &at
	return nil
}

func (r *memInvitationRepo) Cancel(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok || inv.Status != models.INVITATION_PENDING {
		return repository.ErrNotPending
	}
	inv.Status = models.INVITATION_EXPIRED
	return nil
}

func (r *memInvitationRepo) ListByInstitution(institutionID uint, offset, limit int) ([]models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Invitation
	for _, inv := range r.s.invitations {
		if inv.InstitutionID == institutionID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvitationRepo) CountPendingStudents(institutionID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	now := time.Now()
	for _, inv := range r.s.invitations {
		if inv.InstitutionID == institutionID && inv.Role == models.ROLE_STUDENT && inv.IsClaimable(now) {
			n++
		}
	}
	return n, nil
}

func (r *memInvitationRepo) HasPendingForEmail(institutionID uint, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for _, inv := range r.s.invitations {
		if inv.InstitutionID == institutionID && strings.EqualFold(inv.Email, email) && inv.IsClaimable(now) {
			return true, nil
		}
	}
	return false, nil
}

// --- notifications ---

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	notification.ID = r.s.id()
	cn := *notification
	r.s.notifications = append(r.s.notifications, &cn)
	return nil
}

func (r *memNotificationRepo) ListByUser(userID uint, offset, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(id uint, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- mailer ---

type sentMail struct {
	To      string
	Subject string
}

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *memMailer) Send(to string, subject string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errSendFailed
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *memMailer) sentTo(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.To == email {
			n++
		}
	}
	return n
}
