// Package repositorytest menyediakan repository.Store in-memory untuk unit test
// service dan controller.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	dokterModels "github.com/c14220110/poliklinik-billing/internal/dokter/models"
	manajemenModels "github.com/c14220110/poliklinik-billing/internal/manajemen/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

type data struct {
	seq       int64
	poli      map[int64]string
	pasien    map[int64]models.Pasien
	kunjungan map[int64]models.Kunjungan
	obat      map[int64]dokterModels.Obat
	tindakan  map[int64]dokterModels.Tindakan
	billing   map[int64]models.Billing
	items     []models.BillingItem
	payments  []models.Payment
	karyawan  map[string]models.Karyawan
}

func (d *data) clone() *data {
	c := &data{
		seq:       d.seq,
		poli:      make(map[int64]string, len(d.poli)),
		pasien:    make(map[int64]models.Pasien, len(d.pasien)),
		kunjungan: make(map[int64]models.Kunjungan, len(d.kunjungan)),
		obat:      make(map[int64]dokterModels.Obat, len(d.obat)),
		tindakan:  make(map[int64]dokterModels.Tindakan, len(d.tindakan)),
		billing:   make(map[int64]models.Billing, len(d.billing)),
		items:     append([]models.BillingItem(nil), d.items...),
		payments:  append([]models.Payment(nil), d.payments...),
		karyawan:  make(map[string]models.Karyawan, len(d.karyawan)),
	}
	for k, v := range d.poli {
		c.poli[k] = v
	}
	for k, v := range d.pasien {
		c.pasien[k] = v
	}
	for k, v := range d.kunjungan {
		c.kunjungan[k] = v
	}
	for k, v := range d.obat {
		c.obat[k] = v
	}
	for k, v := range d.tindakan {
		c.tindakan[k] = v
	}
	for k, v := range d.billing {
		c.billing[k] = v
	}
	for k, v := range d.karyawan {
		c.karyawan[k] = v
	}
	return c
}

type state struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    *data
	fail map[string]error
}

// Store adalah fake repository.Store. WithTx dijalankan satu per satu (seperti
// SELECT ... FOR UPDATE pada baris yang sama) dan di-rollback bila fn gagal.
type Store struct {
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{
		d: &data{
			poli:      map[int64]string{},
			pasien:    map[int64]models.Pasien{},
			kunjungan: map[int64]models.Kunjungan{},
			obat:      map[int64]dokterModels.Obat{},
			tindakan:  map[int64]dokterModels.Tindakan{},
			billing:   map[int64]models.Billing{},
			karyawan:  map[string]models.Karyawan{},
		},
		fail: map[string]error{},
	}}
}

// FailOn membuat method bernama method mengembalikan err pada pemanggilan berikutnya.
func (s *Store) FailOn(method string, err error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.fail[method] = err
}

func (s *Store) lock(method string) (*data, func(), error) {
	s.st.mu.Lock()
	if err, ok := s.st.fail[method]; ok {
		delete(s.st.fail, method)
		s.st.mu.Unlock()
		return nil, nil, err
	}
	return s.st.d, s.st.mu.Unlock, nil
}

func (d *data) nextID() int64 {
	d.seq++
	return d.seq
}

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.Lock()
	snapshot := s.st.d.clone()
	s.st.mu.Unlock()

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.d = snapshot
		s.st.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, unlock, err := s.lock("Ping")
	if err != nil {
		return err
	}
	unlock()
	return nil
}

// Seed helpers.

func (s *Store) SeedPoli(id int64, nama string) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.d.poli[id] = nama
}

func (s *Store) SeedPasien(p models.Pasien) int64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.d.nextID()
	}
	if p.NomorRM == "" {
		p.NomorRM = fmt.Sprintf("RM-%06d", p.ID)
	}
	s.st.d.pasien[p.ID] = p
	return p.ID
}

func (s *Store) SeedKunjungan(k models.Kunjungan) int64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if k.ID == 0 {
		k.ID = s.st.d.nextID()
	}
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	s.st.d.kunjungan[k.ID] = k
	return k.ID
}

func (s *Store) SeedObat(o dokterModels.Obat) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.d.obat[o.IDObat] = o
}

func (s *Store) SeedTindakan(t dokterModels.Tindakan) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.d.tindakan[t.IDTindakan] = t
}

func (s *Store) SeedKaryawan(k models.Karyawan) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.d.karyawan[k.Username] = k
}

// SeedBilling menyimpan billing apa adanya; status tidak dihitung ulang.
func (s *Store) SeedBilling(b models.Billing) int64 {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.st.d.nextID()
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusUnpaid
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
		b.UpdatedAt = b.CreatedAt
	}
	s.st.d.billing[b.ID] = b
	return b.ID
}

func (s *Store) SeedBillingItem(it models.BillingItem) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if it.ID == 0 {
		it.ID = s.st.d.nextID()
	}
	s.st.d.items = append(s.st.d.items, it)
}

func (s *Store) SeedPayment(p models.Payment) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.st.d.nextID()
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now()
	}
	s.st.d.payments = append(s.st.d.payments, p)
}

// KunjunganRepository

func (s *Store) FindPasienByNIK(ctx context.Context, nik string) (*models.Pasien, error) {
	d, unlock, err := s.lock("FindPasienByNIK")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, p := range d.pasien {
		if p.NIK == nik {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetPasien(ctx context.Context, id int64) (*models.Pasien, error) {
	d, unlock, err := s.lock("GetPasien")
	if err != nil {
		return nil, err
	}
	defer unlock()
	p, ok := d.pasien[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreatePasien(ctx context.Context, p *models.Pasien) error {
	d, unlock, err := s.lock("CreatePasien")
	if err != nil {
		return err
	}
	defer unlock()
	for _, existing := range d.pasien {
		if existing.NIK == p.NIK {
			return fmt.Errorf("duplicate nik %s", p.NIK)
		}
	}
	p.ID = d.nextID()
	p.NomorRM = fmt.Sprintf("RM-%06d", p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	d.pasien[p.ID] = *p
	return nil
}

func (s *Store) CountKunjunganOn(ctx context.Context, idPoli int64, day time.Time) (int, error) {
	d, unlock, err := s.lock("CountKunjunganOn")
	if err != nil {
		return 0, err
	}
	defer unlock()
	y, m, dd := day.Date()
	n := 0
	for _, k := range d.kunjungan {
		ky, km, kd := k.CreatedAt.In(day.Location()).Date()
		if k.IDPoli == idPoli && ky == y && km == m && kd == dd {
			n++
		}
	}
	return n, nil
}

func (s *Store) PoliExists(ctx context.Context, idPoli int64) (bool, error) {
	d, unlock, err := s.lock("PoliExists")
	if err != nil {
		return false, err
	}
	defer unlock()
	_, ok := d.poli[idPoli]
	return ok, nil
}

func (s *Store) ListPoliklinik(ctx context.Context) ([]models.Poliklinik, error) {
	d, unlock, err := s.lock("ListPoliklinik")
	if err != nil {
		return nil, err
	}
	defer unlock()
	list := []models.Poliklinik{}
	for id, nama := range d.poli {
		list = append(list, models.Poliklinik{IDPoli: id, NamaPoli: nama})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].NamaPoli < list[j].NamaPoli })
	return list, nil
}

func (s *Store) CreateKunjungan(ctx context.Context, k *models.Kunjungan) error {
	d, unlock, err := s.lock("CreateKunjungan")
	if err != nil {
		return err
	}
	defer unlock()
	for _, existing := range d.kunjungan {
		if existing.NomorKunjungan == k.NomorKunjungan {
			return fmt.Errorf("duplicate nomor kunjungan %s", k.NomorKunjungan)
		}
	}
	k.ID = d.nextID()
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	d.kunjungan[k.ID] = *k
	return nil
}

func (s *Store) GetKunjungan(ctx context.Context, id int64, forUpdate bool) (*models.Kunjungan, error) {
	d, unlock, err := s.lock("GetKunjungan")
	if err != nil {
		return nil, err
	}
	defer unlock()
	k, ok := d.kunjungan[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &k, nil
}

func (s *Store) LockRekamMedis(ctx context.Context, id, lockedBy int64, at time.Time) error {
	d, unlock, err := s.lock("LockRekamMedis")
	if err != nil {
		return err
	}
	defer unlock()
	k, ok := d.kunjungan[id]
	if !ok || k.LockedAt != nil {
		return repository.ErrNotFound
	}
	k.LockedAt = &at
	k.LockedBy = &lockedBy
	d.kunjungan[id] = k
	return nil
}

// BillingRepository

func (s *Store) GetBillingByVisit(ctx context.Context, visitID int64, forUpdate bool) (*models.Billing, error) {
	d, unlock, err := s.lock("GetBillingByVisit")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, b := range d.billing {
		if b.VisitID == visitID {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetBilling(ctx context.Context, billingID int64, forUpdate bool) (*models.Billing, error) {
	d, unlock, err := s.lock("GetBilling")
	if err != nil {
		return nil, err
	}
	defer unlock()
	b, ok := d.billing[billingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s *Store) CreateBilling(ctx context.Context, b *models.Billing) error {
	d, unlock, err := s.lock("CreateBilling")
	if err != nil {
		return err
	}
	defer unlock()
	for _, existing := range d.billing {
		if existing.VisitID == b.VisitID {
			return fmt.Errorf("duplicate billing for kunjungan %d", b.VisitID)
		}
	}
	b.ID = d.nextID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusUnpaid
	}
	d.billing[b.ID] = *b
	return nil
}

func (s *Store) UpdateBillingTotals(ctx context.Context, b *models.Billing) error {
	d, unlock, err := s.lock("UpdateBillingTotals")
	if err != nil {
		return err
	}
	defer unlock()
	existing, ok := d.billing[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now()
	}
	existing.Subtotal = b.Subtotal
	existing.ConsultationFee = b.ConsultationFee
	existing.Discount = b.Discount
	existing.DiscountPercentage = b.DiscountPercentage
	existing.InsuranceCoverage = b.InsuranceCoverage
	existing.TotalAmount = b.TotalAmount
	existing.PaymentStatus = b.PaymentStatus
	existing.UpdatedAt = b.UpdatedAt
	d.billing[b.ID] = existing
	return nil
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, billingID int64, status models.PaymentStatus, at time.Time) error {
	d, unlock, err := s.lock("UpdatePaymentStatus")
	if err != nil {
		return err
	}
	defer unlock()
	b, ok := d.billing[billingID]
	if !ok {
		return repository.ErrNotFound
	}
	b.PaymentStatus = status
	b.UpdatedAt = at
	d.billing[billingID] = b
	return nil
}

func (s *Store) AddBillingItem(ctx context.Context, item *models.BillingItem) error {
	d, unlock, err := s.lock("AddBillingItem")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := d.billing[item.BillingID]; !ok {
		return repository.ErrNotFound
	}
	item.ID = d.nextID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	d.items = append(d.items, *item)
	return nil
}

func (s *Store) ListBillingItems(ctx context.Context, billingID int64) ([]models.BillingItem, error) {
	d, unlock, err := s.lock("ListBillingItems")
	if err != nil {
		return nil, err
	}
	defer unlock()
	items := []models.BillingItem{}
	for _, it := range d.items {
		if it.BillingID == billingID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	d, unlock, err := s.lock("CreatePayment")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := d.billing[p.BillingID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range d.payments {
		if existing.ReceiptNumber == p.ReceiptNumber {
			return fmt.Errorf("duplicate nomor kwitansi %s", p.ReceiptNumber)
		}
	}
	p.ID = d.nextID()
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now()
	}
	d.payments = append(d.payments, *p)
	return nil
}

func (s *Store) ListPayments(ctx context.Context, billingID int64) ([]models.Payment, error) {
	d, unlock, err := s.lock("ListPayments")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return paymentsOf(d, billingID), nil
}

func paymentsOf(d *data, billingID int64) []models.Payment {
	out := []models.Payment{}
	for _, p := range d.payments {
		if p.BillingID == billingID {
			out = append(out, p)
		}
	}
	return out
}

func sumOf(d *data, billingID int64) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range paymentsOf(d, billingID) {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func (s *Store) SumPayments(ctx context.Context, billingID int64) (decimal.Decimal, error) {
	d, unlock, err := s.lock("SumPayments")
	if err != nil {
		return decimal.Zero, err
	}
	defer unlock()
	return sumOf(d, billingID), nil
}

func queueEntry(d *data, k models.Kunjungan, b models.Billing) models.QueueEntry {
	p := d.pasien[k.IDPasien]
	paid := sumOf(d, b.ID)
	e := models.QueueEntry{
		VisitID:             k.ID,
		VisitNumber:         k.NomorKunjungan,
		PatientName:         p.Nama,
		MedicalRecordNumber: p.NomorRM,
		NationalID:          p.NIK,
		BPJSNumber:          p.NoBPJS,
		PoliName:            d.poli[k.IDPoli],
		VisitType:           k.VisitType,
		Payer:               k.Payer,
		BillingID:           b.ID,
		TotalAmount:         b.TotalAmount,
		PaidAmount:          paid,
		RemainingAmount:     decimal.Max(decimal.Zero, b.TotalAmount.Sub(paid)),
		PaymentStatus:       b.PaymentStatus,
		LockedAt:            k.LockedAt,
	}
	return e
}

func billingOf(d *data, visitID int64) (models.Billing, bool) {
	for _, b := range d.billing {
		if b.VisitID == visitID {
			return b, true
		}
	}
	return models.Billing{}, false
}

func (s *Store) ListBillingQueue(ctx context.Context) ([]models.QueueEntry, error) {
	d, unlock, err := s.lock("ListBillingQueue")
	if err != nil {
		return nil, err
	}
	defer unlock()

	queue := []models.QueueEntry{}
	for _, k := range d.kunjungan {
		if k.LockedAt == nil {
			continue
		}
		b, ok := billingOf(d, k.ID)
		if !ok || b.PaymentStatus == models.PaymentStatusPaid {
			continue
		}
		queue = append(queue, queueEntry(d, k, b))
	}
	sort.Slice(queue, func(i, j int) bool {
		if !queue[i].LockedAt.Equal(*queue[j].LockedAt) {
			return queue[i].LockedAt.Before(*queue[j].LockedAt)
		}
		return queue[i].VisitID < queue[j].VisitID
	})
	return queue, nil
}

func (s *Store) GetQueueEntry(ctx context.Context, visitID int64) (*models.QueueEntry, error) {
	d, unlock, err := s.lock("GetQueueEntry")
	if err != nil {
		return nil, err
	}
	defer unlock()
	k, ok := d.kunjungan[visitID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	b, ok := billingOf(d, visitID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	e := queueEntry(d, k, b)
	return &e, nil
}

func (s *Store) ListBilling(ctx context.Context, status *models.PaymentStatus, limit, offset int) ([]models.BillingSummary, int, error) {
	d, unlock, err := s.lock("ListBilling")
	if err != nil {
		return nil, 0, err
	}
	defer unlock()

	all := []models.BillingSummary{}
	for _, b := range d.billing {
		if status != nil && b.PaymentStatus != *status {
			continue
		}
		k := d.kunjungan[b.VisitID]
		all = append(all, models.BillingSummary{
			BillingID:     b.ID,
			VisitID:       b.VisitID,
			VisitNumber:   k.NomorKunjungan,
			PatientName:   d.pasien[k.IDPasien].Nama,
			PoliName:      d.poli[k.IDPoli],
			TotalAmount:   b.TotalAmount,
			PaidAmount:    sumOf(d, b.ID),
			PaymentStatus: b.PaymentStatus,
			CreatedAt:     b.CreatedAt,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].BillingID > all[j].BillingID
	})

	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// FarmasiRepository

func (s *Store) GetObat(ctx context.Context, id int64, forUpdate bool) (*dokterModels.Obat, error) {
	d, unlock, err := s.lock("GetObat")
	if err != nil {
		return nil, err
	}
	defer unlock()
	o, ok := d.obat[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (s *Store) DecrementStock(ctx context.Context, id int64, qty int) error {
	d, unlock, err := s.lock("DecrementStock")
	if err != nil {
		return err
	}
	defer unlock()
	o, ok := d.obat[id]
	if !ok || o.Stock < qty {
		return repository.ErrInsufficientStock
	}
	o.Stock -= qty
	d.obat[id] = o
	return nil
}

func (s *Store) GetTindakan(ctx context.Context, id int64) (*dokterModels.Tindakan, error) {
	d, unlock, err := s.lock("GetTindakan")
	if err != nil {
		return nil, err
	}
	defer unlock()
	t, ok := d.tindakan[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// KaryawanRepository

func (s *Store) FindKaryawanByUsername(ctx context.Context, username string) (*models.Karyawan, error) {
	d, unlock, err := s.lock("FindKaryawanByUsername")
	if err != nil {
		return nil, err
	}
	defer unlock()
	k, ok := d.karyawan[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &k, nil
}

// DashboardRepository

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *Store) BillingTotalsByStatus(ctx context.Context, from, to time.Time) ([]manajemenModels.StatusTotal, error) {
	d, unlock, err := s.lock("BillingTotalsByStatus")
	if err != nil {
		return nil, err
	}
	defer unlock()

	byStatus := map[models.PaymentStatus]*manajemenModels.StatusTotal{}
	for _, b := range d.billing {
		if !inRange(b.CreatedAt, from, to) {
			continue
		}
		row, ok := byStatus[b.PaymentStatus]
		if !ok {
			row = &manajemenModels.StatusTotal{Status: b.PaymentStatus, Total: decimal.Zero, Dibayar: decimal.Zero}
			byStatus[b.PaymentStatus] = row
		}
		row.Count++
		row.Total = row.Total.Add(b.TotalAmount)
		row.Dibayar = row.Dibayar.Add(sumOf(d, b.ID))
	}

	list := []manajemenModels.StatusTotal{}
	for _, row := range byStatus {
		list = append(list, *row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Status < list[j].Status })
	return list, nil
}

func (s *Store) PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]manajemenModels.MethodTotal, error) {
	d, unlock, err := s.lock("PaymentTotalsByMethod")
	if err != nil {
		return nil, err
	}
	defer unlock()

	byMethod := map[models.PaymentMethod]*manajemenModels.MethodTotal{}
	for _, p := range d.payments {
		if !inRange(p.ReceivedAt, from, to) {
			continue
		}
		row, ok := byMethod[p.PaymentMethod]
		if !ok {
			row = &manajemenModels.MethodTotal{Metode: p.PaymentMethod, Jumlah: decimal.Zero}
			byMethod[p.PaymentMethod] = row
		}
		row.Count++
		row.Jumlah = row.Jumlah.Add(p.Amount)
	}

	list := []manajemenModels.MethodTotal{}
	for _, row := range byMethod {
		list = append(list, *row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Metode < list[j].Metode })
	return list, nil
}
