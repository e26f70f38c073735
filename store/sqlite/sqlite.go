/*
Package sqlite provides a SQLite-backed implementation of lodger.Store.

PURPOSE:
  Persists tenancy aggregates. The tenancy row plus its payments,
  notices, deductions and funds pool are written in one database
  transaction, so Save is atomic: a partially applied extension or a
  deduction without its pool decrement can never be observed.

KEY TABLES:
  tenancies:    Aggregate root, terms and lifecycle status
  payments:     Rent schedule, keyed (tenancy_id, payment_number)
  notices:      Termination/breach/extension records
  deductions:   Immutable fund-pool charges
  funds_pools:  Deposit/advance balances, one row per tenancy

MONEY:
  Stored as integer pence (lodger.Money's native representation).
  No floating point touches the database.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The engine serializes writers
  per tenancy above this layer; the mutex guards cross-tenancy access.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/lodger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := lodger.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - lodger/store.go: Interface definition
  - lodger/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haven/lodger-engine/lodger"
)

// Store implements lodger.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at the given path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenancies (
		id TEXT PRIMARY KEY,
		landlord_id TEXT NOT NULL,
		lodger_id TEXT NOT NULL,
		house_number TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		county TEXT NOT NULL DEFAULT '',
		postcode TEXT NOT NULL DEFAULT '',
		room_description TEXT NOT NULL DEFAULT '',
		shared_areas TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		initial_term_months INTEGER NOT NULL,
		end_date TEXT,
		monthly_rent_pence INTEGER NOT NULL,
		deposit_pence INTEGER NOT NULL DEFAULT 0,
		deposit_applicable BOOLEAN NOT NULL DEFAULT FALSE,
		payment_type TEXT NOT NULL,
		payment_frequency TEXT NOT NULL DEFAULT '',
		payment_day_of_month INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		signature_text TEXT,
		signed_at TEXT,
		photo_id_ref TEXT,
		date_of_birth TEXT,
		id_expiry TEXT,
		agreement_ref TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tenancies_landlord
		ON tenancies(landlord_id);
	CREATE INDEX IF NOT EXISTS idx_tenancies_status
		ON tenancies(status);

	CREATE TABLE IF NOT EXISTS payments (
		tenancy_id TEXT NOT NULL,
		payment_number INTEGER NOT NULL,
		due_date TEXT NOT NULL,
		rent_due_pence INTEGER NOT NULL,
		rent_paid_pence INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		sub_amount_pence INTEGER,
		sub_method TEXT,
		sub_reference TEXT,
		sub_notes TEXT,
		sub_at TEXT,
		conf_amount_pence INTEGER,
		conf_method TEXT,
		conf_reference TEXT,
		conf_notes TEXT,
		conf_at TEXT,
		PRIMARY KEY (tenancy_id, payment_number)
	);

	CREATE INDEX IF NOT EXISTS idx_payments_due
		ON payments(tenancy_id, due_date);

	CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		tenancy_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		issued_at TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		sub_reason TEXT NOT NULL DEFAULT '',
		notice_period_days INTEGER NOT NULL DEFAULT 0,
		effective_date TEXT,
		breach_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		remedy_deadline TEXT,
		breach_status TEXT NOT NULL DEFAULT '',
		escalated_to TEXT NOT NULL DEFAULT '',
		extension_months INTEGER NOT NULL DEFAULT 0,
		new_rent_pence INTEGER NOT NULL DEFAULT 0,
		response_deadline TEXT,
		extension_status TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notices_tenancy
		ON notices(tenancy_id);

	CREATE TABLE IF NOT EXISTS deductions (
		id TEXT PRIMARY KEY,
		tenancy_id TEXT NOT NULL,
		dtype TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		total_pence INTEGER NOT NULL,
		from_deposit_pence INTEGER NOT NULL,
		from_advance_pence INTEGER NOT NULL,
		statement_generated BOOLEAN NOT NULL DEFAULT FALSE,
		statement_ref TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deductions_tenancy
		ON deductions(tenancy_id);

	CREATE TABLE IF NOT EXISTS funds_pools (
		tenancy_id TEXT PRIMARY KEY,
		original_deposit_pence INTEGER NOT NULL,
		original_advance_pence INTEGER NOT NULL,
		available_deposit_pence INTEGER NOT NULL,
		available_advance_pence INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE - Whole aggregate in one transaction
// =============================================================================

func (s *Store) Save(ctx context.Context, t *lodger.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveTenancyRow(ctx, tx, t); err != nil {
		return err
	}
	if err := saveChildren(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

func saveTenancyRow(ctx context.Context, tx *sql.Tx, t *lodger.Tenancy) error {
	var sigText, signedAt, photoRef, dob, idExpiry sql.NullString
	if t.Signature != nil {
		sigText = nullStr(t.Signature.SignatureText)
		signedAt = nullStr(t.Signature.SignedAt.UTC().Format(time.RFC3339Nano))
		photoRef = nullStr(t.Signature.PhotoIDRef)
		dob = nullDate(t.Signature.DateOfBirth)
		idExpiry = nullDate(t.Signature.IDExpiry)
	}

	var endDate sql.NullString
	if t.EndDate != nil {
		endDate = nullStr(t.EndDate.String())
	}

	areas := make([]string, len(t.SharedAreas))
	for i, a := range t.SharedAreas {
		areas[i] = string(a)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO tenancies (
			id, landlord_id, lodger_id,
			house_number, street, city, county, postcode,
			room_description, shared_areas,
			start_date, initial_term_months, end_date,
			monthly_rent_pence, deposit_pence, deposit_applicable,
			payment_type, payment_frequency, payment_day_of_month,
			status, signature_text, signed_at, photo_id_ref, date_of_birth, id_expiry,
			agreement_ref, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			landlord_id=excluded.landlord_id,
			lodger_id=excluded.lodger_id,
			house_number=excluded.house_number,
			street=excluded.street,
			city=excluded.city,
			county=excluded.county,
			postcode=excluded.postcode,
			room_description=excluded.room_description,
			shared_areas=excluded.shared_areas,
			start_date=excluded.start_date,
			initial_term_months=excluded.initial_term_months,
			end_date=excluded.end_date,
			monthly_rent_pence=excluded.monthly_rent_pence,
			deposit_pence=excluded.deposit_pence,
			deposit_applicable=excluded.deposit_applicable,
			payment_type=excluded.payment_type,
			payment_frequency=excluded.payment_frequency,
			payment_day_of_month=excluded.payment_day_of_month,
			status=excluded.status,
			signature_text=excluded.signature_text,
			signed_at=excluded.signed_at,
			photo_id_ref=excluded.photo_id_ref,
			date_of_birth=excluded.date_of_birth,
			id_expiry=excluded.id_expiry,
			agreement_ref=excluded.agreement_ref,
			updated_at=excluded.updated_at`,
		string(t.ID), string(t.LandlordID), string(t.LodgerID),
		t.Address.HouseNumber, t.Address.Street, t.Address.City, t.Address.County, t.Address.Postcode,
		t.RoomDescription, strings.Join(areas, ","),
		t.StartDate.String(), t.InitialTermMonths, endDate,
		t.MonthlyRent.Pence(), t.DepositAmount.Pence(), t.DepositApplicable,
		string(t.PaymentType), string(t.PaymentFrequency), t.PaymentDayOfMonth,
		string(t.Status), sigText, signedAt, photoRef, dob, idExpiry,
		t.AgreementRef,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// saveChildren rewrites the owned rows. Aggregates are small (tens of
// payments, a handful of notices), so delete-and-reinsert inside the
// transaction is simpler than row-level diffing.
func saveChildren(ctx context.Context, tx *sql.Tx, t *lodger.Tenancy) error {
	for _, table := range []string{"payments", "notices", "deductions", "funds_pools"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE tenancy_id = ?", string(t.ID)); err != nil {
			return err
		}
	}

	for i := range t.Payments {
		p := &t.Payments[i]
		var subAmt, confAmt sql.NullInt64
		var subMethod, subRef, subNotes, subAt sql.NullString
		var confMethod, confRef, confNotes, confAt sql.NullString
		if p.Submission != nil {
			subAmt = sql.NullInt64{Int64: p.Submission.Amount.Pence(), Valid: true}
			subMethod = nullStr(p.Submission.Method)
			subRef = nullStr(p.Submission.Reference)
			subNotes = nullStr(p.Submission.Notes)
			subAt = nullStr(p.Submission.SubmittedAt.UTC().Format(time.RFC3339Nano))
		}
		if p.Confirmation != nil {
			confAmt = sql.NullInt64{Int64: p.Confirmation.Amount.Pence(), Valid: true}
			confMethod = nullStr(p.Confirmation.Method)
			confRef = nullStr(p.Confirmation.Reference)
			confNotes = nullStr(p.Confirmation.Notes)
			confAt = nullStr(p.Confirmation.ConfirmedAt.UTC().Format(time.RFC3339Nano))
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payments (
				tenancy_id, payment_number, due_date, rent_due_pence, rent_paid_pence, status,
				sub_amount_pence, sub_method, sub_reference, sub_notes, sub_at,
				conf_amount_pence, conf_method, conf_reference, conf_notes, conf_at
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			string(t.ID), p.PaymentNumber, p.DueDate.String(),
			p.RentDue.Pence(), p.RentPaid.Pence(), string(p.Status),
			subAmt, subMethod, subRef, subNotes, subAt,
			confAmt, confMethod, confRef, confNotes, confAt,
		); err != nil {
			return err
		}
	}

	for i := range t.Notices {
		n := &t.Notices[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notices (
				id, tenancy_id, kind, issued_at,
				reason, sub_reason, notice_period_days, effective_date,
				breach_type, description, remedy_deadline, breach_status, escalated_to,
				extension_months, new_rent_pence, response_deadline, extension_status,
				created_at
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			string(n.ID), string(t.ID), string(n.Kind), n.IssuedAt.String(),
			n.Reason, n.SubReason, n.NoticePeriodDays, nullDate(n.EffectiveDate),
			n.BreachType, n.Description, nullDate(n.RemedyDeadline), string(n.BreachStatus), string(n.EscalatedTo),
			n.ExtensionMonths, n.NewMonthlyRent.Pence(), nullDate(n.ResponseDeadline), string(n.ExtensionStatus),
			n.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	for i := range t.Deductions {
		d := &t.Deductions[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO deductions (
				id, tenancy_id, dtype, description,
				total_pence, from_deposit_pence, from_advance_pence,
				statement_generated, statement_ref, created_at
			) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			string(d.ID), string(t.ID), string(d.Type), d.Description,
			d.TotalAmount.Pence(), d.FromDeposit.Pence(), d.FromAdvance.Pence(),
			d.StatementGenerated, d.StatementRef,
			d.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	if t.Funds != nil {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO funds_pools (
				tenancy_id, original_deposit_pence, original_advance_pence,
				available_deposit_pence, available_advance_pence
			) VALUES (?,?,?,?,?)`,
			string(t.ID),
			t.Funds.OriginalDeposit.Pence(), t.Funds.OriginalAdvance.Pence(),
			t.Funds.AvailableDeposit.Pence(), t.Funds.AvailableAdvance.Pence(),
		); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================
// LOAD
// =============================================================================

func (s *Store) Get(ctx context.Context, id lodger.TenancyID) (*lodger.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

func (s *Store) ListByLandlord(ctx context.Context, landlordID lodger.LandlordID) ([]*lodger.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadMany(ctx, "SELECT id FROM tenancies WHERE landlord_id = ? ORDER BY created_at, id", string(landlordID))
}

func (s *Store) List(ctx context.Context) ([]*lodger.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadMany(ctx, "SELECT id FROM tenancies ORDER BY created_at, id")
}

func (s *Store) loadMany(ctx context.Context, query string, args ...any) ([]*lodger.Tenancy, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []lodger.TenancyID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, lodger.TenancyID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*lodger.Tenancy, 0, len(ids))
	for _, id := range ids {
		t, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func (s *Store) load(ctx context.Context, id lodger.TenancyID) (*lodger.Tenancy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, landlord_id, lodger_id,
			house_number, street, city, county, postcode,
			room_description, shared_areas,
			start_date, initial_term_months, end_date,
			monthly_rent_pence, deposit_pence, deposit_applicable,
			payment_type, payment_frequency, payment_day_of_month,
			status, signature_text, signed_at, photo_id_ref, date_of_birth, id_expiry,
			agreement_ref, created_at, updated_at
		FROM tenancies WHERE id = ?`, string(id))

	var (
		t                                     lodger.Tenancy
		tenancyID, landlordID, lodgerID       string
		sharedAreas, startDate                string
		endDate                               sql.NullString
		rentPence, depositPence               int64
		paymentType, paymentFrequency, status string
		sigText, signedAt, photoRef           sql.NullString
		dob, idExpiry                         sql.NullString
		createdAt, updatedAt                  string
	)
	err := row.Scan(
		&tenancyID, &landlordID, &lodgerID,
		&t.Address.HouseNumber, &t.Address.Street, &t.Address.City, &t.Address.County, &t.Address.Postcode,
		&t.RoomDescription, &sharedAreas,
		&startDate, &t.InitialTermMonths, &endDate,
		&rentPence, &depositPence, &t.DepositApplicable,
		&paymentType, &paymentFrequency, &t.PaymentDayOfMonth,
		&status, &sigText, &signedAt, &photoRef, &dob, &idExpiry,
		&t.AgreementRef, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &lodger.NotFoundError{Kind: "tenancy", ID: string(id)}
	}
	if err != nil {
		return nil, err
	}

	t.ID = lodger.TenancyID(tenancyID)
	t.LandlordID = lodger.LandlordID(landlordID)
	t.LodgerID = lodger.LodgerID(lodgerID)
	t.MonthlyRent = lodger.MoneyFromPence(rentPence)
	t.DepositAmount = lodger.MoneyFromPence(depositPence)
	t.PaymentType = lodger.PaymentType(paymentType)
	t.PaymentFrequency = lodger.PaymentFrequency(paymentFrequency)
	t.Status = lodger.TenancyStatus(status)

	if sharedAreas != "" {
		for _, a := range strings.Split(sharedAreas, ",") {
			t.SharedAreas = append(t.SharedAreas, lodger.SharedArea(a))
		}
	}
	if t.StartDate, err = lodger.ParseDate(startDate); err != nil {
		return nil, err
	}
	if endDate.Valid {
		end, err := lodger.ParseDate(endDate.String)
		if err != nil {
			return nil, err
		}
		t.EndDate = &end
	}
	if sigText.Valid {
		sig := &lodger.Signature{
			SignatureText: sigText.String,
			PhotoIDRef:    photoRef.String,
		}
		if signedAt.Valid {
			if sig.SignedAt, err = time.Parse(time.RFC3339Nano, signedAt.String); err != nil {
				return nil, err
			}
		}
		if sig.DateOfBirth, err = parseNullDate(dob); err != nil {
			return nil, err
		}
		if sig.IDExpiry, err = parseNullDate(idExpiry); err != nil {
			return nil, err
		}
		t.Signature = sig
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}

	if err := s.loadPayments(ctx, &t); err != nil {
		return nil, err
	}
	if err := s.loadNotices(ctx, &t); err != nil {
		return nil, err
	}
	if err := s.loadDeductions(ctx, &t); err != nil {
		return nil, err
	}
	if err := s.loadFunds(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) loadPayments(ctx context.Context, t *lodger.Tenancy) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_number, due_date, rent_due_pence, rent_paid_pence, status,
			sub_amount_pence, sub_method, sub_reference, sub_notes, sub_at,
			conf_amount_pence, conf_method, conf_reference, conf_notes, conf_at
		FROM payments WHERE tenancy_id = ? ORDER BY payment_number`, string(t.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p                              lodger.PaymentRecord
			dueDate, status                string
			duePence, paidPence            int64
			subAmt, confAmt                sql.NullInt64
			subMethod, subRef, subNotes    sql.NullString
			subAt                          sql.NullString
			confMethod, confRef, confNotes sql.NullString
			confAt                         sql.NullString
		)
		if err := rows.Scan(
			&p.PaymentNumber, &dueDate, &duePence, &paidPence, &status,
			&subAmt, &subMethod, &subRef, &subNotes, &subAt,
			&confAmt, &confMethod, &confRef, &confNotes, &confAt,
		); err != nil {
			return err
		}
		if p.DueDate, err = lodger.ParseDate(dueDate); err != nil {
			return err
		}
		p.RentDue = lodger.MoneyFromPence(duePence)
		p.RentPaid = lodger.MoneyFromPence(paidPence)
		p.Status = lodger.PaymentStatus(status)

		if subAmt.Valid {
			sub := &lodger.PaymentSubmission{
				Amount:    lodger.MoneyFromPence(subAmt.Int64),
				Method:    subMethod.String,
				Reference: subRef.String,
				Notes:     subNotes.String,
			}
			if subAt.Valid {
				if sub.SubmittedAt, err = time.Parse(time.RFC3339Nano, subAt.String); err != nil {
					return err
				}
			}
			p.Submission = sub
		}
		if confAmt.Valid {
			conf := &lodger.PaymentConfirmation{
				Amount:    lodger.MoneyFromPence(confAmt.Int64),
				Method:    confMethod.String,
				Reference: confRef.String,
				Notes:     confNotes.String,
			}
			if confAt.Valid {
				if conf.ConfirmedAt, err = time.Parse(time.RFC3339Nano, confAt.String); err != nil {
					return err
				}
			}
			p.Confirmation = conf
		}
		t.Payments = append(t.Payments, p)
	}
	return rows.Err()
}

func (s *Store) loadNotices(ctx context.Context, t *lodger.Tenancy) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, issued_at,
			reason, sub_reason, notice_period_days, effective_date,
			breach_type, description, remedy_deadline, breach_status, escalated_to,
			extension_months, new_rent_pence, response_deadline, extension_status,
			created_at
		FROM notices WHERE tenancy_id = ? ORDER BY created_at, id`, string(t.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n                          lodger.Notice
			noticeID, kind, issuedAt   string
			effective, remedy, respond sql.NullString
			breachStatus, escalatedTo  string
			newRentPence               int64
			extensionStatus, createdAt string
		)
		if err := rows.Scan(
			&noticeID, &kind, &issuedAt,
			&n.Reason, &n.SubReason, &n.NoticePeriodDays, &effective,
			&n.BreachType, &n.Description, &remedy, &breachStatus, &escalatedTo,
			&n.ExtensionMonths, &newRentPence, &respond, &extensionStatus,
			&createdAt,
		); err != nil {
			return err
		}
		n.ID = lodger.NoticeID(noticeID)
		n.Kind = lodger.NoticeKind(kind)
		n.BreachStatus = lodger.BreachStatus(breachStatus)
		n.EscalatedTo = lodger.NoticeID(escalatedTo)
		n.NewMonthlyRent = lodger.MoneyFromPence(newRentPence)
		n.ExtensionStatus = lodger.ExtensionStatus(extensionStatus)

		if n.IssuedAt, err = lodger.ParseDate(issuedAt); err != nil {
			return err
		}
		if n.EffectiveDate, err = parseNullDate(effective); err != nil {
			return err
		}
		if n.RemedyDeadline, err = parseNullDate(remedy); err != nil {
			return err
		}
		if n.ResponseDeadline, err = parseNullDate(respond); err != nil {
			return err
		}
		if n.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return err
		}
		t.Notices = append(t.Notices, n)
	}
	return rows.Err()
}

func (s *Store) loadDeductions(ctx context.Context, t *lodger.Tenancy) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dtype, description,
			total_pence, from_deposit_pence, from_advance_pence,
			statement_generated, statement_ref, created_at
		FROM deductions WHERE tenancy_id = ? ORDER BY created_at, id`, string(t.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d                             lodger.Deduction
			deductionID, dtype, createdAt string
			total, fromDep, fromAdv       int64
		)
		if err := rows.Scan(
			&deductionID, &dtype, &d.Description,
			&total, &fromDep, &fromAdv,
			&d.StatementGenerated, &d.StatementRef, &createdAt,
		); err != nil {
			return err
		}
		d.ID = lodger.DeductionID(deductionID)
		d.Type = lodger.DeductionType(dtype)
		d.TotalAmount = lodger.MoneyFromPence(total)
		d.FromDeposit = lodger.MoneyFromPence(fromDep)
		d.FromAdvance = lodger.MoneyFromPence(fromAdv)
		if d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return err
		}
		t.Deductions = append(t.Deductions, d)
	}
	return rows.Err()
}

func (s *Store) loadFunds(ctx context.Context, t *lodger.Tenancy) error {
	row := s.db.QueryRowContext(ctx, `
		SELECT original_deposit_pence, original_advance_pence,
			available_deposit_pence, available_advance_pence
		FROM funds_pools WHERE tenancy_id = ?`, string(t.ID))

	var origDep, origAdv, availDep, availAdv int64
	err := row.Scan(&origDep, &origAdv, &availDep, &availAdv)
	if err == sql.ErrNoRows {
		return nil // not yet activated
	}
	if err != nil {
		return err
	}
	t.Funds = &lodger.FundsPool{
		OriginalDeposit:  lodger.MoneyFromPence(origDep),
		OriginalAdvance:  lodger.MoneyFromPence(origAdv),
		AvailableDeposit: lodger.MoneyFromPence(availDep),
		AvailableAdvance: lodger.MoneyFromPence(availAdv),
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullDate(d lodger.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (lodger.Date, error) {
	if !ns.Valid || ns.String == "" {
		return lodger.Date{}, nil
	}
	return lodger.ParseDate(ns.String)
}
