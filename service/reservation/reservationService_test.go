package reservationsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	eventsrepo "stayin/repository/events"
	"stayin/model"
)

type mockRepo struct {
	listingForBookingFn   func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error)
	hasActiveForGuestTxFn func(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error)
	approvedSpansFn       func(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error)
	insertFn              func(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	getForUpdateFn        func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error)
	setStatusFn           func(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error
	listingTitleFn        func(ctx context.Context, listingID int64) (string, error)
	hasActiveForGuestFn   func(ctx context.Context, guestID, listingID int64) (bool, error)
	listByGuestFn         func(ctx context.Context, guestID int64) ([]GuestRow, error)
	listByHostFn          func(ctx context.Context, hostID int64) ([]HostRow, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) ListingForBooking(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
	return m.listingForBookingFn(ctx, tx, listingID)
}

func (m *mockRepo) HasActiveForGuestTx(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error) {
	if m.hasActiveForGuestTxFn == nil {
		return false, nil
	}
	return m.hasActiveForGuestTxFn(ctx, tx, guestID, listingID)
}

func (m *mockRepo) ApprovedSpans(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error) {
	if m.approvedSpansFn == nil {
		return nil, nil
	}
	return m.approvedSpansFn(ctx, tx, listingID)
}

func (m *mockRepo) Insert(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if m.insertFn == nil {
		res.ID = 1
		res.CreatedAt = time.Now()
		return nil
	}
	return m.insertFn(ctx, tx, res)
}

func (m *mockRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
	return m.getForUpdateFn(ctx, tx, id)
}

func (m *mockRepo) SetStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error {
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, tx, id, status, respondedAt)
}

func (m *mockRepo) ListingTitle(ctx context.Context, listingID int64) (string, error) {
	if m.listingTitleFn == nil {
		return "Test Listing", nil
	}
	return m.listingTitleFn(ctx, listingID)
}

func (m *mockRepo) HasActiveForGuest(ctx context.Context, guestID, listingID int64) (bool, error) {
	return m.hasActiveForGuestFn(ctx, guestID, listingID)
}

func (m *mockRepo) ListByGuest(ctx context.Context, guestID int64) ([]GuestRow, error) {
	return m.listByGuestFn(ctx, guestID)
}

func (m *mockRepo) ListByHost(ctx context.Context, hostID int64) ([]HostRow, error) {
	return m.listByHostFn(ctx, hostID)
}

type mockUsers struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUsers) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return &model.User{ID: id, Email: "user@example.com"}, nil
	}
	return m.byIDFn(ctx, id)
}

type mockEvents struct{ published []eventsrepo.Event }

func (m *mockEvents) Publish(_ context.Context, ev eventsrepo.Event) error {
	m.published = append(m.published, ev)
	return nil
}

// newTestDB hands back a *sql.DB whose Begin/Commit/Rollback succeed.
// Queries never reach it; the repo is mocked.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func futureDate(days int) time.Time {
	return day(time.Now()).AddDate(0, 0, days)
}

func owner(id int64) *int64 { return &id }

// --- tests ---

func TestOverlaps(t *testing.T) {
	in := date(2026, 6, 10)
	out := date(2026, 6, 13)

	cases := []struct {
		name     string
		bIn, bOut time.Time
		want     bool
	}{
		{"identical span", date(2026, 6, 10), date(2026, 6, 13), true},
		{"overlaps front", date(2026, 6, 8), date(2026, 6, 11), true},
		{"overlaps back", date(2026, 6, 12), date(2026, 6, 15), true},
		{"contains", date(2026, 6, 8), date(2026, 6, 15), true},
		{"contained", date(2026, 6, 11), date(2026, 6, 12), true},
		{"single shared night", date(2026, 6, 12), date(2026, 6, 13), true},
		{"checks in on check-out day", date(2026, 6, 13), date(2026, 6, 16), false},
		{"checks out on check-in day", date(2026, 6, 7), date(2026, 6, 10), false},
		{"fully before", date(2026, 6, 1), date(2026, 6, 5), false},
		{"fully after", date(2026, 6, 20), date(2026, 6, 25), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, overlaps(in, out, tc.bIn, tc.bOut))
			require.Equal(t, tc.want, overlaps(tc.bIn, tc.bOut, in, out))
		})
	}
}

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	ev := &mockEvents{}
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			require.Equal(t, int64(7), listingID)
			return owner(3), 1000, "Canal House", nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, ev)

	res, err := svc.Create(ctx, 5, 7, futureDate(10), futureDate(13), 2)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, res.Status)
	require.Equal(t, int64(3), res.HostID)
	require.Equal(t, 3000.0, res.TotalPrice) // 3 nights x 1000
	require.False(t, res.IsPaid)

	require.Len(t, ev.published, 1)
	require.Equal(t, eventsrepo.TypeReservationCreated, ev.published[0].Type)
	require.Equal(t, "Canal House", ev.published[0].ListingTitle)
}

func TestCreate_ListingNotFound(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return nil, 0, "", sql.ErrNoRows
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 404, futureDate(10), futureDate(13), 2)
	require.Equal(t, ErrListingNotFound, Code(err))
}

func TestCreate_SelfBooking(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(5), 1000, "Own Place", nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(13), 2)
	require.Equal(t, ErrSelfBooking, Code(err))
}

func TestCreate_DuplicateActive(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 1000, "Canal House", nil
		},
		hasActiveForGuestTxFn: func(ctx context.Context, tx *sql.Tx, guestID, listingID int64) (bool, error) {
			return true, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(13), 2)
	require.Equal(t, ErrDuplicateActive, Code(err))
}

func TestCreate_DateConflictWithApproved(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 1000, "Canal House", nil
		},
		approvedSpansFn: func(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error) {
			return []Span{{CheckIn: futureDate(12), CheckOut: futureDate(15)}}, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(13), 2)
	require.Equal(t, ErrDateConflict, Code(err))
}

func TestCreate_BackToBackStayAllowed(t *testing.T) {
	ev := &mockEvents{}
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 500, "Canal House", nil
		},
		approvedSpansFn: func(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error) {
			// existing stay checks out the day the new one checks in
			return []Span{{CheckIn: futureDate(7), CheckOut: futureDate(10)}}, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, ev)

	res, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(12), 2)
	require.NoError(t, err)
	require.Equal(t, 1000.0, res.TotalPrice)
}

func TestCreate_InvalidDateRange(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 1000, "Canal House", nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	// zero nights
	_, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(10), 2)
	require.Equal(t, ErrInvalidDates, Code(err))

	// reversed
	_, err = svc.Create(context.Background(), 5, 7, futureDate(13), futureDate(10), 2)
	require.Equal(t, ErrInvalidDates, Code(err))
}

func TestCreate_PastCheckIn(t *testing.T) {
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 1000, "Canal House", nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 7, futureDate(-2), futureDate(1), 2)
	require.Equal(t, ErrPastCheckIn, Code(err))
}

func TestCreate_ConflictReportedBeforePastCheckIn(t *testing.T) {
	// A stale request that also collides reports the collision.
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return owner(3), 1000, "Canal House", nil
		},
		approvedSpansFn: func(ctx context.Context, tx *sql.Tx, listingID int64) ([]Span, error) {
			return []Span{{CheckIn: futureDate(-3), CheckOut: futureDate(2)}}, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	_, err := svc.Create(context.Background(), 5, 7, futureDate(-2), futureDate(1), 2)
	require.Equal(t, ErrDateConflict, Code(err))
}

func TestCreate_OrphanListingBookable(t *testing.T) {
	// Listings whose owner account was removed keep a NULL owner and
	// stay bookable.
	m := &mockRepo{
		listingForBookingFn: func(ctx context.Context, tx *sql.Tx, listingID int64) (*int64, float64, string, error) {
			return nil, 250, "Orphan Flat", nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	res, err := svc.Create(context.Background(), 5, 7, futureDate(10), futureDate(11), 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), res.HostID)
}

func pendingReservation(hostID, guestID int64) *model.Reservation {
	return &model.Reservation{
		ID:           9,
		ListingID:    7,
		GuestID:      guestID,
		HostID:       hostID,
		CheckInDate:  futureDate(10),
		CheckOutDate: futureDate(13),
		Guests:       2,
		TotalPrice:   3000,
		Status:       model.ReservationPending,
	}
}

func TestApprove_Success(t *testing.T) {
	ev := &mockEvents{}
	var gotStatus model.ReservationStatus
	var gotResponded *time.Time
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			return pendingReservation(3, 5), nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error {
			gotStatus, gotResponded = status, respondedAt
			return nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, ev)

	require.NoError(t, svc.Approve(context.Background(), 3, 9))
	require.Equal(t, model.ReservationApproved, gotStatus)
	require.NotNil(t, gotResponded)
	require.Len(t, ev.published, 1)
	require.Equal(t, eventsrepo.TypeReservationApproved, ev.published[0].Type)
}

func TestReject_Success(t *testing.T) {
	ev := &mockEvents{}
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			return pendingReservation(3, 5), nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, ev)

	require.NoError(t, svc.Reject(context.Background(), 3, 9))
	require.Equal(t, eventsrepo.TypeReservationRejected, ev.published[0].Type)
}

func TestApprove_NotHost(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			return pendingReservation(3, 5), nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	err := svc.Approve(context.Background(), 5, 9) // the guest tries
	require.Equal(t, ErrNotHost, Code(err))
}

func TestApprove_NotFound(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	require.Equal(t, ErrNotFound, Code(svc.Approve(context.Background(), 3, 404)))
}

func TestApprove_AlreadyResponded(t *testing.T) {
	for _, st := range []model.ReservationStatus{
		model.ReservationApproved, model.ReservationRejected, model.ReservationCancelled,
	} {
		m := &mockRepo{
			getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
				r := pendingReservation(3, 5)
				r.Status = st
				return r, nil
			},
		}
		svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

		err := svc.Approve(context.Background(), 3, 9)
		require.Equal(t, ErrAlreadyResponded, Code(err), "status %s", st)
	}
}

func TestCancel_PendingAndApproved(t *testing.T) {
	for _, st := range []model.ReservationStatus{model.ReservationPending, model.ReservationApproved} {
		ev := &mockEvents{}
		var gotResponded *time.Time = &time.Time{}
		m := &mockRepo{
			getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
				r := pendingReservation(3, 5)
				r.Status = st
				return r, nil
			},
			setStatusFn: func(ctx context.Context, tx *sql.Tx, id int64, status model.ReservationStatus, respondedAt *time.Time) error {
				require.Equal(t, model.ReservationCancelled, status)
				gotResponded = respondedAt
				return nil
			},
		}
		svc := New(newTestDB(t), m, &mockUsers{}, ev)

		require.NoError(t, svc.Cancel(context.Background(), 5, 9), "status %s", st)
		require.Nil(t, gotResponded)
		require.Equal(t, eventsrepo.TypeReservationCancelled, ev.published[0].Type)
	}
}

func TestCancel_NotGuest(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			return pendingReservation(3, 5), nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	err := svc.Cancel(context.Background(), 3, 9) // the host tries
	require.Equal(t, ErrNotGuest, Code(err))
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, id int64) (*model.Reservation, error) {
			r := pendingReservation(3, 5)
			r.Status = model.ReservationCancelled
			return r, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	err := svc.Cancel(context.Background(), 5, 9)
	require.Equal(t, ErrAlreadyCancelled, Code(err))
}

func TestCheckExisting(t *testing.T) {
	m := &mockRepo{
		hasActiveForGuestFn: func(ctx context.Context, guestID, listingID int64) (bool, error) {
			return guestID == 5, nil
		},
	}
	svc := New(newTestDB(t), m, &mockUsers{}, &mockEvents{})

	ok, err := svc.CheckExisting(context.Background(), 5, 7)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CheckExisting(context.Background(), 6, 7)
	require.NoError(t, err)
	require.False(t, ok)
}
