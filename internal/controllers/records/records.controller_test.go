package recordsController

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/events"
	"clinic/internal/metrics"
	"clinic/internal/repositories"
	"clinic/internal/services"
	"clinic/internal/validation"

	. "clinic/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testControllers struct {
	deps         Dependencies
	users        *Controller[UserCreate, User]
	appointments *Controller[AppointmentCreate, Appointment]
	messages     *Controller[MessageCreate, Message]
	billing      *Controller[BillingRecordCreate, BillingRecord]
}

func setup(t *testing.T) testControllers {
	t.Helper()

	db, err := database.New(config.Config{DatabaseURL: "sqlite://:memory:"})
	require.NoError(t, err)
	_, err = db.MigrateUp()
	require.NoError(t, err)

	bus := events.New(nil, config.Config{})
	t.Cleanup(func() {
		_ = bus.Close()
		_ = db.Close()
	})

	userRepo := repositories.New(db)
	deps := Dependencies{
		UserRepo:           userRepo,
		TransactionService: services.NewTransactionService(db),
		EventBus:           bus,
		Metrics:            metrics.New(),
	}

	return testControllers{
		deps:  deps,
		users: New("User", "users", validation.User, repositories.RecordRepository[User](userRepo), deps),
		appointments: New("Appointment", "appointments", validation.Appointment,
			repositories.NewRecord[Appointment](db, "Appointment"), deps),
		messages: New("Message", "messages", validation.Message,
			repositories.NewRecord[Message](db, "Message"), deps),
		billing: New("BillingRecord", "billing", validation.BillingRecord,
			repositories.NewRecord[BillingRecord](db, "BillingRecord"), deps),
	}
}

// counterValue reads a counter from the metrics registry by its label values.
func counterValue(t *testing.T, c testControllers, name string, labelValues ...string) float64 {
	t.Helper()

	families, err := c.deps.Metrics.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			values := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				values = append(values, label.GetValue())
			}
			if slices.Equal(values, labelValues) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

const jdoe = `{"username":"jdoe","password":"p","email":"j@d.com","first_name":"Jane","last_name":"Doe"}`

func TestCreateUser(t *testing.T) {
	c := setup(t)
	start := database.Now()

	user, err := c.users.Create(context.Background(), []byte(jdoe))
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, "j@d.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, "Doe", user.LastName)
	assert.False(t, user.CreatedAt.Before(start))
	assert.False(t, user.UpdatedAt.Before(start))
	assert.True(t, user.CheckPassword("p"))

	stored, err := c.users.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.CreatedAt, stored.CreatedAt)
	assert.Equal(t, user.Username, stored.Username)
}

func TestCreateUser_Duplicate(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedField string
	}{
		{
			name:          "same username",
			body:          `{"username":"jdoe","password":"x","email":"other@d.com","first_name":"J","last_name":"D"}`,
			expectedField: "username",
		},
		{
			name:          "same email",
			body:          `{"username":"other","password":"x","email":"j@d.com","first_name":"J","last_name":"D"}`,
			expectedField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setup(t)
			ctx := context.Background()
			_, err := c.users.Create(ctx, []byte(jdoe))
			require.NoError(t, err)

			_, err = c.users.Create(ctx, []byte(tt.body))
			var unique *UniquenessViolation
			require.True(t, errors.As(err, &unique), "got %v", err)
			assert.Equal(t, tt.expectedField, unique.Field)

			all, err := c.users.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
			assert.Equal(t, 1.0, counterValue(t, c, "clinic_records_rejected_total", "User", "duplicate"))
		})
	}
}

func TestCreateUser_ConcurrentSameUsername(t *testing.T) {
	c := setup(t)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"username":"jdoe","password":"p","email":"j%d@d.com","first_name":"Jane","last_name":"Doe"}`, i)
			_, errs[i] = c.users.Create(context.Background(), []byte(body))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var unique *UniquenessViolation
		assert.True(t, errors.As(err, &unique), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)

	all, err := c.users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreateAppointment_RoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	_, err := c.users.Create(ctx, []byte(jdoe))
	require.NoError(t, err)

	created, err := c.appointments.Create(ctx,
		[]byte(`{"patient_id":1,"provider_id":1,"date_time":"2024-01-01T10:00:00","description":"checkup"}`))
	require.NoError(t, err)

	assert.Equal(t, 1, created.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), created.DateTime)
	assert.Equal(t, "checkup", created.Description)

	stored, err := c.appointments.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestCreateBillingRecord_NegativeAmount(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	_, err := c.users.Create(ctx, []byte(jdoe))
	require.NoError(t, err)

	record, err := c.billing.Create(ctx,
		[]byte(`{"patient_id":1,"service":"refund","amount":-50,"insurance_claim_status":"n/a"}`))
	require.NoError(t, err)
	assert.Equal(t, -50, record.Amount)

	stored, err := c.billing.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, -50, stored.Amount)
}

func TestCreate_ValidationFailureStoresNothing(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	_, err := c.users.Create(ctx, []byte(`{"username":"jdoe","email":"j@d.com"}`))
	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.True(t, invalid.Has("password"))

	users, err := c.users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1.0, counterValue(t, c, "clinic_records_rejected_total", "User", "validation"))
}

func TestCreate_MissingReference(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedField string
		expectedID    int
	}{
		{
			name:          "unknown sender",
			body:          `{"sender_id":5,"recipient_id":1,"content":"hi"}`,
			expectedField: "sender_id",
			expectedID:    5,
		},
		{
			name:          "unknown recipient",
			body:          `{"sender_id":1,"recipient_id":9,"content":"hi"}`,
			expectedField: "recipient_id",
			expectedID:    9,
		},
		{
			name:          "both unknown reports sender first",
			body:          `{"sender_id":8,"recipient_id":9,"content":"hi"}`,
			expectedField: "sender_id",
			expectedID:    8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := setup(t)
			ctx := context.Background()
			_, err := c.users.Create(ctx, []byte(jdoe))
			require.NoError(t, err)

			_, err = c.messages.Create(ctx, []byte(tt.body))
			var missing *ReferenceNotFound
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tt.expectedField, missing.Field)
			assert.Equal(t, tt.expectedID, missing.ID)

			messages, err := c.messages.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, messages)
		})
	}
}

func TestCreate_PublishesEvent(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	stream, stop := c.deps.EventBus.Subscribe("users")
	defer stop()

	user, err := c.users.Create(ctx, []byte(jdoe))
	require.NoError(t, err)

	select {
	case event := <-stream:
		assert.Equal(t, EventRecordCreated, event.Type)
		assert.Equal(t, "users", event.Channel)
		assert.Equal(t, "User", event.Data["kind"])
		assert.Equal(t, user.ID, event.Data["id"])
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	assert.Equal(t, 1.0, counterValue(t, c, "clinic_records_created_total", "User"))
}

func TestGet_NotFound(t *testing.T) {
	c := setup(t)

	_, err := c.appointments.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Appointment not found")
}

func TestList_InsertionOrder(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		body := fmt.Sprintf(`{"username":%q,"password":"p","email":"%s@d.com","first_name":"F","last_name":"L"}`, name, name)
		_, err := c.users.Create(ctx, []byte(body))
		require.NoError(t, err)
	}

	users, err := c.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "carol", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, "bob", users[2].Username)
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{&ValidationError{}, "validation"},
		{&UniquenessViolation{Field: "email"}, "duplicate"},
		{fmt.Errorf("wrapped: %w", &ReferenceNotFound{}), "missing_reference"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, RejectionReason(tt.err))
		})
	}
}
