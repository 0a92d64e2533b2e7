package recordsController

import (
	"context"
	"errors"
	"time"

	"clinic/internal/events"
	"clinic/internal/logger"
	"clinic/internal/metrics"
	"clinic/internal/repositories"
	"clinic/internal/services"

	. "clinic/internal/models"

	"github.com/google/uuid"
)

const EventRecordCreated = "record.created"

// Validator turns a raw request body into a creation record.
type Validator[C any] func(raw []byte) (C, error)

// Dependencies are shared by the controllers of every entity kind.
type Dependencies struct {
	UserRepo           repositories.UserRepository
	TransactionService *services.TransactionService
	EventBus           *events.EventBus
	Metrics            *metrics.Metrics
}

// Controller runs validate, check references, persist for one entity kind.
type Controller[C Creation[R], R Record] struct {
	kind     string
	channel  string
	validate Validator[C]
	repo     repositories.RecordRepository[R]
	deps     Dependencies
	log      logger.Logger
}

func New[C Creation[R], R Record](
	kind string,
	channel string,
	validate Validator[C],
	repo repositories.RecordRepository[R],
	deps Dependencies,
) *Controller[C, R] {
	return &Controller[C, R]{
		kind:     kind,
		channel:  channel,
		validate: validate,
		repo:     repo,
		deps:     deps,
		log:      logger.New("RecordsController").With("kind", kind),
	}
}

func (c *Controller[C, R]) Kind() string {
	return c.kind
}

func (c *Controller[C, R]) Create(ctx context.Context, raw []byte) (*R, error) {
	log := c.log.Function("Create")

	creation, err := c.validate(raw)
	if err != nil {
		log.Info("rejected creation request", "reason", err.Error())
		c.reject(err)
		return nil, err
	}

	record := creation.NewRecord()
	err = c.deps.TransactionService.Execute(ctx, func(txCtx context.Context) error {
		if err := c.checkReferences(txCtx, creation.References()); err != nil {
			return err
		}
		return c.repo.Create(txCtx, record)
	})
	if err != nil {
		c.reject(err)
		return nil, err
	}

	c.deps.Metrics.RecordCreated(c.kind)
	c.publish((*record).RecordID())

	return record, nil
}

func (c *Controller[C, R]) Get(ctx context.Context, id int) (*R, error) {
	return c.repo.GetByID(ctx, id)
}

func (c *Controller[C, R]) List(ctx context.Context) ([]*R, error) {
	return c.repo.GetAll(ctx)
}

// checkReferences fails with the first reference, in field order, that points
// at no user.
func (c *Controller[C, R]) checkReferences(ctx context.Context, refs []Reference) error {
	if len(refs) == 0 {
		return nil
	}

	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}

	missing, err := c.deps.UserRepo.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	for _, ref := range refs {
		if ref.ID == missing[0] {
			c.log.Function("checkReferences").Info("reference not found", "field", ref.Field, "id", ref.ID)
			return &ReferenceNotFound{Field: ref.Field, ID: ref.ID}
		}
	}

	return &ReferenceNotFound{ID: missing[0]}
}

func (c *Controller[C, R]) publish(id int) {
	log := c.log.Function("publish")

	event := events.Event{
		ID:        uuid.New().String(),
		Type:      EventRecordCreated,
		Action:    "create",
		Data:      map[string]any{"kind": c.kind, "id": id},
		Timestamp: time.Now().UTC(),
	}

	if err := c.deps.EventBus.Publish(c.channel, event); err != nil {
		log.Er("failed to publish event", err, "id", id)
	}
}

func (c *Controller[C, R]) reject(err error) {
	c.deps.Metrics.RecordRejected(c.kind, RejectionReason(err))
}

// RejectionReason labels a failed creation for metrics.
func RejectionReason(err error) string {
	var invalid *ValidationError
	var duplicate *UniquenessViolation
	var missing *ReferenceNotFound

	switch {
	case errors.As(err, &invalid):
		return "validation"
	case errors.As(err, &duplicate):
		return "duplicate"
	case errors.As(err, &missing):
		return "missing_reference"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
