package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/mcoot/tarot-go2/internal/dependencies/clock"
	"github.com/mcoot/tarot-go2/internal/metrics"
	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/storage"
	"github.com/mcoot/tarot-go2/internal/tarot"
	"github.com/mcoot/tarot-go2/internal/wire"
)

// Room serialises every action on one table through a single goroutine. The board state,
// the room record and the delivery sequence are only touched by that goroutine.
type Room struct {
	id       model.RoomID
	requests chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	storage storage.Storage
	sink    Sink
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger

	// Owned by the actor goroutine
	room    *model.Room
	state   tarot.BoardState
	seq     int64
	stopped bool
}

// Snapshot is a room as one viewer sees it
type Snapshot struct {
	Room    model.Room
	View    tarot.PlayerView
	LastSeq int64
}

type deps struct {
	storage storage.Storage
	sink    Sink
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func start(room *model.Room, state tarot.BoardState, seq int64, queueSize int, d deps) *Room {
	r := &Room{
		id:       room.ID,
		requests: make(chan func(), queueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		storage:  d.storage,
		sink:     d.sink,
		clock:    d.clock,
		metrics:  d.metrics,
		logger:   d.logger.With(slog.String("room_id", string(room.ID))),
		room:     room,
		state:    state,
		seq:      seq,
	}
	go r.run()
	return r
}

func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case fn := <-r.requests:
			fn()
			if r.stopped {
				return
			}
		case <-r.quit:
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for it. fn receives a context that is not
// cancelled with ctx, so an action is never interrupted once it has started.
func (r *Room) do(ctx context.Context, fn func(ctx context.Context)) error {
	finished := make(chan struct{})
	detached := context.WithoutCancel(ctx)
	req := func() {
		fn(detached)
		close(finished)
	}

	select {
	case r.requests <- req:
	case <-r.done:
		return model.ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		select {
		case <-finished:
			return nil
		default:
			return model.ErrRoomClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop ends the actor without touching the room record
func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	<-r.done
}

// ID returns the room's ID
func (r *Room) ID() model.RoomID {
	return r.id
}

// Submit applies action and delivers the resulting transitions. A rejected action leaves
// the state unchanged, delivers one private error to the actor and returns the engine error.
// The returned deliveries are everything this call sent, including private ones.
func (r *Room) Submit(ctx context.Context, action tarot.Action) ([]model.Delivery, error) {
	var (
		deliveries []model.Delivery
		err        error
	)
	if doErr := r.do(ctx, func(ctx context.Context) {
		deliveries, err = r.apply(ctx, action)
	}); doErr != nil {
		return nil, doErr
	}
	return deliveries, err
}

// AddBot seats a bot playing with strategy. The room record naming the bot is saved before
// the seat is recorded; if recording fails the previous record is restored.
func (r *Room) AddBot(ctx context.Context, id model.PlayerID, strategy string) ([]model.Delivery, error) {
	var (
		deliveries []model.Delivery
		err        error
	)
	if doErr := r.do(ctx, func(ctx context.Context) {
		deliveries, err = r.addBot(ctx, id, strategy)
	}); doErr != nil {
		return nil, doErr
	}
	return deliveries, err
}

// NextHand deals a new hand to the same seats once the current one is complete
func (r *Room) NextHand(ctx context.Context) ([]model.Delivery, error) {
	var (
		deliveries []model.Delivery
		err        error
	)
	if doErr := r.do(ctx, func(ctx context.Context) {
		deliveries, err = r.nextHand(ctx)
	}); doErr != nil {
		return nil, doErr
	}
	return deliveries, err
}

// Snapshot returns the room and its board state as viewer is entitled to see them
func (r *Room) Snapshot(ctx context.Context, viewer model.PlayerID) (Snapshot, error) {
	var snap Snapshot
	err := r.do(ctx, func(ctx context.Context) {
		snap = Snapshot{
			Room:    *r.room,
			View:    tarot.View(r.state, viewer),
			LastSeq: r.seq,
		}
	})
	return snap, err
}

// History returns the deliveries after sinceSeq that viewer is entitled to, in order
func (r *Room) History(ctx context.Context, viewer model.PlayerID, sinceSeq int64) ([]model.Delivery, error) {
	all, err := r.storage.GetDeliveries(ctx, r.id, sinceSeq)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Delivery, 0, len(all))
	for _, d := range all {
		if d.VisibleTo(viewer) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

// Hands returns the archived hands of the room
func (r *Room) Hands(ctx context.Context) ([]*model.HandRecord, error) {
	return r.storage.GetHandRecords(ctx, r.id)
}

// close marks the room closed and stops the actor. It fails while a hand is being played.
func (r *Room) close(ctx context.Context) error {
	var err error
	if doErr := r.do(ctx, func(ctx context.Context) {
		if r.room.Status == model.RoomStatusOpen {
			switch r.state.Phase() {
			case tarot.PhaseNewGame, tarot.PhaseCompleted:
			default:
				err = fmt.Errorf("cannot close during %s: %w", r.state.Phase(), model.ErrHandInProgress)
				return
			}
		}
		closed := *r.room
		closed.Status = model.RoomStatusClosed
		closed.UpdatedAt = r.clock.Now()
		if err = r.storage.SaveRoom(ctx, &closed); err != nil {
			return
		}
		r.room = &closed
		r.stopped = true
		r.logger.Info("room closed")
	}); doErr != nil {
		return doErr
	}
	return err
}

func (r *Room) checkOpen() error {
	switch r.room.Status {
	case model.RoomStatusAborted:
		return model.ErrRoomAborted
	case model.RoomStatusClosed:
		return model.ErrRoomClosed
	}
	return nil
}

func (r *Room) apply(ctx context.Context, action tarot.Action) ([]model.Delivery, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	prev := r.state.Phase()
	next, transitions, err := tarot.Apply(r.state, action)
	if err != nil {
		return r.reject(ctx, action, err)
	}

	deliveries, err := r.commit(ctx, tarot.ActionEntry(action), next, transitions)
	if err != nil {
		r.logger.Error("failed to record action",
			slog.String("action", string(action.Type)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording action: %w", err)
	}
	r.metrics.ActionApplied(string(action.Type))

	if done, ok := next.(*tarot.Completed); ok && prev != tarot.PhaseCompleted {
		r.handCompleted(ctx, done)
	}
	return deliveries, nil
}

// reject handles an engine error: invariant failures abort the room, anything else is sent
// privately to the actor
func (r *Room) reject(ctx context.Context, action tarot.Action, err error) ([]model.Delivery, error) {
	if tarot.IsInvariant(err) {
		r.abort(ctx, err)
		return nil, fmt.Errorf("%w: %w", model.ErrRoomAborted, err)
	}
	r.metrics.ActionRejected(string(action.Type), tarot.ErrorCode(err))
	r.logger.Debug("action rejected",
		slog.String("player_id", string(action.Player)),
		slog.String("action", string(action.Type)),
		slog.String("error", err.Error()),
	)
	deliveries, derr := r.encode([]tarot.Transition{tarot.RejectionFor(action, err)})
	if derr != nil {
		return nil, derr
	}
	if derr := r.storage.AppendDeliveries(ctx, r.id, deliveries); derr != nil {
		r.logger.Error("failed to store deliveries", slog.String("error", derr.Error()))
		return nil, derr
	}
	r.publish(deliveries)
	return deliveries, err
}

func (r *Room) addBot(ctx context.Context, id model.PlayerID, strategy string) ([]model.Delivery, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	action := tarot.EnterGame(id)
	next, transitions, err := tarot.Apply(r.state, action)
	if err != nil {
		return r.reject(ctx, action, err)
	}

	previous := *r.room
	updated := *r.room
	updated.Bots = maps.Clone(r.room.Bots)
	if updated.Bots == nil {
		updated.Bots = make(map[model.PlayerID]string)
	}
	updated.Bots[id] = strategy
	updated.UpdatedAt = r.clock.Now()
	if err := r.storage.SaveRoom(ctx, &updated); err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}

	deliveries, err := r.commit(ctx, tarot.ActionEntry(action), next, transitions)
	if err != nil {
		if rerr := r.storage.SaveRoom(ctx, &previous); rerr != nil {
			r.logger.Error("failed to restore room after seating a bot",
				slog.String("bot_id", string(id)),
				slog.String("error", rerr.Error()),
			)
		}
		return nil, fmt.Errorf("recording action: %w", err)
	}
	r.room = &updated
	r.metrics.ActionApplied(string(action.Type))
	return deliveries, nil
}

func (r *Room) nextHand(ctx context.Context) ([]model.Delivery, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	next, transitions, err := tarot.NextHand(r.state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrHandInProgress, err)
	}
	deliveries, err := r.commit(ctx, tarot.NextHandEntry(), next, transitions)
	if err != nil {
		return nil, fmt.Errorf("recording next hand: %w", err)
	}

	table := tarot.TableOf(next)
	r.logger.Info("next hand",
		slog.Int("hand_number", table.HandNumber),
		slog.String("dealer", string(table.DealerID())),
	)
	return deliveries, nil
}

// commit stores entry with the deliveries of its transitions in one write, and only then
// makes next the room's state and publishes. A failed write leaves the room as it was.
func (r *Room) commit(ctx context.Context, entry tarot.LogEntry, next tarot.BoardState, transitions []tarot.Transition) ([]model.Delivery, error) {
	deliveries, err := r.encode(transitions)
	if err != nil {
		return nil, err
	}
	if err := r.storage.RecordAction(ctx, r.id, entry, deliveries); err != nil {
		return nil, err
	}
	r.state = next
	r.publish(deliveries)
	return deliveries, nil
}

// encode numbers transitions after the current sequence without advancing it
func (r *Room) encode(transitions []tarot.Transition) ([]model.Delivery, error) {
	if len(transitions) == 0 {
		return nil, nil
	}
	now := r.clock.Now()
	deliveries := make([]model.Delivery, 0, len(transitions))
	for i, t := range transitions {
		d, err := wire.NewDelivery(r.id, r.seq+int64(i)+1, t, now)
		if err != nil {
			r.logger.Error("failed to encode transition",
				slog.String("type", string(t.Type)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// publish advances the sequence past stored deliveries and hands them to the sink in order
func (r *Room) publish(deliveries []model.Delivery) {
	r.seq += int64(len(deliveries))
	for _, d := range deliveries {
		r.sink.Publish(d)
	}
}

func (r *Room) handCompleted(ctx context.Context, done *tarot.Completed) {
	r.metrics.HandCompleted()
	r.logger.Info("hand completed",
		slog.Int("hand_number", done.HandNumber),
		slog.String("bidder", string(done.Result.Bidder)),
		slog.Bool("bidder_won", done.Result.BidderWon),
		slog.Int("total", int(done.Result.Total)),
	)

	if !r.room.Settings.AutologEnabled {
		return
	}
	record, err := handRecord(r.id, done, r.clock.Now())
	if err == nil {
		err = r.storage.SaveHandRecord(ctx, record)
	}
	if err != nil {
		r.logger.Warn("failed to archive hand",
			slog.Int("hand_number", done.HandNumber),
			slog.String("error", err.Error()),
		)
	}
}

func handRecord(id model.RoomID, done *tarot.Completed, at time.Time) (*model.HandRecord, error) {
	result, err := json.Marshal(done.Result)
	if err != nil {
		return nil, err
	}
	deltas := make(map[model.PlayerID]int, len(done.Result.Deltas))
	for p, d := range done.Result.Deltas {
		deltas[p] = int(d)
	}
	return &model.HandRecord{
		RoomID:      id,
		HandNumber:  done.HandNumber,
		Bidder:      done.Result.Bidder,
		Partner:     done.Result.Partner,
		Contract:    int(done.Result.Contract),
		BidderWon:   done.Result.BidderWon,
		Deltas:      deltas,
		Result:      result,
		CompletedAt: at,
	}, nil
}

// abort freezes the room after an engine invariant failure
func (r *Room) abort(ctx context.Context, cause error) {
	r.room.Status = model.RoomStatusAborted
	r.metrics.RoomAborted()
	r.logger.Error("room aborted",
		slog.String("phase", string(r.state.Phase())),
		slog.String("error", cause.Error()),
	)
	if err := r.save(ctx); err != nil {
		r.logger.Error("failed to save aborted room", slog.String("error", err.Error()))
	}
}

func (r *Room) save(ctx context.Context) error {
	r.room.UpdatedAt = r.clock.Now()
	return r.storage.SaveRoom(ctx, r.room)
}
