package ircd

import (
	"log/slog"
	"time"
)

// Registry owns every User and Channel. All of its state is touched only by
// the Run goroutine; sessions talk to it through events, so handlers never
// need locks and each command is atomic with respect to other connections.
type Registry struct {
	events chan Event
	stopCh chan struct{}
	doneCh chan struct{}
	logger *slog.Logger
	opts   Options

	users    []*User          // connection order
	byID     map[string]*User // Client.ID -> user
	channels []*Channel       // creation order
}

func NewRegistry(buffer int, opts Options, logger *slog.Logger) *Registry {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()
	return &Registry{
		events: make(chan Event, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: logger,
		opts:   opts,
		byID:   make(map[string]*User),
	}
}

// Submit queues ev for the Run loop. It returns false once the registry is
// stopping, in which case the event was not delivered.
func (r *Registry) Submit(ev Event) bool {
	select {
	case <-r.stopCh:
		return false
	default:
	}
	select {
	case r.events <- ev:
		return true
	case <-r.stopCh:
		return false
	}
}

// Done is closed when the Run loop has finished.
func (r *Registry) Done() <-chan struct{} {
	return r.doneCh
}

// Stop signals the Run loop to exit.
func (r *Registry) Stop() {
	close(r.stopCh)
}

// Wait blocks until the Run loop has completely finished.
func (r *Registry) Wait() {
	<-r.doneCh
}

func (r *Registry) Run() {
	defer close(r.doneCh)

	for {
		select {
		case ev := <-r.events:
			start := time.Now()
			r.process(ev)
			ConnectedClients.Set(float64(len(r.users)))
			LiveChannels.Set(float64(len(r.channels)))
			EventProcessingDuration.WithLabelValues(ev.Type.String()).Observe(time.Since(start).Seconds())
		case <-r.stopCh:
			r.closeAll()
			return
		}
	}
}

func (r *Registry) process(ev Event) {
	switch ev.Type {
	case EventConnect:
		r.handleConnect(ev)
	case EventLine:
		r.handleLine(ev)
	case EventDisconnect:
		r.handleDisconnect(ev)
	}
}

func (r *Registry) handleConnect(ev Event) {
	defer func() {
		// ReplyChan is only used for connect.
		if ev.ReplyChan != nil {
			close(ev.ReplyChan)
		}
	}()

	if len(r.users) >= r.opts.MaxClients {
		RejectedConnections.Inc()
		r.logger.Warn("max number of clients reached", "addr", ev.Client.Host)
		if ev.ReplyChan != nil {
			ev.ReplyChan <- ErrServerFull
		}
		return
	}

	u := newUser(ev.Client)
	r.users = append(r.users, u)
	r.byID[ev.Client.ID] = u
	r.logger.Info("client connected", "conn", ev.Client.ID, "addr", ev.Client.Host)

	if ev.ReplyChan != nil {
		ev.ReplyChan <- nil
	}
}

func (r *Registry) handleLine(ev Event) {
	u, ok := r.byID[ev.Client.ID]
	if !ok {
		// Torn down already (QUIT, bad password); later lines are ignored.
		return
	}
	r.logger.Debug("recv", "conn", ev.Client.ID, "nick", u.Nick, "line", ev.Line)
	r.dispatch(u, ev.Line)
}

func (r *Registry) handleDisconnect(ev Event) {
	u, ok := r.byID[ev.Client.ID]
	if !ok {
		return
	}
	reason := ev.Reason
	if reason == "" {
		reason = "Connection closed"
	}
	r.removeUser(u, reason)
}

// closeAll closes every outbound queue so writers drop their connections.
func (r *Registry) closeAll() {
	for _, u := range r.users {
		close(u.client.Out)
	}
	r.users = nil
	r.byID = make(map[string]*User)
	r.channels = nil
}
