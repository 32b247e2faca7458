package pushnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
)

// Dispatcher pushes a notification whenever a work item lands in a new
// stage. Only confirmed moves reach the bus, so subscribers never hear
// about proposals that were cancelled.
type Dispatcher struct {
	eventBus *eventbus.Bus
	taskRepo workitem.Repository
	catalog  *stage.Catalog
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, taskRepo workitem.Repository, catalog *stage.Catalog, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		taskRepo: taskRepo,
		catalog:  catalog,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type == eventbus.EventTypeTaskStageChanged {
				d.handleStageChanged(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handleStageChanged(ctx context.Context, event *eventbus.Event) {
	t, err := d.taskRepo.Get(ctx, event.ResourceID)
	if err != nil {
		slog.Error("push dispatcher: failed to get task", "id", event.ResourceID, "error", err)
		return
	}

	stageName := event.Metadata["to"]
	if st, ok := d.catalog.Resolve(stageName); ok {
		stageName = st.Name
	}

	var url string
	if t.ProjectID != "" {
		url = fmt.Sprintf("/projects/%s/tasks/%s", t.ProjectID, t.ID)
	}

	d.sender.SendToAll(ctx, &NotificationPayload{
		Title: "Task Moved",
		Body:  fmt.Sprintf("%q is now in %s", t.Title, stageName),
		URL:   url,
		Tag:   t.ID,
	})
}
