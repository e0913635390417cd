package nakama

import (
	"context"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"
)

type sentNotification struct {
	userID     string
	subject    string
	code       int
	content    map[string]interface{}
	persistent bool
}

// notificationRecorder captures NotificationSend calls; every other
// NakamaModule method panics through the embedded nil interface.
type notificationRecorder struct {
	runtime.NakamaModule
	sent []sentNotification
}

func (nr *notificationRecorder) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	nr.sent = append(nr.sent, sentNotification{
		userID:     userID,
		subject:    subject,
		code:       code,
		content:    content,
		persistent: persistent,
	})
	return nil
}

func TestQueueDropSendsCancellationNotice(t *testing.T) {
	nk := &notificationRecorder{}

	notifyQueueDropped(context.Background(), noopLogger{}, nk, "user-1", "queue timeout")

	if len(nk.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(nk.sent))
	}
	got := nk.sent[0]
	if got.userID != "user-1" {
		t.Errorf("recipient = %s, want user-1", got.userID)
	}
	if got.code != NotificationCode_QueueCancelled {
		t.Errorf("code = %d, want %d", got.code, NotificationCode_QueueCancelled)
	}
	if reason, _ := got.content["reason"].(string); reason != "queue timeout" {
		t.Errorf("reason = %q, want %q", reason, "queue timeout")
	}
	if !got.persistent {
		t.Error("queue drop notice must be persistent")
	}
}
