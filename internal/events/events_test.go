package events

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulti_FansOut(t *testing.T) {
	var got []string
	rec := NotifierFunc(func(_ context.Context, n Notice) { got = append(got, n.Workflow) })

	Multi{rec, nil, rec}.Notify(context.Background(), Notice{Kind: KindInfo, Workflow: "approve_registration"})
	assert.Equal(t, []string{"approve_registration", "approve_registration"}, got)
}

func TestLog_LevelByKind(t *testing.T) {
	var buf bytes.Buffer
	n := Log(slog.New(slog.NewTextHandler(&buf, nil)))

	n.Notify(context.Background(), Notice{Kind: KindError, Workflow: "assign_room", Text: "phòng đã đầy"})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "workflow=assign_room")

	buf.Reset()
	n.Notify(context.Background(), Notice{Kind: KindInfo, Workflow: "save_result"})
	assert.Contains(t, buf.String(), "level=INFO")
}
