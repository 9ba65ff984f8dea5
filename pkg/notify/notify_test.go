package notify_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/notify"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	sink := notify.NewLog(logging.NewWithWriter(&buf, -4))

	sink.Notify(context.Background(), "Saved", ports.LevelSuccess)
	sink.Notify(context.Background(), "Server unavailable", ports.LevelError)

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg=Saved`)
	assert.Contains(t, out, `level=ERROR msg="Server unavailable"`)
	assert.Contains(t, out, "level_name=success")
}

func TestConsole_PlainProfile(t *testing.T) {
	var buf bytes.Buffer
	sink := notify.NewConsole(&buf, notify.WithProfile(termenv.Ascii))

	sink.Notify(context.Background(), "Request timed out", ports.LevelError)
	sink.Notify(context.Background(), "Project switched", ports.LevelInfo)
	sink.Notify(context.Background(), "odd level", ports.Level("debug"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"✗ Request timed out", "i Project switched", "i odd level"}, lines)
}

func TestConsole_Colour(t *testing.T) {
	var buf bytes.Buffer
	sink := notify.NewConsole(&buf, notify.WithProfile(termenv.TrueColor))

	sink.Notify(context.Background(), "Saved", ports.LevelSuccess)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Saved")
}

func TestMulti(t *testing.T) {
	var got []string
	record := func(name string) ports.Notifier {
		return ports.NotifierFunc(func(_ context.Context, message string, level ports.Level) {
			got = append(got, name+":"+message+":"+string(level))
		})
	}

	sink := notify.Multi(record("a"), nil, record("b"), notify.Nop{})
	sink.Notify(context.Background(), "hi", ports.LevelWarning)

	assert.Equal(t, []string{"a:hi:warning", "b:hi:warning"}, got)
}
