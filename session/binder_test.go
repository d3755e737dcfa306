package session

import (
	"context"
	"errors"
	"testing"

	"github.com/reel-cli/reel/player"
	"github.com/reel-cli/reel/player/playertest"
	. "github.com/smartystreets/goconvey/convey"
)

// journal records attach and detach calls in order.
type journal struct {
	log  []string
	fail map[string]error
}

type journalHandle struct {
	j   *journal
	url string
}

func (h *journalHandle) Detach() error {
	h.j.log = append(h.j.log, "detach "+h.url)
	return nil
}
func (h *journalHandle) Failed() <-chan error { return nil }
func (h *journalHandle) URL() string          { return h.url }

func (j *journal) Attach(_ context.Context, _ player.Sink, url string) (Handle, error) {
	if err := j.fail[url]; err != nil {
		return nil, err
	}
	j.log = append(j.log, "attach "+url)
	return &journalHandle{j: j, url: url}, nil
}

func TestBinder(t *testing.T) {
	Convey("Given a binder", t, func() {
		j := &journal{fail: map[string]error{"bad": ErrManifest}}
		b := NewBinder(j, playertest.New())
		ctx := context.Background()

		Convey("Replacing the URL should detach exactly once before attaching", func() {
			_, err := b.Set(ctx, "a")
			So(err, ShouldBeNil)
			_, err = b.Set(ctx, "b")
			So(err, ShouldBeNil)
			_, err = b.Set(ctx, "c")
			So(err, ShouldBeNil)

			So(j.log, ShouldResemble, []string{"attach a", "detach a", "attach b", "detach b", "attach c"})
		})

		Convey("Setting the same URL again should keep the handle", func() {
			first, _ := b.Set(ctx, "a")
			second, _ := b.Set(ctx, "a")
			So(second, ShouldEqual, first)
			So(j.log, ShouldResemble, []string{"attach a"})
		})

		Convey("An empty URL should detach and leave the sink idle", func() {
			_, _ = b.Set(ctx, "a")
			h, err := b.Set(ctx, "")
			So(err, ShouldBeNil)
			So(h, ShouldBeNil)
			So(b.Current(), ShouldBeNil)
			So(j.log, ShouldResemble, []string{"attach a", "detach a"})
		})

		Convey("A failed attach should leave no handle and allow a retry", func() {
			_, _ = b.Set(ctx, "a")
			_, err := b.Set(ctx, "bad")
			So(errors.Is(err, ErrManifest), ShouldBeTrue)
			So(b.Current(), ShouldBeNil)

			delete(j.fail, "bad")
			_, err = b.Set(ctx, "bad")
			So(err, ShouldBeNil)
			So(j.log, ShouldResemble, []string{"attach a", "detach a", "attach bad"})
		})

		Convey("Close should detach the live handle once", func() {
			_, _ = b.Set(ctx, "a")
			So(b.Close(), ShouldBeNil)
			So(b.Close(), ShouldBeNil)
			So(j.log, ShouldResemble, []string{"attach a", "detach a"})
		})
	})

	Convey("Given a native binding", t, func() {
		sink := playertest.New()
		b := NewBinder(NewAdapter(Options{Managed: false}), sink)

		_, err := b.Set(context.Background(), "https://cdn.example/a.m3u8")
		So(err, ShouldBeNil)
		So(b.Close(), ShouldBeNil)

		Convey("Releasing should idle the sink", func() {
			So(sink.Methods(), ShouldResemble, []string{"Load", "Unload"})
		})
	})
}
