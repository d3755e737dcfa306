package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestResolver(h http.HandlerFunc) (*Resolver, *int32, func()) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h(w, r)
	}))
	return &Resolver{BaseURL: srv.URL, Client: srv.Client()}, &hits, srv.Close
}

func TestResolve(t *testing.T) {
	Convey("Given a lookup service", t, func() {
		var path string
		r, hits, stop := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
			path = req.URL.Path
			switch req.URL.Path {
			case "/play/550":
				_, _ = w.Write([]byte(`{"stream":"https://cdn.example/550.m3u8","movieName":"Fight Club"}`))
			case "/playtv/1399/1/1":
				_, _ = w.Write([]byte(`{"stream":"https://cdn.example/1399/1/1.m3u8","tvName":"Game of Thrones"}`))
			case "/play/0":
				_, _ = w.Write([]byte(`{"movieName":"Nothing"}`))
			case "/play/500":
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"error":"provider offline"}`))
			case "/play/garbage":
				_, _ = w.Write([]byte(`<html>`))
			default:
				http.NotFound(w, req)
			}
		})
		defer stop()
		ctx := context.Background()

		Convey("Movie 550 should resolve to Fight Club", func() {
			stream, err := r.Resolve(ctx, Request{ID: "550", Kind: Movie})
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/play/550")
			So(stream.URL, ShouldEqual, "https://cdn.example/550.m3u8")
			So(stream.Title, ShouldEqual, "Fight Club")
		})

		Convey("A series episode should use the tv endpoint and name", func() {
			stream, err := r.Resolve(ctx, Request{ID: "1399", Kind: TV, Season: "1", Episode: "1"})
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/playtv/1399/1/1")
			So(stream.Title, ShouldEqual, "Game of Thrones")
		})

		Convey("A series without season and episode should be rejected locally", func() {
			_, err := r.Resolve(ctx, Request{ID: "1399", Kind: TV})
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
			So(atomic.LoadInt32(hits), ShouldEqual, 0)
		})

		Convey("An empty id should be rejected locally", func() {
			_, err := r.Resolve(ctx, Request{ID: "  ", Kind: Movie})
			So(errors.Is(err, ErrValidation), ShouldBeTrue)
			So(atomic.LoadInt32(hits), ShouldEqual, 0)
		})

		Convey("404 should be reported as not found", func() {
			_, err := r.Resolve(ctx, Request{ID: "404", Kind: Movie})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
		})

		Convey("Other failures should carry the upstream message verbatim", func() {
			_, err := r.Resolve(ctx, Request{ID: "500", Kind: Movie})
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
			So(errors.Is(err, ErrNotFound), ShouldBeFalse)
			So(err.Error(), ShouldContainSubstring, "provider offline")
		})

		Convey("A payload without stream should fail", func() {
			_, err := r.Resolve(ctx, Request{ID: "0", Kind: Movie})
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "no stream URL returned")
		})

		Convey("A malformed payload should fail", func() {
			_, err := r.Resolve(ctx, Request{ID: "garbage", Kind: Movie})
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Validate", t, func() {
		So(Request{ID: "550", Kind: Movie}.Validate(), ShouldBeNil)
		So(Request{ID: "550", Kind: "anime"}.Validate(), ShouldNotBeNil)
		So(Request{ID: "1399", Kind: TV, Season: "1"}.Validate(), ShouldNotBeNil)
		So(Request{ID: "1399", Kind: TV, Season: "0", Episode: "1"}.Validate(), ShouldNotBeNil)
		So(Request{ID: "1399", Kind: TV, Season: "x", Episode: "1"}.Validate(), ShouldNotBeNil)
		So(Request{ID: "1399", Kind: TV, Season: " 2 ", Episode: "3"}.Validate(), ShouldBeNil)
	})

	Convey("ParseKind", t, func() {
		k, err := ParseKind("TV")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, TV)

		_, err = ParseKind("series")
		So(errors.Is(err, ErrValidation), ShouldBeTrue)
	})
}
