package blob

import (
	"errors"
	"io"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestServer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a running blob server", t, func() {
		s, err := Start()
		So(err, ShouldBeNil)
		defer s.Close()

		client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}

		Convey("Created content should be served with its type", func() {
			url, err := s.Create([]byte("WEBVTT\n\n1\n00:00:01.000 --> 00:00:02.500\nhi"), "text/vtt")
			So(err, ShouldBeNil)
			So(s.Live(), ShouldEqual, 1)

			resp, err := client.Get(url)
			So(err, ShouldBeNil)
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldEqual, "text/vtt")
			So(string(body), ShouldStartWith, "WEBVTT")

			Convey("And revoking should make it unreachable", func() {
				So(s.Revoke(url), ShouldBeNil)
				So(s.Live(), ShouldEqual, 0)

				resp, err := client.Get(url)
				So(err, ShouldBeNil)
				_ = resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)

				So(errors.Is(s.Revoke(url), ErrUnknown), ShouldBeTrue)
			})
		})

		Convey("Foreign URLs should not be revocable", func() {
			So(errors.Is(s.Revoke("http://example.com/blob/x"), ErrUnknown), ShouldBeTrue)
		})

		Convey("Create should fail once closed", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.Create([]byte("x"), "text/plain")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
			So(s.Close(), ShouldBeNil)
		})
	})
}
